package version

import "runtime/debug"

// Version and Commit are set at build time with
// -ldflags "-X .../internal/version.Version=... -X .../internal/version.Commit=...".
// Version 和 Commit 在构建时通过 -ldflags 注入。
var (
	Version = "dev"
	Commit  = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"goVersion,omitempty"`
}

// Get returns the version information, falling back to the VCS revision
// recorded by the Go toolchain when Commit was not injected.
// Get 返回版本信息；未注入 Commit 时使用构建信息中的 VCS 修订号。
func Get() Info {
	info := Info{Version: Version, Commit: Commit}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		if info.Commit == "" {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					info.Commit = s.Value
				}
			}
		}
	}
	if len(info.Commit) > 12 {
		info.Commit = info.Commit[:12]
	}
	return info
}

// String renders the info as "v1.2.3 (abc123)".
func (i Info) String() string {
	if i.Commit == "" {
		return i.Version
	}
	return i.Version + " (" + i.Commit + ")"
}
