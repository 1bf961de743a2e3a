package status

import (
	"fmt"
	"sort"
	"strings"

	"github.com/livp123/netxconf/pkg/errors"
)

// ParseInterface parses an ifcfg-style file of KEY=value lines. Blank lines
// are skipped; any other line that is not exactly one '=' pair fails with
// errors.ErrFormat.
// ParseInterface 解析 ifcfg 风格的 KEY=value 配置。
func ParseInterface(text string) (map[string]string, error) {
	cfg := make(map[string]string)
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "=")
		if len(parts) != 2 {
			return nil, errors.NewFormatError(fmt.Sprintf("line %d: unable to parse config line %q", n+1, line))
		}
		cfg[parts[0]] = parts[1]
	}
	return cfg, nil
}

// EncodeInterface renders cfg as sorted KEY=value lines. Keys or values that
// ParseInterface could not read back are rejected.
// EncodeInterface 将配置按键排序输出为 KEY=value 行。
func EncodeInterface(cfg map[string]string) (string, error) {
	keys := make([]string, 0, len(cfg))
	for k, v := range cfg {
		if k == "" || strings.ContainsAny(k, "=\n") || strings.ContainsAny(v, "=\n") {
			return "", errors.NewFormatError(fmt.Sprintf("cannot encode %q=%q", k, v))
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k + "=" + cfg[k] + "\n")
	}
	return b.String(), nil
}
