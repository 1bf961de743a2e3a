package status

import (
	"bufio"
	"net"
	"sort"
	"strings"
	"time"
)

// Lease is one lease block of an ISC dhcpd.leases file.
// Lease 表示 ISC dhcpd.leases 文件中的一个租约块。
type Lease struct {
	IP           string    `json:"ip"`
	MAC          string    `json:"mac"`
	Hostname     string    `json:"hostname,omitempty"`
	Starts       time.Time `json:"starts"`
	Ends         time.Time `json:"ends"`
	BindingState string    `json:"bindingState,omitempty"`
	ClientID     string    `json:"clientId,omitempty"`
}

// Online reports whether the lease is currently bound.
func (l Lease) Online() bool {
	return l.BindingState == "active"
}

// ParseLeases parses dhcpd.leases text. Every lease block is returned in
// file order, whatever its binding state; dhcpd appends a new block each time
// a lease changes, so one address or MAC can appear many times.
// ParseLeases 解析 dhcpd.leases 文本，按文件顺序返回所有租约块。
func ParseLeases(text string) ([]Lease, error) {
	var (
		leases  []Lease
		current *Lease
	)

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "lease ") {
			parts := strings.Fields(line)
			if len(parts) >= 2 && net.ParseIP(parts[1]) != nil {
				current = &Lease{IP: parts[1]}
			}
			continue
		}

		if line == "}" {
			if current != nil {
				leases = append(leases, *current)
				current = nil
			}
			continue
		}

		if current == nil {
			continue
		}
		line = strings.TrimSuffix(line, ";")
		switch {
		case strings.HasPrefix(line, "starts "):
			current.Starts = parseISCDateTime(line)
		case strings.HasPrefix(line, "ends "):
			current.Ends = parseISCDateTime(line)
		case strings.HasPrefix(line, "hardware ethernet "):
			current.MAC = normalizeMAC(strings.TrimPrefix(line, "hardware ethernet "))
		case strings.HasPrefix(line, "client-hostname "):
			current.Hostname = strings.Trim(strings.TrimPrefix(line, "client-hostname "), "\"")
		case strings.HasPrefix(line, "binding state "):
			current.BindingState = strings.TrimPrefix(line, "binding state ")
		case strings.HasPrefix(line, "uid "):
			current.ClientID = strings.Trim(strings.TrimPrefix(line, "uid "), "\"")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return leases, nil
}

// parseISCDateTime parses "starts 6 2024/01/15 10:30:45" (UTC). "never" and
// malformed values give the zero time.
func parseISCDateTime(line string) time.Time {
	parts := strings.Fields(line)
	if len(parts) < 4 {
		return time.Time{}
	}
	t, err := time.Parse("2006/01/02 15:04:05", parts[2]+" "+parts[3])
	if err != nil {
		return time.Time{}
	}
	return t
}

func normalizeMAC(mac string) string {
	if hw, err := net.ParseMAC(mac); err == nil {
		return hw.String()
	}
	return strings.ToLower(mac)
}

// LatestPerMAC keeps, for every MAC address, the lease with the latest start
// time. Leases without a MAC are dropped. The result is sorted by MAC.
// LatestPerMAC 为每个 MAC 地址保留开始时间最新的租约。
func LatestPerMAC(leases []Lease) []Lease {
	latest := make(map[string]Lease)
	for _, l := range leases {
		if l.MAC == "" {
			continue
		}
		prev, ok := latest[l.MAC]
		if !ok || !l.Starts.Before(prev.Starts) {
			latest[l.MAC] = l
		}
	}

	out := make([]Lease, 0, len(latest))
	for _, l := range latest {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MAC < out[j].MAC })
	return out
}

// Online returns the latest lease of every MAC that is currently bound.
// Online 返回每个 MAC 最新且处于 active 状态的租约。
func Online(leases []Lease) []Lease {
	var out []Lease
	for _, l := range LatestPerMAC(leases) {
		if l.Online() {
			out = append(out, l)
		}
	}
	return out
}

// StatusForMAC reports whether mac's latest lease is active. An unknown MAC
// is offline.
// StatusForMAC 报告某个 MAC 的最新租约是否处于 active 状态。
func StatusForMAC(leases []Lease, mac string) bool {
	mac = normalizeMAC(mac)
	for _, l := range LatestPerMAC(leases) {
		if l.MAC == mac {
			return l.Online()
		}
	}
	return false
}
