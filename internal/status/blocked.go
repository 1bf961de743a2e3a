// Package status parses the router status files kept in the store: the
// kernel log of blocked packets, connection table snapshots, interface
// configs, DHCP leases and nmap scans.
// Package status 解析存储中的路由器状态文件。
package status

import (
	"strconv"
	"strings"
	"time"
)

// BlockedMarker is the log prefix the firewall's LOG rule writes.
const BlockedMarker = "IPTables Blocked"

// BlockEvent is one packet dropped by the firewall, as logged by the kernel.
// BlockEvent 表示内核日志中记录的一个被防火墙丢弃的数据包。
type BlockEvent struct {
	Timestamp   *time.Time `json:"timestamp"`
	Source      *string    `json:"source"`
	Destination *string    `json:"destination"`
	Protocol    *string    `json:"protocol"`
	TTL         *int       `json:"ttl"`
	Type        *string    `json:"type,omitempty"`
	SourcePort  *int       `json:"sourcePort,omitempty"`
	DestPort    *int       `json:"destPort,omitempty"`
	Line        string     `json:"line"`
}

// ParseBlocked returns an event for every line carrying BlockedMarker.
// Syslog timestamps have no year; now supplies it.
// ParseBlocked 解析所有包含 BlockedMarker 的日志行。
func ParseBlocked(text string, now time.Time) []BlockEvent {
	var out []BlockEvent
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, BlockedMarker) {
			continue
		}
		out = append(out, ParseBlockMessage(strings.TrimSpace(line), now.Year()))
	}
	return out
}

// ParseBlockMessage parses one kernel LOG line. Missing keys stay nil.
// ICMP packets carry Type; other protocols carry the ports.
// ParseBlockMessage 解析一行内核 LOG 日志，缺失的键保持为 nil。
func ParseBlockMessage(line string, year int) BlockEvent {
	ev := BlockEvent{Line: line, Timestamp: syslogTime(line, year)}

	kv := make(map[string]string)
	for _, tok := range strings.Fields(line) {
		k, v, ok := strings.Cut(tok, "=")
		if !ok || v == "" {
			continue
		}
		if _, seen := kv[k]; !seen {
			kv[k] = v
		}
	}

	ev.Source = str(kv, "SRC")
	ev.Destination = str(kv, "DST")
	ev.Protocol = str(kv, "PROTO")
	ev.TTL = num(kv, "TTL")
	if ev.Protocol != nil && *ev.Protocol == "ICMP" {
		ev.Type = str(kv, "TYPE")
	} else {
		ev.SourcePort = num(kv, "SPT")
		ev.DestPort = num(kv, "DPT")
	}
	return ev
}

func syslogTime(line string, year int) *time.Time {
	f := strings.Fields(line)
	if len(f) < 3 {
		return nil
	}
	t, err := time.ParseInLocation("Jan 2 15:04:05", strings.Join(f[:3], " "), time.Local)
	if err != nil {
		return nil
	}
	t = t.AddDate(year-t.Year(), 0, 0)
	return &t
}

func str(kv map[string]string, key string) *string {
	v, ok := kv[key]
	if !ok {
		return nil
	}
	return &v
}

func num(kv map[string]string, key string) *int {
	v, ok := kv[key]
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
