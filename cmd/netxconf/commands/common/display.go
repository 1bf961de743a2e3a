package common

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/livp123/netxconf/internal/iptables"
	"github.com/livp123/netxconf/internal/ruleset"
	"github.com/livp123/netxconf/internal/status"
	"github.com/livp123/netxconf/internal/utils/fmtutil"
)

// PrintJSON writes v as indented JSON.
// PrintJSON 以缩进 JSON 格式输出 v。
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ShowDocument prints every table with numbered, canonically encoded rules.
// Indexes are the ones rules delete and rules add --position take.
// ShowDocument 打印所有表及带编号的规则。
func ShowDocument(w io.Writer, doc *iptables.Document, only string) {
	for _, name := range doc.Names() {
		if only != "" && name != only {
			continue
		}
		t, _ := doc.Table(name)
		fmt.Fprintf(w, "*%s (%d chains, %d rules)\n", name, len(t.Chains), len(t.Rules))
		for _, c := range t.Chains {
			fmt.Fprintf(w, "      %s\n", c)
		}
		for i, r := range t.Rules {
			fmt.Fprintf(w, "%5d %s\n", i, iptables.EncodeRule(r))
		}
	}
}

// ShowMatches prints query results one per line.
func ShowMatches(w io.Writer, matches []ruleset.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(w, " - No matching rules.")
		return
	}
	for _, m := range matches {
		fmt.Fprintf(w, "%-8s %5d %s\n", m.Table, m.Index, iptables.EncodeRule(m.Rule))
	}
	fmt.Fprintf(w, "\nTotal matches: %s\n", fmtutil.FormatCount(len(matches)))
}

func deref[T any](p *T) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

// ShowBlocked prints blocked-packet events as a table.
// ShowBlocked 以表格形式打印被阻止的数据包。
func ShowBlocked(w io.Writer, events []status.BlockEvent) {
	fmt.Fprintf(w, "%-20s %-40s %-6s %-40s %-6s %-6s\n", "Time", "Source", "Port", "Destination", "Port", "Proto")
	fmt.Fprintln(w, strings.Repeat("-", 124))
	for _, ev := range events {
		ShowBlockEvent(w, ev)
	}
	fmt.Fprintf(w, "\nTotal blocked: %s\n", fmtutil.FormatCount(len(events)))
}

// ShowBlockEvent prints a single event row.
func ShowBlockEvent(w io.Writer, ev status.BlockEvent) {
	ts := "-"
	if ev.Timestamp != nil {
		ts = ev.Timestamp.Format("Jan _2 15:04:05")
	}
	sport, dport := deref(ev.SourcePort), deref(ev.DestPort)
	if ev.Type != nil {
		sport, dport = "type", *ev.Type
	}
	fmt.Fprintf(w, "%-20s %-40s %-6s %-40s %-6s %-6s\n",
		ts, deref(ev.Source), sport, deref(ev.Destination), dport, deref(ev.Protocol))
}

// ShowConnections prints iptstate rows with the columns of the first row.
func ShowConnections(w io.Writer, conns []status.Connection) {
	cols := []string{"Source", "Destination", "Prt", "State", "TTL"}
	for _, c := range cols {
		fmt.Fprintf(w, "%-24s", c)
	}
	fmt.Fprintln(w)
	for _, conn := range conns {
		for _, c := range cols {
			v, ok := conn[c]
			if !ok {
				v = "-"
			}
			fmt.Fprintf(w, "%-24s", v)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\nTotal connections: %s\n", fmtutil.FormatCount(len(conns)))
}

// ShowLeases prints leases as a table with the time left as of now.
// ShowLeases 以表格形式打印租约。
func ShowLeases(w io.Writer, leases []status.Lease, now time.Time) {
	fmt.Fprintf(w, "%-16s %-18s %-20s %-8s %-20s %s\n", "IP", "MAC", "Hostname", "State", "Ends", "Left")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, l := range leases {
		ends := "never"
		if !l.Ends.IsZero() {
			ends = l.Ends.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%-16s %-18s %-20s %-8s %-20s %s\n",
			l.IP, l.MAC, l.Hostname, l.BindingState, ends, fmtutil.FormatRemaining(l.Ends, now))
	}
	fmt.Fprintf(w, "\nTotal leases: %s\n", fmtutil.FormatCount(len(leases)))
}

// ShowKeyValues prints a map sorted by key.
func ShowKeyValues(w io.Writer, kv map[string]string) {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s=%s\n", k, kv[k])
	}
}

// ShowHosts prints nmap hosts and their open ports.
func ShowHosts(w io.Writer, hosts []status.Host) {
	for _, h := range hosts {
		addrs := make([]string, 0, len(h.Address))
		for typ, addr := range h.Address {
			addrs = append(addrs, typ+"="+addr)
		}
		sort.Strings(addrs)
		fmt.Fprintf(w, "%-6s %s\n", h.Status.State, strings.Join(addrs, " "))
		for _, p := range h.Ports {
			fmt.Fprintf(w, "       %s/%s %s %s\n", p.PortID, p.Protocol, p.State, p.Service)
		}
	}
	fmt.Fprintf(w, "\nTotal hosts: %s\n", fmtutil.FormatCount(len(hosts)))
}
