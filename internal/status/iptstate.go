package status

import (
	"strings"
)

// Connection is one row of an iptstate snapshot keyed by column header.
// Connection 是 iptstate 快照中的一行，以列名为键。
type Connection map[string]string

// ParseIptstate parses the text output of iptstate. The first non-empty line
// is a banner and is skipped; the next one is the header. For rows whose
// Prt is not tcp the State column holds the TTL and is reported as "TTL".
// ParseIptstate 解析 iptstate 文本输出。
func ParseIptstate(text string) []Connection {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		if f := strings.Fields(line); len(f) > 0 {
			rows = append(rows, f)
		}
	}
	if len(rows) < 2 {
		return nil
	}

	header := rows[1]
	out := make([]Connection, 0, len(rows)-2)
	for _, cols := range rows[2:] {
		conn := make(Connection, len(header))
		for i, name := range header {
			if i < len(cols) {
				conn[name] = cols[i]
			}
		}
		if conn["Prt"] != "tcp" {
			if state, ok := conn["State"]; ok {
				conn["TTL"] = state
				delete(conn, "State")
			}
		}
		out = append(out, conn)
	}
	return out
}
