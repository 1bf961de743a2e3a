package ruleset

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-iptables/iptables"
	netxipt "github.com/livp123/netxconf/internal/iptables"
	"github.com/livp123/netxconf/internal/utils/logger"
)

// DefaultSnapshotTables are the tables read when none are given.
var DefaultSnapshotTables = []string{"filter", "nat", "mangle"}

// Lister reads chains and rules from a packet filter. *iptables.IPTables
// satisfies it.
// Lister 从包过滤器读取链和规则。
type Lister interface {
	ListChains(table string) ([]string, error)
	List(table, chain string) ([]string, error)
}

// NewLister returns a go-iptables handle for IPv4 or IPv6. It only reads.
// NewLister 返回 IPv4 或 IPv6 的 go-iptables 句柄。
func NewLister(ipv6 bool) (Lister, error) {
	protocol := iptables.ProtocolIPv4
	if ipv6 {
		protocol = iptables.ProtocolIPv6
	}
	ipt, err := iptables.NewWithProtocol(protocol)
	if err != nil {
		return nil, err
	}
	return ipt, nil
}

// Snapshot builds a Document from the running ruleset of the given tables.
// Chain declarations carry the policy and zero counters, as iptables-save
// prints them without -c.
// Snapshot 根据当前运行中的规则集构建 Document。
func Snapshot(ctx context.Context, l Lister, tables []string) (*netxipt.Document, error) {
	if len(tables) == 0 {
		tables = DefaultSnapshotTables
	}
	doc := netxipt.NewDocument()
	for _, table := range tables {
		chains, err := l.ListChains(table)
		if err != nil {
			return nil, fmt.Errorf("list chains of %s: %w", table, err)
		}
		t := &netxipt.Table{}
		for _, chain := range chains {
			lines, err := l.List(table, chain)
			if err != nil {
				return nil, fmt.Errorf("list %s/%s: %w", table, chain, err)
			}
			for _, line := range lines {
				switch fields := strings.Fields(line); {
				case len(fields) >= 3 && fields[0] == "-P":
					t.Chains = append(t.Chains, fmt.Sprintf(":%s %s [0:0]", fields[1], fields[2]))
				case len(fields) >= 2 && fields[0] == "-N":
					t.Chains = append(t.Chains, fmt.Sprintf(":%s - [0:0]", fields[1]))
				case len(fields) >= 2 && fields[0] == "-A":
					t.AppendRule(netxipt.ExtractFields(line))
				}
			}
		}
		doc.Set(table, t)
		logger.Get(ctx).Debugf("[RULES] Snapshot %s: %d chains, %d rules", table, len(t.Chains), len(t.Rules))
	}
	return doc, nil
}
