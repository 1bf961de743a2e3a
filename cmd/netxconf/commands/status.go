package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/livp123/netxconf/cmd/netxconf/commands/common"
	"github.com/livp123/netxconf/internal/status"
	"github.com/livp123/netxconf/pkg/errors"
	"github.com/spf13/cobra"
)

// readKey fetches a status document from the configured store.
func readKey(ctx context.Context, key string) (string, error) {
	store, err := common.GetStore()
	if err != nil {
		return "", err
	}
	return store.Get(ctx, key)
}

var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "Show packets blocked by the firewall",
	// Short: 显示被防火墙阻止的数据包
	Long: `Show packets logged with the "IPTables Blocked" prefix.
By default the stored kernel log is read. With --follow a local log file is tailed
and new events are printed until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		if path, _ := cmd.Flags().GetString("follow"); path != "" {
			fromStart, _ := cmd.Flags().GetBool("from-start")
			return followBlocked(cmd, path, fromStart, asJSON)
		}

		text, err := readKey(cmd.Context(), common.Config().Keys.Messages)
		if err != nil {
			return err
		}
		events := status.ParseBlocked(text, time.Now())
		if asJSON {
			if events == nil {
				events = []status.BlockEvent{}
			}
			return common.PrintJSON(cmd.OutOrStdout(), events)
		}
		common.ShowBlocked(cmd.OutOrStdout(), events)
		return nil
	},
}

func followBlocked(cmd *cobra.Command, path string, fromStart, asJSON bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := status.Follow(ctx, path, fromStart)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	enc := json.NewEncoder(w)
	for ev := range events {
		if asJSON {
			if err := enc.Encode(ev); err != nil {
				return err
			}
			continue
		}
		common.ShowBlockEvent(w, ev)
	}
	return nil
}

var iptstateCmd = &cobra.Command{
	Use:   "iptstate",
	Short: "Show the stored connection table snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readKey(cmd.Context(), common.Config().Keys.Iptstate)
		if err != nil {
			return err
		}
		conns := status.ParseIptstate(text)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if conns == nil {
				conns = []status.Connection{}
			}
			return common.PrintJSON(cmd.OutOrStdout(), conns)
		}
		common.ShowConnections(cmd.OutOrStdout(), conns)
		return nil
	},
}

func loadLeases(ctx context.Context) ([]status.Lease, error) {
	text, err := readKey(ctx, common.Config().Keys.Leases)
	if err != nil {
		return nil, err
	}
	return status.ParseLeases(text)
}

func leasesView(view func([]status.Lease) []status.Lease) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		leases, err := loadLeases(cmd.Context())
		if err != nil {
			return err
		}
		leases = view(leases)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if leases == nil {
				leases = []status.Lease{}
			}
			return common.PrintJSON(cmd.OutOrStdout(), leases)
		}
		common.ShowLeases(cmd.OutOrStdout(), leases, time.Now())
		return nil
	}
}

var leasesCmd = &cobra.Command{
	Use:   "leases",
	Short: "Show DHCP leases",
	// Short: 显示 DHCP 租约
	Args: cobra.NoArgs,
	RunE: leasesView(func(l []status.Lease) []status.Lease { return l }),
}

var leasesLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the newest lease of every MAC",
	Args:  cobra.NoArgs,
	RunE:  leasesView(status.LatestPerMAC),
}

var leasesOnlineCmd = &cobra.Command{
	Use:   "online",
	Short: "Show MACs whose newest lease is active",
	Args:  cobra.NoArgs,
	RunE:  leasesView(status.Online),
}

var leasesStatusCmd = &cobra.Command{
	Use:   "status <mac>",
	Short: "Report whether a MAC is online",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		leases, err := loadLeases(cmd.Context())
		if err != nil {
			return err
		}
		if status.StatusForMAC(leases, args[0]) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s online\n", args[0])
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s offline\n", args[0])
		}
		return nil
	},
}

var nmapCmd = &cobra.Command{
	Use:   "nmap",
	Short: "Show the stored nmap scan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readKey(cmd.Context(), common.Config().Keys.Nmap)
		if err != nil {
			return err
		}
		hosts, err := status.ParseNmap(text)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), hosts)
		}
		common.ShowHosts(cmd.OutOrStdout(), hosts)
		return nil
	},
}

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Print the stored system-data document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := common.Config().Keys.System
		text, err := readKey(cmd.Context(), key)
		if err != nil {
			return err
		}
		if !json.Valid([]byte(text)) {
			return errors.NewFormatError(key + " is not valid JSON")
		}
		return common.PrintJSON(cmd.OutOrStdout(), json.RawMessage(text))
	},
}

func init() {
	blockedCmd.Flags().String("follow", "", "Tail this local log file instead of reading the store")
	blockedCmd.Flags().Bool("from-start", false, "With --follow, also report lines already in the file")
	for _, c := range []*cobra.Command{blockedCmd, iptstateCmd, leasesCmd, nmapCmd} {
		c.Flags().Bool("json", false, "Print as JSON")
	}
	leasesLatestCmd.Flags().Bool("json", false, "Print as JSON")
	leasesOnlineCmd.Flags().Bool("json", false, "Print as JSON")

	leasesCmd.AddCommand(leasesLatestCmd)
	leasesCmd.AddCommand(leasesOnlineCmd)
	leasesCmd.AddCommand(leasesStatusCmd)
}
