package commands

import (
	"fmt"
	"strings"

	"github.com/livp123/netxconf/cmd/netxconf/commands/common"
	"github.com/livp123/netxconf/internal/status"
	"github.com/livp123/netxconf/pkg/errors"
	"github.com/spf13/cobra"
)

var ifaceCmd = &cobra.Command{
	Use:   "iface",
	Short: "Show or change stored interface configs",
	// Short: 查看或修改存储的网卡配置
}

var ifaceShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the config of one interface",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readKey(cmd.Context(), common.Config().Keys.InterfaceKey(args[0]))
		if err != nil {
			return err
		}
		cfg, err := status.ParseInterface(text)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return common.PrintJSON(cmd.OutOrStdout(), cfg)
		}
		common.ShowKeyValues(cmd.OutOrStdout(), cfg)
		return nil
	},
}

var ifaceSetCmd = &cobra.Command{
	Use:   "set <name> <KEY=value>...",
	Short: "Set keys in the config of one interface",
	Long: `Set keys in the config of one interface. Existing keys not named are kept.
A key given with an empty value (KEY=) is removed.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return errors.NewKeyError(name)
		}
		store, err := common.GetStore()
		if err != nil {
			return err
		}
		key := common.Config().Keys.InterfaceKey(name)

		cfg := map[string]string{}
		text, err := store.Get(cmd.Context(), key)
		switch {
		case err == nil:
			if cfg, err = status.ParseInterface(text); err != nil {
				return err
			}
		case !errors.Is(err, errors.ErrNotFound):
			return err
		}

		for _, arg := range args[1:] {
			k, v, ok := strings.Cut(arg, "=")
			if !ok || k == "" {
				return fmt.Errorf("expected KEY=value, got %q", arg)
			}
			if v == "" {
				delete(cfg, k)
				continue
			}
			cfg[k] = v
		}

		out, err := status.EncodeInterface(cfg)
		if err != nil {
			return err
		}
		if err := store.Put(cmd.Context(), key, out); err != nil {
			return err
		}
		common.ShowKeyValues(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func init() {
	ifaceShowCmd.Flags().Bool("json", false, "Print as JSON")
	ifaceCmd.AddCommand(ifaceShowCmd)
	ifaceCmd.AddCommand(ifaceSetCmd)
}
