package commands

import (
	"fmt"

	"github.com/livp123/netxconf/cmd/netxconf/commands/common"
	"github.com/livp123/netxconf/internal/config"
	"github.com/livp123/netxconf/internal/utils/fileutil"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or write the configuration file",
	// Short: 查看或写入配置文件
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(common.Config())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to the config path. An existing file is left
alone unless --force is given; with --force its comments and unknown keys are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetConfigPath()
		force, _ := cmd.Flags().GetBool("force")
		if _, exists, err := fileutil.ReadOptional(path); err != nil {
			return err
		} else if exists && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		cm := config.NewConfigManager(path)
		cm.UpdateConfig(config.DefaultGlobalConfig())
		if err := cm.SaveConfig(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetConfigPath()
		if _, err := config.LoadGlobalConfig(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
}
