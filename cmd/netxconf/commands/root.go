package commands

import (
	"fmt"
	"os"

	"github.com/livp123/netxconf/cmd/netxconf/commands/common"
	"github.com/livp123/netxconf/internal/config"
	"github.com/livp123/netxconf/internal/runtime"
	"github.com/livp123/netxconf/internal/utils/logger"
	"github.com/livp123/netxconf/pkg/storage"
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "netxconf",
	Short: "Manage stored iptables rules and router status",
	// Short: 管理存储的 iptables 规则和路由器状态
	Long: `netxconf reads and writes iptables-save rule documents kept in a key/value store
and serves them, together with router status files, over an HTTP API.
netxconf 读写存储在键值存储中的 iptables-save 规则文档，
并通过 HTTP API 提供这些文档以及路由器状态文件。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration; a missing file means defaults
		// 加载配置，文件不存在时使用默认值
		cm := config.NewConfigManager(config.GetConfigPath())
		if err := cm.LoadConfig(); err != nil {
			return err
		}
		cfg := cm.GetConfig()
		if runtime.StoreBackend != "" {
			cfg.Storage.Backend = runtime.StoreBackend
		}
		common.SetConfig(cfg)
		if cfg.Storage.Backend == storage.BackendMemory && common.MockStore == nil &&
			cmd.Annotations[annotationLongRunning] == "" {
			cmd.PrintErrln("Warning: memory storage is discarded when this command exits; use it with serve or configure the file backend")
		}

		logger.Init(cfg.Logging)

		// Inject logger into context
		// 将 Logger 注入 Context
		ctx := logger.WithContext(cmd.Context(), logger.Get(nil))
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// annotationLongRunning marks commands that keep the store open until they
// are interrupted.
const annotationLongRunning = "netxconf/long-running"

func init() {
	// Config file path
	// 配置文件路径
	RootCmd.PersistentFlags().StringVarP(&runtime.ConfigPath, "config", "c", "", fmt.Sprintf("Path to configuration file (default: %s)", config.DefaultConfigPath))

	// Storage backend override
	// 存储后端覆盖
	RootCmd.PersistentFlags().StringVar(&runtime.StoreBackend, "store", "", "Override storage.backend (file, memory)")

	RootCmd.AddCommand(rulesCmd)
	RootCmd.AddCommand(blockedCmd)
	RootCmd.AddCommand(iptstateCmd)
	RootCmd.AddCommand(ifaceCmd)
	RootCmd.AddCommand(leasesCmd)
	RootCmd.AddCommand(nmapCmd)
	RootCmd.AddCommand(systemCmd)
	RootCmd.AddCommand(userCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(versionCmd)

	RootCmd.CompletionOptions.DisableDescriptions = true
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
