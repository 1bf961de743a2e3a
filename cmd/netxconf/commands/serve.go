package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/livp123/netxconf/cmd/netxconf/commands/common"
	"github.com/livp123/netxconf/internal/api"
	"github.com/livp123/netxconf/internal/utils/logger"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	// Short: 运行 HTTP API 服务
	Long: `Run the HTTP API until interrupted. Every /api/v1 route except
POST /api/v1/token/{subject} needs a bearer token.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationLongRunning: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *common.Config()
		if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
			cfg.Web.Listen = listen
		}
		store, err := common.GetStore()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Get(ctx).Infof("[API] Using %s storage", cfg.Storage.Backend)
		return api.NewServer(ctx, &cfg, store).Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (overrides web.listen)")
}
