package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rogersnm/taskmanager/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the task API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(st, logger.WithName("server"), server.Options{CORSOrigin: cfg.Server.CORSOrigin})
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :5000)")
	rootCmd.AddCommand(serveCmd)
}
