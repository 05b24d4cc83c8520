package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tanpawarit/goodfoods-agent/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			o, err := a.newOrchestrator(ctx)
			if err != nil {
				return err
			}

			srv, err := server.New(a.cfg.Config, o, a.store, a.catalog)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
}
