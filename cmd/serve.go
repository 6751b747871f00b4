package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server, err := wireServer(ctx, app)
			if err != nil {
				return err
			}

			return server.run(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default "+defaultAddress+")")
	_ = app.config.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}
