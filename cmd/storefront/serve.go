package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"storefront/internal/server"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e := server.New(server.Deps{
				Config:   a.cfg,
				Log:      a.log,
				Accounts: a.accounts,
				Carts:    a.carts,
				Orders:   a.orders,
			})

			//Server起動
			addr := a.cfg.Port
			if !strings.HasPrefix(addr, ":") {
				addr = ":" + addr
			}
			return server.Start(ctx, e, addr, a.log)
		},
	}
}
