package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/alttag/internal/metrics"
	"github.com/spf13/cobra"
)

var (
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the admin HTTP surface",
	Long: `Serve the ledger summary, the clear action, component state and metrics over HTTP.
Documents are not watched; use "watch --admin-addr" for both.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := metrics.New()
		app, err := openApp(ctx, m)
		if err != nil {
			fatal("Error initializing vault", err)
		}
		defer app.Close()

		addr := serveAddr
		if addr == "" {
			addr = cfg.AdminAddr
		}
		if err := newAdminServer(app, m).Run(ctx, addr); err != nil {
			fatal("Error serving admin", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides admin_addr)")
}
