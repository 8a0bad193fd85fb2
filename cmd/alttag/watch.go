package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/alttag/internal/admin"
	"github.com/aretw0/alttag/internal/metrics"
	"github.com/aretw0/alttag/internal/platform"
	"github.com/aretw0/alttag/pkg/ledger"
	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"
)

var (
	watchAdminAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rewrite documents as they are saved",
	Long: `Watch the vault and run the update pipeline for every saved document.
With --admin-addr, the admin HTTP surface is served alongside the watcher.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := metrics.New()
		app, err := openApp(ctx, m, platform.WithWatcherErrorHandler(func(err error) {
			logger.Error("watcher error", "error", err)
		}))
		if err != nil {
			fatal("Error initializing vault", err)
		}
		defer app.Close()

		w, err := app.Watch(ctx)
		if err != nil {
			fatal("Error starting watcher", err)
		}
		logger.Info("watching vault", "path", app.Vault.Path)

		if watchAdminAddr != "" {
			srv := newAdminServer(app, m)
			lifecycle.Go(ctx, func(ctx context.Context) error {
				return srv.Run(ctx, watchAdminAddr)
			}, lifecycle.WithErrorHandler(func(err error) {
				logger.Error("admin server stopped", "error", err)
				stop()
			}))
		}

		<-w.Done()
		logger.Info("watcher stopped")
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchAdminAddr, "admin-addr", "", "Also serve the admin HTTP surface on this address")
}

func newAdminServer(app *platform.App, m *metrics.Metrics) *admin.Server {
	return admin.New(app.Ledger,
		admin.WithLogger(logger),
		admin.WithMetrics(m.Handler()),
		admin.WithComponents(app.Components()...),
		admin.WithOnChange(func(sum ledger.Summary) {
			m.SetLedger(len(sum.Records), sum.Total)
		}),
	)
}
