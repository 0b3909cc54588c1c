package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harun/chronicle/internal/observability"
	"github.com/harun/chronicle/internal/tracing"
	"github.com/harun/chronicle/pkg/insights"
	"github.com/harun/chronicle/pkg/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the catalog and serve metrics",
	Long: `Watch the catalog root for session changes, refresh insight gauges on a
schedule, and serve prometheus metrics until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := setup()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := tracing.InitOpenTelemetry("chronicle"); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tracing.ShutdownOpenTelemetry(ctx)
		}()

		watcher, err := session.NewCatalogWatcher(store, 0, nil)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()

		refresher := insights.NewRefresher(insights.New(store), cfg.Refresh.Schedule)
		if err := refresher.Start(); err != nil {
			return err
		}
		defer func() {
			_ = refresher.Stop()
		}()

		if cfg.Metrics.Enabled {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.MetricsHandler())
			server := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}

			go func() {
				log.Info().Str("addr", cfg.Metrics.Addr).Msg("Metrics endpoint listening")
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("Metrics endpoint failed")
				}
			}()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(ctx)
			}()
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down monitor")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
