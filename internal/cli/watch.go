package cli

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pharmadash/pharmadash/internal/metrics"
	"github.com/pharmadash/pharmadash/internal/query"
)

// cmdWatch polls alerts and reorder suggestions until interrupted, printing
// changes as they appear. A small HTTP server exposes /health and /metrics
// for the duration.
func (a *App) cmdWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	alertInterval := fs.Duration("alert-interval", a.cfg.Watch.AlertInterval, "alert poll interval")
	reorderInterval := fs.Duration("reorder-interval", a.cfg.Watch.ReorderInterval, "reorder poll interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSrv := a.startMetricsServer()

	lastAlertCount := -1
	alertPoller := query.NewPoller("alerts", *alertInterval, func(ctx context.Context) error {
		alerts, err := a.client.Alerts.Unacknowledged(ctx)
		if err != nil {
			fmt.Fprintf(a.stderr, "[%s] alert poll failed: %s\n", timestamp(), errorMessage(err))
			return err
		}
		if len(alerts) != lastAlertCount {
			fmt.Fprintf(a.stdout, "[%s] %d unacknowledged alerts\n", timestamp(), len(alerts))
			for _, alert := range alerts {
				fmt.Fprintf(a.stdout, "  [%s] %s\n", alert.Severity, alert.Message)
			}
			lastAlertCount = len(alerts)
		}
		return nil
	}, a.logger)

	lastCritical := -1
	reorderPoller := query.NewPoller("reorder", *reorderInterval, func(ctx context.Context) error {
		suggestions, err := a.client.Forecasting.ReorderSuggestions(ctx, "", true)
		if err != nil {
			return err
		}
		if len(suggestions) != lastCritical {
			fmt.Fprintf(a.stdout, "[%s] %d critical reorder suggestions\n", timestamp(), len(suggestions))
			for _, s := range suggestions {
				fmt.Fprintf(a.stdout, "  %s: %d sellable, order %.0f\n", s.MedicineName, s.CurrentStock, s.RecommendedQuantity)
			}
			lastCritical = len(suggestions)
		}
		return nil
	}, a.logger)

	fmt.Fprintf(a.stdout, "Watching (alerts every %s, reorders every %s); Ctrl-C to stop\n",
		*alertInterval, *reorderInterval)
	alertPoller.Start(ctx)
	reorderPoller.Start(ctx)

	<-ctx.Done()

	alertPoller.Stop()
	reorderPoller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn().Err(err).Msg("metrics server shutdown failed")
		}
	}

	fmt.Fprintln(a.stdout, "\nStopped watching")
	return nil
}

func (a *App) startMetricsServer() *http.Server {
	if a.cfg.Watch.MetricsAddr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"healthy","session":%q}`, a.session.State())
	})

	srv := &http.Server{
		Addr:         a.cfg.Watch.MetricsAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Warn().Err(err).Str("addr", srv.Addr).Msg("metrics server failed")
		}
	}()

	a.logger.Info().Str("addr", srv.Addr).Msg("metrics server started")
	return srv
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}
