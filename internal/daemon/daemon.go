package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/candid-forum/candid/internal/api"
	"github.com/candid-forum/candid/internal/app/notify"
	"github.com/candid-forum/candid/internal/app/review"
	"github.com/candid-forum/candid/internal/app/unlock"
	"github.com/candid-forum/candid/internal/infra/observability"
	"github.com/candid-forum/candid/internal/infra/sqlite"
)

// Run starts the daemon and blocks until the context is cancelled or a
// shutdown signal arrives.
func Run(ctx context.Context, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	log.Printf("[daemon] store ready at %s", cfg.Store.Path)

	unlockSvc := unlock.New(db, db)
	reviewSvc := review.New(db)

	if cfg.Notifications.Enabled {
		hub := notify.NewHub(cfg.Notifications.BufferSize)
		unlockSvc.SetNotifier(hub)
		reviewSvc.SetNotifier(hub)

		events, cancel := hub.Subscribe()
		defer cancel()
		go notify.LogEvents(events)
	}

	srv := api.NewServer(db, db, db, unlockSvc, reviewSvc)

	if cfg.Metrics.Enabled {
		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
		unlockSvc.SetMetrics(metrics)
		reviewSvc.SetMetrics(metrics)
		srv.EnableMetrics()
	}

	httpSrv := &http.Server{
		Addr:              cfg.API.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[daemon] listening on http://%s", cfg.API.Addr())
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-sigCh:
		log.Printf("[daemon] received %s, shutting down", sig)
	case <-ctx.Done():
		log.Printf("[daemon] context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Printf("[daemon] stopped")
	return nil
}
