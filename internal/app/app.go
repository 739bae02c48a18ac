package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tunebook/internal/reseed"
	"tunebook/pkg/config"
	"tunebook/pkg/logger"
	"tunebook/pkg/services"
	"tunebook/pkg/store"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.Effective
	version   string
	commit    string
	buildDate string

	st       *store.Store
	registry *services.Registry
	srv      *http.Server

	cancelReseed context.CancelFunc
}

// New opens the store, seeds the tune repository on first boot and builds
// the service registry. It does not start the HTTP server or the reseed
// scheduler; call Run for those.
func New(eff config.Effective, version, commit, buildDate string) (*App, error) {
	st, err := store.Open(eff.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", eff.DBPath, err)
	}

	registry := services.New(st)
	if _, err := registry.Reseed(eff.Config.Storage.SeedPath); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to seed tune dataset: %w", err)
	}

	a := &App{
		eff:       eff,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		st:        st,
		registry:  registry,
	}
	return a, nil
}

// Run starts the reseed scheduler (if configured) and the HTTP server, and
// blocks until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	seedPath := a.eff.Config.Storage.SeedPath
	cancel, err := reseed.Start(ctx, func() (int, error) {
		return a.registry.Reseed(seedPath)
	}, a.eff.Config.Seed.Cron)
	if err != nil {
		return err
	}
	a.cancelReseed = cancel

	logger.Info("server_starting",
		"addr", a.eff.Addr,
		"db", a.eff.DBPath,
		"config_source", a.eff.Source,
		"version", a.version)

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			a.shutdown()
			return err
		}
		return nil
	}
}

// shutdown drains the HTTP server and closes the store.
func (a *App) shutdown() {
	if a.cancelReseed != nil {
		a.cancelReseed()
	}
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(ctx); err != nil {
			logger.Warn("http_shutdown_error", "error", err)
		}
	}
	if err := a.st.Close(); err != nil {
		logger.Warn("store_close_error", "error", err)
	}
	logger.Info("server_stopped")
}
