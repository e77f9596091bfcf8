// Package app wires configuration, adapters and the monitoring controller
// into a runnable session.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/camsentry/camsentry/config"
	"github.com/camsentry/camsentry/debug"
	"github.com/camsentry/camsentry/domain/monitor"
)

// App runs one monitoring session over a built container.
type App struct {
	c      *Container
	logger *slog.Logger

	stopDebug func()
}

// New builds the container for cfg and returns the app around it.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	c, err := BuildContainer(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &App{c: c, logger: logger}, nil
}

// Controller exposes the session controller for command surfaces.
func (a *App) Controller() *monitor.Controller { return a.c.Controller }

// Run starts monitoring and blocks until ctx is cancelled, then shuts the
// session down.
func (a *App) Run(ctx context.Context) error {
	cfg := a.c.Config

	session := uuid.NewString()
	if a.c.Store != nil {
		a.c.Store.SetSession(session)
	}
	a.logger.Info("session starting",
		"session", session,
		"target", cfg.TargetApp,
		"region", cfg.Region(),
		"keys", a.c.Controller.MacroKeys(),
	)

	// The inference service may still be warming up: report, don't abort.
	if err := a.c.Detector.Health(ctx); err != nil {
		a.logger.Warn("detector health check failed", "url", cfg.DetectorURL, "error", err)
	}

	if cfg.Debug {
		a.stopDebug = debug.Start(a.logger, 10*time.Second)
	}

	if err := a.c.Controller.Start(cfg.Region(), cfg.TargetApp); err != nil {
		a.shutdown()
		return err
	}

	<-ctx.Done()
	a.c.Controller.Stop()
	a.shutdown()
	a.logger.Info("session finished", "session", session)
	return nil
}

func (a *App) shutdown() {
	if a.stopDebug != nil {
		a.stopDebug()
		a.stopDebug = nil
	}
	if a.c.Store != nil {
		if err := a.c.Store.Close(); err != nil {
			a.logger.Warn("event store close", "error", err)
		}
	}
	a.c.Fanout.Close()
}
