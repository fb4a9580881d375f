package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/lightcmd/internal/config"
)

// App runs the command pipeline for the lifetime of a context.
type App struct {
	cfg      *config.Config
	services *Services
	failed   chan error
}

// New wires every service without starting any of them.
func New(cfg *config.Config) (*App, error) {
	services, err := NewServices(cfg)
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:      cfg,
		services: services,
		failed:   make(chan error, 1),
	}, nil
}

// Run starts the services and blocks until ctx ends or a service fails.
// Services are always stopped before Run returns. The returned error is the
// service failure, if there was one.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.services.Start(ctx, a.fail); err != nil {
		cancel()
		a.services.Stop()
		return err
	}
	a.logReady()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown requested")
	case runErr = <-a.failed:
		log.Error().Err(runErr).Msg("Service failed, shutting down")
	}

	cancel()
	if err := a.services.Stop(); err != nil && runErr == nil {
		runErr = err
	}
	log.Info().Msg("lightcmd stopped")
	return runErr
}

// fail keeps the first failure only.
func (a *App) fail(err error) {
	select {
	case a.failed <- err:
	default:
	}
}

func (a *App) logReady() {
	cat := a.services.Catalog
	log.Info().
		Str("addr", a.cfg.Server.Addr()).
		Int("scenes", cat.Scenes.Len()).
		Int("locations", cat.Locations.Len()).
		Str("default_location", cat.DefaultLocation).
		Str("llm_model", a.cfg.LLM.Model).
		Bool("llm_configured", a.cfg.LLM.APIKey != "").
		Int("llm_max_retries", *a.cfg.LLM.MaxRetries).
		Dur("llm_attempt_timeout", a.cfg.LLM.AttemptTimeout.Duration()).
		Bool("metrics", a.cfg.Metrics.Enabled).
		Msg("lightcmd ready")
}

// NotifyContext derives a context that ends on SIGINT or SIGTERM.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
