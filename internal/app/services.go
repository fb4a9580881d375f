package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/lightcmd/internal/catalog"
	"github.com/dokzlo13/lightcmd/internal/config"
	"github.com/dokzlo13/lightcmd/internal/db"
	"github.com/dokzlo13/lightcmd/internal/eventbus"
	"github.com/dokzlo13/lightcmd/internal/extract"
	"github.com/dokzlo13/lightcmd/internal/hue"
	"github.com/dokzlo13/lightcmd/internal/ledger"
	"github.com/dokzlo13/lightcmd/internal/llm"
	"github.com/dokzlo13/lightcmd/internal/observe"
	"github.com/dokzlo13/lightcmd/internal/router"
	"github.com/dokzlo13/lightcmd/internal/server"
	"github.com/dokzlo13/lightcmd/internal/tv"
	"github.com/dokzlo13/lightcmd/internal/webhook"
)

// Services holds the wired command pipeline and the infrastructure under it.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB      *db.DB
	Ledger  *ledger.Ledger
	Bus     *eventbus.Bus
	Metrics *observe.Metrics
	metrics *observe.Provider

	// Collaborators
	Hue     *hue.Client
	Webhook *webhook.Client
	TV      *tv.Stub

	// Command pipeline
	Catalog   *catalog.Catalog
	Extractor *extract.Extractor
	Router    *router.Router
	Server    *server.Server

	serverDone chan struct{}
}

// NewServices loads the catalog and builds every component from cfg. A
// missing LLM api key is not fatal.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	if cfg.Catalog.DefaultLocation != "" {
		cat.DefaultLocation = catalog.NormalizeLocation(cfg.Catalog.DefaultLocation)
	}
	if _, err := cat.ResolveLocation(""); err != nil {
		log.Warn().Str("default_location", cat.DefaultLocation).Msg("Default location is not in the catalog")
	}
	s.Catalog = cat
	log.Info().
		Int("scenes", cat.Scenes.Len()).
		Int("locations", cat.Locations.Len()).
		Str("default_location", cat.DefaultLocation).
		Msg("Catalog loaded")

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		s.metrics, err = observe.NewPrometheusProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		s.Metrics, err = observe.NewMetrics(s.metrics.MeterProvider)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		metricsHandler = s.metrics.Handler
	}

	// Initialize database
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.DB = database

	// Ledger records commands off the request path
	s.Ledger = ledger.New(database.DB)
	s.Bus = eventbus.NewWithConfig(cfg.EventBus.Workers, cfg.EventBus.QueueSize)
	s.Ledger.Subscribe(s.Bus)

	s.Hue = hue.NewClient(cfg.Hue.Bridge, cfg.Hue.Token, hue.Options{
		Timeout:      cfg.Hue.Timeout.Duration(),
		RateLimitRPS: cfg.Hue.RateLimitRPS,
	})
	s.Webhook = webhook.NewClient(cfg.Webhook.BaseURL, cfg.Webhook.Key, cfg.Webhook.Events, cfg.Webhook.Timeout.Duration())
	s.TV = tv.NewStub()

	var completer extract.Completer = llm.Unconfigured{}
	if cfg.LLM.APIKey == "" {
		log.Warn().Msg("LLM api key not configured, natural-language commands will fail")
	} else {
		completer, err = llm.NewOpenAI(cfg.LLM.APIKey, llm.Options{
			Model:       cfg.LLM.Model,
			BaseURL:     cfg.LLM.BaseURL,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.AttemptTimeout.Duration(),
		})
		if err != nil {
			s.Close()
			return nil, err
		}
	}
	s.Extractor = extract.New(completer, cat.Scenes.Names(), cat.Locations.Names(), extract.Config{
		MaxRetries:     *cfg.LLM.MaxRetries,
		AttemptTimeout: cfg.LLM.AttemptTimeout.Duration(),
	}, s.Metrics)

	s.Router = router.New(cat, s.Hue, s.Webhook, s.TV, s.Metrics)

	s.Server = server.New(server.Options{
		Addr:           cfg.Server.Addr(),
		ReadTimeout:    cfg.Server.ReadTimeout.Duration(),
		WriteTimeout:   cfg.Server.WriteTimeout.Duration(),
		MetricsHandler: metricsHandler,
	}, s.Extractor, s.Router, s.Ledger, s.Bus, s.Metrics)

	return s, nil
}

// Start connects to the bridge, then runs the janitor and HTTP server until
// ctx ends. onFatalError receives an HTTP server failure.
func (s *Services) Start(ctx context.Context, onFatalError func(error)) error {
	// The bridge may come up later; commands fail individually until it does.
	if err := s.Hue.Connect(ctx); err != nil {
		log.Warn().Err(err).Str("bridge", s.cfg.Hue.Bridge).Msg("Hue bridge not reachable at startup")
	} else {
		log.Info().Str("bridge", s.cfg.Hue.Bridge).Msg("Connected to Hue bridge")
	}

	janitor := NewJanitor(s.Ledger, s.cfg.Database.Retention(), s.cfg.Database.CleanupInterval.Duration())
	go janitor.Run(ctx)

	s.serverDone = make(chan struct{})
	go func() {
		defer close(s.serverDone)
		if err := s.Server.Run(ctx, s.cfg.ShutdownTimeout.Duration()); err != nil {
			onFatalError(fmt.Errorf("http server: %w", err))
		}
	}()

	return nil
}

// Stop waits for the HTTP server, drains the bus and flushes metrics.
func (s *Services) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration())
	defer cancel()

	// In-flight requests still publish to the bus until the server returns.
	if s.serverDone != nil {
		select {
		case <-s.serverDone:
		case <-ctx.Done():
			log.Warn().Msg("HTTP server did not stop before shutdown timeout")
		}
	}
	if s.Bus != nil {
		s.Bus.Close(ctx)
	}
	if s.metrics != nil {
		if err := s.metrics.MeterProvider.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Meter provider shutdown error")
		}
	}
	s.Close()
	return nil
}

// Close releases the bus, bridge client and database.
func (s *Services) Close() {
	if s.Bus != nil {
		s.Bus.Close(context.Background())
	}
	if s.Hue != nil {
		s.Hue.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}
