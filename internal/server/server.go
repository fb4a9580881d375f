// Package server exposes the controller over HTTP: direct structured
// commands, natural-language parsing and parse-then-execute.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/lightcmd/internal/eventbus"
	"github.com/dokzlo13/lightcmd/internal/extract"
	"github.com/dokzlo13/lightcmd/internal/intent"
	"github.com/dokzlo13/lightcmd/internal/ledger"
	"github.com/dokzlo13/lightcmd/internal/observe"
	"github.com/dokzlo13/lightcmd/internal/router"
)

// Extractor turns free text into a raw intent object.
type Extractor interface {
	Extract(ctx context.Context, text string) (*extract.Result, error)
}

// Router dispatches a decoded intent.
type Router interface {
	Route(ctx context.Context, in intent.Intent) router.Outcome
}

// History lists recorded commands.
type History interface {
	Recent(limit int) ([]*ledger.Entry, error)
}

// Options configures the HTTP server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler
}

// Server is the controller's HTTP front end.
type Server struct {
	opts       Options
	extractor  Extractor
	router     Router
	history    History
	bus        *eventbus.Bus
	metrics    *observe.Metrics
	httpServer *http.Server
}

// New creates a server. history, bus and metrics may be nil.
func New(opts Options, extractor Extractor, rt Router, history History, bus *eventbus.Bus, metrics *observe.Metrics) *Server {
	return &Server{
		opts:      opts,
		extractor: extractor,
		router:    rt,
		history:   history,
		bus:       bus,
		metrics:   metrics,
	}
}

// Handler returns the full handler chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /control", s.handleControl)
	mux.HandleFunc("POST /parse", s.handleParse)
	mux.HandleFunc("POST /execute", s.handleExecute)
	mux.HandleFunc("GET /history", s.handleHistory)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	if s.opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", s.opts.MetricsHandler)
	}

	return requestID(s.logRequests(recoverPanics(mux)))
}

// Run starts the server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	s.httpServer = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	log.Info().Str("addr", s.opts.Addr).Msg("Starting HTTP server")

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
