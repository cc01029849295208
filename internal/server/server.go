// Package server exposes editing sessions over HTTP and WebSocket.
//
// JSON endpoints cover the request/response operations (create a session,
// replace its text, run a spoken command, analyse ad-hoc text). The
// /v1/sessions/{id}/stream endpoint upgrades to a WebSocket that accepts a
// live transcript stream and pushes document updates back.
//
// Every route runs behind [observe.Middleware], so requests are traced and
// their latency is recorded per route pattern.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/voxedit/internal/config"
	"github.com/MrWong99/voxedit/internal/document"
	"github.com/MrWong99/voxedit/internal/health"
	"github.com/MrWong99/voxedit/internal/observe"
)

const readHeaderTimeout = 10 * time.Second

// Option configures a [Server].
type Option func(*Server)

// WithHealth replaces the default readiness handler.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithMetrics records request and domain metrics on m instead of
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithMetricsHandler serves h on /metrics instead of the Prometheus default
// registry handler.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

// Server serves the voxedit API.
type Server struct {
	cfg            config.ServerConfig
	sessions       *document.Manager
	health         *health.Handler
	metrics        *observe.Metrics
	metricsHandler http.Handler
	handler        http.Handler

	// streams is cancelled on shutdown. Hijacked WebSocket connections are
	// not tracked by http.Server, so stream handlers watch it instead.
	streams     context.Context
	stopStreams context.CancelFunc
}

// New returns a Server over sessions. Zero values in cfg fall back to the
// config package defaults.
func New(cfg config.ServerConfig, sessions *document.Manager, opts ...Option) *Server {
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = config.DefaultMaxRequestBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = config.DefaultShutdownTimeout
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = config.DefaultListenAddr
	}

	s := &Server{
		cfg:            cfg,
		sessions:       sessions,
		metricsHandler: promhttp.Handler(),
	}
	s.streams, s.stopStreams = context.WithCancel(context.Background())
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if s.health == nil {
		s.health = health.New(s.DictionaryCheck())
	}
	s.handler = observe.Middleware(s.metrics)(s.routes())
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// DictionaryCheck is a readiness probe that fails while the shared spell
// dictionary is empty.
func (s *Server) DictionaryCheck() health.Checker {
	return health.Checker{
		Name: "dictionary",
		Check: func(context.Context) error {
			if s.sessions.Toolkit().Analyzer.Spell().DictionarySize() == 0 {
				return errors.New("dictionary is empty")
			}
			return nil
		},
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /v1/sessions", s.handleListSessions)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleCloseSession)
	mux.HandleFunc("PUT /v1/sessions/{id}/text", s.handleSetText)
	mux.HandleFunc("POST /v1/sessions/{id}/commands", s.handleCommand)
	mux.HandleFunc("POST /v1/sessions/{id}/dictation", s.handleDictation)
	mux.HandleFunc("POST /v1/sessions/{id}/ignore", s.handleIgnore)
	mux.HandleFunc("DELETE /v1/sessions/{id}/ignore", s.handleResetIgnored)
	mux.HandleFunc("GET /v1/sessions/{id}/stream", s.handleStream)

	mux.HandleFunc("POST /v1/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /v1/parse", s.handleParse)
	mux.HandleFunc("POST /v1/spell/suggest", s.handleSuggest)

	s.health.Register(mux)
	mux.Handle("GET /metrics", s.metricsHandler)
	return mux
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done. On shutdown readiness
// starts failing, in-flight requests get up to the configured shutdown
// timeout to finish, open streams are closed and every session is dropped.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	srv.RegisterOnShutdown(s.stopStreams)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server: listening", "addr", ln.Addr().String(), "tls", s.cfg.TLS != nil)
		var err error
		if tls := s.cfg.TLS; tls != nil {
			err = srv.ServeTLS(ln, tls.CertFile, tls.KeyFile)
		} else {
			err = srv.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: serve: %w", err)
	})
	g.Go(func() error {
		<-gctx.Done()
		s.health.SetDraining(true)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		n := s.sessions.CloseAll(shutdownCtx)
		slog.Info("server: stopped", "sessions_closed", n)
		if err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
