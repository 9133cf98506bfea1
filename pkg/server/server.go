// Package server hosts query-string states for connected browser
// clients. Each WebSocket session owns one state; mutation events flow
// in, address patches flow back out over the same connection.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/querysync-dev/querysync/pkg/querystate"
	"github.com/querysync-dev/querysync/pkg/schema"
)

// Config holds server settings. Zero fields fall back to defaults.
type Config struct {
	// Address is the listen address.
	Address string

	// AllowedOrigins restricts WebSocket upgrades. Empty allows any
	// origin (development mode).
	AllowedOrigins []string

	// ReadTimeout bounds how long a connection may stay silent.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single patch flush.
	WriteTimeout time.Duration

	// Debounce is applied to every session's state. Zero publishes
	// immediately.
	Debounce time.Duration

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// Defaults seed each session's state when its address carries no
	// query string.
	Defaults map[string]schema.Value

	// Logger receives server and session logs.
	Logger *slog.Logger
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:         ":8420",
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}
}

// Server accepts WebSocket clients and hosts one query state per session.
type Server struct {
	schema *schema.Schema
	config *Config

	upgrader websocket.Upgrader
	logger   *slog.Logger
	tracer   trace.Tracer

	httpServer *http.Server

	mu       sync.Mutex
	sessions map[string]*Session

	nextSessionID uint64
}

// New creates a server for the given schema. A nil config uses defaults;
// a partial config has its unset fields filled in.
func New(sch *schema.Schema, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	} else {
		defaults := DefaultConfig()
		if config.Address == "" {
			config.Address = defaults.Address
		}
		if config.ReadTimeout == 0 {
			config.ReadTimeout = defaults.ReadTimeout
		}
		if config.WriteTimeout == 0 {
			config.WriteTimeout = defaults.WriteTimeout
		}
		if config.ReadBufferSize == 0 {
			config.ReadBufferSize = defaults.ReadBufferSize
		}
		if config.WriteBufferSize == 0 {
			config.WriteBufferSize = defaults.WriteBufferSize
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")

	s := &Server{
		schema:   sch,
		config:   config,
		logger:   logger,
		tracer:   otel.Tracer("querysync"),
		sessions: make(map[string]*Session),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     s.checkOrigin,
	}

	initMetricsOnce()

	return s
}

// checkOrigin enforces the configured origin allowlist.
func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range s.config.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// Router returns the HTTP routes: the WebSocket endpoint, a health
// check, and the Prometheus metrics endpoint.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/ws", s.handleWS)
	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()
	s.logger.Info("listening", "address", s.config.Address)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// handleWS upgrades the connection and starts a session for it.
//
// The client reports its current address in the "addr" query parameter
// of the upgrade request; the session bootstraps its state from that.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "error", err)
		RecordWSError("upgrade")
		return
	}

	addr := r.URL.Query().Get("addr")
	if addr == "" {
		addr = "/"
	}

	id := strconv.FormatUint(atomic.AddUint64(&s.nextSessionID, 1), 10)
	sess := newSession(id, conn, s, addr)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	RecordSessionOpen()
	s.logger.Info("session started", "session", id, "addr", addr)

	go sess.ReadLoop()
}

// removeSession drops a closed session from the registry.
func (s *Server) removeSession(id string) {
	s.mu.Lock()
	if _, ok := s.sessions[id]; ok {
		delete(s.sessions, id)
		RecordSessionClose()
	}
	s.mu.Unlock()
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// newState builds a session's query state over the given port.
func (s *Server) newState(port *patchPort) *querystate.State {
	opts := []querystate.Option{querystate.WithLogger(s.logger)}
	if len(s.config.Defaults) > 0 {
		opts = append(opts, querystate.WithDefaults(s.config.Defaults))
	}
	if s.config.Debounce > 0 {
		opts = append(opts, querystate.WithDebounce(s.config.Debounce))
	}
	return querystate.New(s.schema, port, opts...)
}
