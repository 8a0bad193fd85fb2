// Package admin serves the operator HTTP surface: ledger view, clear action, metrics and health.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/introspection"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/alttag/pkg/ledger"
)

// Ledger is the part of the change ledger the admin surface needs.
type Ledger interface {
	Summary() ledger.Summary
	Clear(ctx context.Context) error
}

// Server exposes a Ledger over HTTP.
type Server struct {
	ledger     Ledger
	log        *slog.Logger
	metrics    http.Handler
	components []introspection.Introspectable
	onChange   func(ledger.Summary)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithComponents exposes the State of each component on /state.
func WithComponents(components ...introspection.Introspectable) Option {
	return func(s *Server) {
		s.components = append(s.components, components...)
	}
}

// WithOnChange is called with the new summary after the ledger is cleared.
func WithOnChange(fn func(ledger.Summary)) Option {
	return func(s *Server) {
		s.onChange = fn
	}
}

// New creates a Server.
func New(l Ledger, opts ...Option) *Server {
	s := &Server{ledger: l}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.log != nil {
		r.Use(s.logRequests)
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/summary", s.handleSummary)
	r.Post("/summary/clear", s.handleClear)
	r.Get("/state", s.handleState)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.log != nil {
			s.log.Info("admin server starting", "addr", addr)
		}
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum := s.ledger.Summary()
	if sum.Records == nil {
		sum.Records = []ledger.Record{}
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Clear(r.Context()); err != nil {
		if s.log != nil {
			s.log.Error("clear summary", "error", err)
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if s.onChange != nil {
		s.onChange(s.ledger.Summary())
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "cleared"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	states := make(map[string]any, len(s.components))
	for i, c := range s.components {
		name := "component"
		if comp, ok := c.(introspection.Component); ok {
			name = comp.ComponentType()
		}
		if _, taken := states[name]; taken {
			name = fmt.Sprintf("%s-%d", name, i)
		}
		states[name] = c.State()
	}
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("admin request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
