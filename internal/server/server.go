// Package server is the HTTP front end. It is stateless: every request
// carries the full control state and gets a fresh recomputation.
package server

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/san-kum/vizdash/internal/controls"
	"github.com/san-kum/vizdash/internal/dashboard"
	"github.com/san-kum/vizdash/internal/metrics"
)

// PresetSource lists and resolves named control states per dashboard.
type PresetSource interface {
	PresetNames(dashboard string) []string
	Preset(dashboard, name string) (controls.State, bool)
}

type Server struct {
	dashboards map[string]*dashboard.Context
	names      []string
	presets    PresetSource
	log        zerolog.Logger
	metrics    *metrics.Recorder
	router     chi.Router
}

type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Server) { s.metrics = m }
}

func WithPresets(p PresetSource) Option {
	return func(s *Server) { s.presets = p }
}

func New(contexts []*dashboard.Context, opts ...Option) *Server {
	s := &Server{
		dashboards: make(map[string]*dashboard.Context, len(contexts)),
		log:        zerolog.Nop(),
	}
	for _, c := range contexts {
		s.dashboards[c.Name()] = c
		s.names = append(s.names, c.Name())
	}
	sort.Strings(s.names)
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRecorder()
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.observe)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Get("/dashboards/{name}", s.handlePage)

	r.Route("/api/dashboards", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleDetail)
			r.Post("/recompute", s.handleRecompute)
			r.Get("/outputs/{file}", s.handleImage)
		})
	})
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Strs("dashboards", s.names).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) lookup(name string) (*dashboard.Context, bool) {
	c, ok := s.dashboards[name]
	return c, ok
}
