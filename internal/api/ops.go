package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsConfig configures the ops listener routes
type OpsConfig struct {
	Pprof        bool
	ReadyTimeout time.Duration
}

// OpsServer serves health, readiness, metrics and optional pprof on its own port
type OpsServer struct {
	router   *chi.Mux
	pinger   Pinger
	gatherer prometheus.Gatherer
	cfg      OpsConfig
}

// NewOpsServer creates the ops router
func NewOpsServer(pinger Pinger, gatherer prometheus.Gatherer, cfg OpsConfig) *OpsServer {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 2 * time.Second
	}
	s := &OpsServer{
		router:   chi.NewRouter(),
		pinger:   pinger,
		gatherer: gatherer,
		cfg:      cfg,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *OpsServer) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.NoCache)
}

// setupRoutes configures the ops routes
func (s *OpsServer) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/readyz", s.handleReady)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	if s.cfg.Pprof {
		s.router.Mount("/debug", middleware.Profiler())
	}
}

// Handler returns the root http.Handler
func (s *OpsServer) Handler() http.Handler {
	return s.router
}

func (s *OpsServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func (s *OpsServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.ReadyTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("store unavailable: " + err.Error() + "\n"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready\n"))
}
