package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kprusa/dvrouted/device/router"
)

// routerState is the JSON shape returned by /debug/state for one router.
type routerState struct {
	Name          string           `json:"name"`
	DistanceVector map[string]int  `json:"distance_vector"`
	RouteTable     map[string]int  `json:"route_table"`
	Neighbors      map[string]time.Time `json:"neighbors"`
}

// Server exposes /metrics and /debug/state over HTTP.
type Server struct {
	// Addr is the listen address, e.g. ":9090".
	Addr string
	// Logger for server events. Falls back to slog.Default() if nil.
	Logger *slog.Logger

	registry *Registry
	srv      *http.Server
}

// NewServer creates a debug/metrics Server backed by registry.
func NewServer(addr string, registry *Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Addr: addr, Logger: logger, registry: registry}
}

// Start registers routes and begins serving in a background goroutine. It
// returns immediately; call Stop to shut down.
func (s *Server) Start() error {
	promReg := prometheus.NewRegistry()
	if err := promReg.Register(s.registry); err != nil {
		return fmt.Errorf("registering collector: %w", err)
	}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	r.HandleFunc("/debug/state", s.handleDebugState).Methods(http.MethodGet)

	s.srv = &http.Server{Addr: s.Addr, Handler: r}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Error("metrics server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

// Stop shuts the HTTP server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleDebugState(w http.ResponseWriter, req *http.Request) {
	s.registry.mu.Lock()
	routers := make(map[string]*router.Router, len(s.registry.routers))
	for name, rt := range s.registry.routers {
		routers[name] = rt
	}
	s.registry.mu.Unlock()

	states := make([]routerState, 0, len(routers))
	for name, rt := range routers {
		states = append(states, routerState{
			Name:           name,
			DistanceVector: rt.DistanceVector(),
			RouteTable:     rt.RouteTable(),
			Neighbors:      rt.Neighbors(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(states); err != nil {
		s.Logger.Warn("failed to encode debug state", "error", err)
	}
}
