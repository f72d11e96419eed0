package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"sanket/monitor/config"
	"sanket/monitor/csv"
	"sanket/monitor/datalake/model"
	"sanket/monitor/health"
	"sanket/monitor/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// Server serves the dashboard, re-reading the transaction log on every request.
type Server struct {
	path      string
	topology  Topology
	collector *metrics.Collector
	registry  *prometheus.Registry
	logger    *slog.Logger
	server    *http.Server
	now       func() time.Time
}

// NewServer creates a dashboard server for the log at path.
func NewServer(cfg config.DashboardConfig, path string, topology Topology, logger *slog.Logger) (*Server, error) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(cfg.MetricsNamespace)
	if err := collector.Register(registry); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	s := &Server{
		path:      path,
		topology:  topology,
		collector: collector,
		registry:  registry,
		logger:    logger,
		now:       time.Now,
	}

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// Router returns the HTTP routes of the dashboard.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.collector.Middleware())

	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/api/summary", s.handleSummary).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods("GET")
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "Dashboard listening", "addr", s.server.Addr, "input", s.path)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dashboard server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.InfoContext(ctx, "Shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	s.logger.InfoContext(ctx, "Dashboard stopped gracefully")
	return nil
}

// load aggregates the current log and refreshes the metrics.
func (s *Server) load(ctx context.Context) (health.Result, error) {
	res, err := health.LoadFile(ctx, s.path)
	if err != nil {
		return health.Result{}, err
	}
	if len(res.Categories) == 0 {
		return health.Result{}, health.ErrNoData
	}
	s.collector.Observe(res)
	return res, nil
}

func (s *Server) writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, csv.ErrInputNotFound) || errors.Is(err, health.ErrNoData) {
		status = http.StatusServiceUnavailable
	}
	s.logger.WarnContext(r.Context(), "Dashboard data unavailable", "path", s.path, "error", err)
	http.Error(w, err.Error(), status)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	res, err := s.load(r.Context())
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}

	view, err := BuildView(res, s.topology, s.path, s.now())
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}
	if len(view.Unplaced) > 0 {
		s.logger.WarnContext(r.Context(), "Categories without a topology position",
			"categories", view.Unplaced, "unknown", unknownCategories(view.Unplaced))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Render(w, view); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render dashboard", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	res, err := s.load(r.Context())
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}

	snapshot, err := res.Snapshot(s.path, "", s.now())
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, snapshot)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"input":  s.path,
	})
}

// writeJSON writes data with status. Headers are already sent when encoding
// fails, so the failure is only logged.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to encode JSON response", "path", r.URL.Path, "error", err)
	}
}

// unknownCategories keeps the categories outside the fixed transaction kinds.
func unknownCategories(categories []model.Category) []model.Category {
	var unknown []model.Category
	for _, c := range categories {
		if !c.Known() {
			unknown = append(unknown, c)
		}
	}
	return unknown
}
