package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flood-risk-etl/internal/adapter/geojson"
	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// Assessor exposes the latest assessment and a way to recompute it.
// It is implemented by *pipeline.Pipeline.
type Assessor interface {
	sharedobs.ReadinessChecker
	Latest() *domain.Assessment
	Refresh(ctx context.Context) (*domain.Assessment, error)
}

// Server exposes health, readiness, metrics and the assessment views.
type Server struct {
	httpServer *http.Server
	assessor   Assessor
	mapOpts    geojson.Options
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the health, metrics and /api routes.
// influenceRadiusKm sizes the rings in the GeoJSON view.
func NewServer(addr string, assessor Assessor, influenceRadiusKm float64, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		assessor: assessor,
		mapOpts:  geojson.Options{InfluenceRadiusKm: influenceRadiusKm},
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(assessor))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/assessment", s.handleAssessment)
	mux.HandleFunc("GET /api/stations", s.handleStations)
	mux.HandleFunc("GET /api/hotspots", s.handleHotspots)
	mux.HandleFunc("GET /api/map.geojson", s.handleMap)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type stationsResponse struct {
	RunID      string                   `json:"run_id"`
	AssessedAt time.Time                `json:"assessed_at"`
	Thresholds domain.Thresholds        `json:"thresholds"`
	Counts     map[domain.Risk]int      `json:"counts"`
	Count      int                      `json:"count"`
	Stations   []domain.AssessedStation `json:"stations"`
}

type hotspotsResponse struct {
	RunID        string                   `json:"run_id"`
	AssessedAt   time.Time                `json:"assessed_at"`
	ClusterCount int                      `json:"cluster_count"`
	NoiseCount   int                      `json:"noise_count"`
	ClusterEpsKm float64                  `json:"cluster_eps_km"`
	Stations     []domain.AssessedStation `json:"stations"`
}

type refreshResponse struct {
	RunID        string              `json:"run_id"`
	AssessedAt   time.Time           `json:"assessed_at"`
	Stations     int                 `json:"stations"`
	Dropped      int                 `json:"dropped"`
	Counts       map[domain.Risk]int `json:"counts"`
	ClusterCount int                 `json:"cluster_count"`
}

func (s *Server) handleAssessment(w http.ResponseWriter, _ *http.Request) {
	a, ok := s.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	a, ok := s.latest(w)
	if !ok {
		return
	}

	stations := a.AllStations()
	if q := r.URL.Query().Get("risk"); q != "" {
		risk, valid := domain.ParseRisk(q)
		if !valid {
			writeError(w, http.StatusBadRequest, "risk must be one of High, Medium, Low")
			return
		}
		stations = a.ByRisk(risk)
	}

	writeJSON(w, http.StatusOK, stationsResponse{
		RunID:      a.RunID,
		AssessedAt: a.AssessedAt,
		Thresholds: a.Thresholds,
		Counts:     a.CountByRisk(),
		Count:      len(stations),
		Stations:   stations,
	})
}

func (s *Server) handleHotspots(w http.ResponseWriter, _ *http.Request) {
	a, ok := s.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, hotspotsResponse{
		RunID:        a.RunID,
		AssessedAt:   a.AssessedAt,
		ClusterCount: a.ClusterCount,
		NoiseCount:   a.NoiseCount,
		ClusterEpsKm: a.ClusterEpsKm,
		Stations:     a.HighRisk(),
	})
}

func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	a, ok := s.latest(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(geojson.Build(a, s.mapOpts)) //nolint:errcheck // client may have gone away
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	a, err := s.assessor.Refresh(r.Context())
	if err != nil {
		s.logger.Warn("refresh failed", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrDataSource) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		RunID:        a.RunID,
		AssessedAt:   a.AssessedAt,
		Stations:     len(a.Stations),
		Dropped:      len(a.Dropped),
		Counts:       a.CountByRisk(),
		ClusterCount: a.ClusterCount,
	})
}

// latest writes 503 when no assessment has completed yet.
func (s *Server) latest(w http.ResponseWriter) (*domain.Assessment, bool) {
	a := s.assessor.Latest()
	if a == nil {
		writeError(w, http.StatusServiceUnavailable, "no assessment available yet")
		return nil, false
	}
	return a, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
