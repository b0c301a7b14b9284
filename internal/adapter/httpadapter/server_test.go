package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-etl/internal/adapter/httpadapter"
	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

type mockAssessor struct {
	latest     *domain.Assessment
	refreshErr error
	refreshed  int
}

func (m *mockAssessor) CheckReadiness(_ context.Context) error {
	if m.latest == nil {
		return errors.New("no assessment has completed yet")
	}
	return nil
}

func (m *mockAssessor) Latest() *domain.Assessment { return m.latest }

func (m *mockAssessor) Refresh(_ context.Context) (*domain.Assessment, error) {
	m.refreshed++
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.latest, nil
}

func testAssessment() *domain.Assessment {
	c0 := 0
	noise := domain.NoiseCluster
	return &domain.Assessment{
		RunID:      "run-1",
		Source:     "gauges.csv",
		AssessedAt: time.Date(2024, 7, 1, 6, 0, 0, 0, time.UTC),
		Thresholds: domain.Thresholds{HighQuantile: 0.75, MediumQuantile: 0.4, High: 30, Medium: 12},
		Stations: []domain.AssessedStation{
			{Station: domain.Station{Name: "Dalia", Latitude: 26.18, Longitude: 89.03, DangerLevel: 52.4}, Risk: domain.RiskHigh, Cluster: &c0},
			{Station: domain.Station{Name: "Dibrugarh", Latitude: 27.48, Longitude: 94.91, DangerLevel: 105.7}, Risk: domain.RiskHigh, Cluster: &noise},
			{Station: domain.Station{Name: "Sirajganj", Latitude: 24.45, Longitude: 89.70, DangerLevel: 13.35}, Risk: domain.RiskMedium},
			{Station: domain.Station{Name: "Goalundo", Latitude: 23.77, Longitude: 89.76, DangerLevel: 8.65}, Risk: domain.RiskLow},
		},
		Dropped:      []domain.DroppedRow{{Line: 7, Reason: "Latitude is empty"}},
		ClusterCount: 1,
		NoiseCount:   1,
		ClusterEpsKm: 3185.5,
	}
}

func newTestServer(m *mockAssessor) *httpadapter.Server {
	return httpadapter.NewServer(":0", m, 50, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func serve(t *testing.T, srv *httpadapter.Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(t, newTestServer(&mockAssessor{}), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	rec := serve(t, newTestServer(&mockAssessor{latest: testAssessment()}), http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, newTestServer(&mockAssessor{}), http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, newTestServer(&mockAssessor{}), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestViewsReturn503BeforeFirstAssessment(t *testing.T) {
	srv := newTestServer(&mockAssessor{})
	for _, path := range []string{"/api/assessment", "/api/stations", "/api/hotspots", "/api/map.geojson"} {
		t.Run(path, func(t *testing.T) {
			rec := serve(t, srv, http.MethodGet, path)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Contains(t, rec.Body.String(), "no assessment available yet")
		})
	}
}

type stationsBody struct {
	RunID    string                   `json:"run_id"`
	Count    int                      `json:"count"`
	Counts   map[string]int           `json:"counts"`
	Stations []domain.AssessedStation `json:"stations"`
}

func TestStations(t *testing.T) {
	srv := newTestServer(&mockAssessor{latest: testAssessment()})

	tests := []struct {
		query string
		names []string
	}{
		{"", []string{"Dalia", "Dibrugarh", "Sirajganj", "Goalundo"}},
		{"?risk=High", []string{"Dalia", "Dibrugarh"}},
		{"?risk=medium", []string{"Sirajganj"}},
		{"?risk=LOW", []string{"Goalundo"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := serve(t, srv, http.MethodGet, "/api/stations"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body stationsBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "run-1", body.RunID)
			assert.Equal(t, len(tt.names), body.Count)
			assert.Equal(t, map[string]int{"High": 2, "Medium": 1, "Low": 1}, body.Counts)

			names := make([]string, len(body.Stations))
			for i, s := range body.Stations {
				names[i] = s.Name
			}
			assert.Equal(t, tt.names, names)
		})
	}
}

func TestStations_InvalidRisk(t *testing.T) {
	rec := serve(t, newTestServer(&mockAssessor{latest: testAssessment()}), http.MethodGet, "/api/stations?risk=extreme")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHotspots(t *testing.T) {
	rec := serve(t, newTestServer(&mockAssessor{latest: testAssessment()}), http.MethodGet, "/api/hotspots")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ClusterCount int                      `json:"cluster_count"`
		NoiseCount   int                      `json:"noise_count"`
		ClusterEpsKm float64                  `json:"cluster_eps_km"`
		Stations     []domain.AssessedStation `json:"stations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.ClusterCount)
	assert.Equal(t, 1, body.NoiseCount)
	assert.InDelta(t, 3185.5, body.ClusterEpsKm, 1e-9)
	require.Len(t, body.Stations, 2)
	require.NotNil(t, body.Stations[0].Cluster)
	assert.Equal(t, 0, *body.Stations[0].Cluster)
	require.NotNil(t, body.Stations[1].Cluster)
	assert.Equal(t, domain.NoiseCluster, *body.Stations[1].Cluster)
}

func TestAssessment(t *testing.T) {
	rec := serve(t, newTestServer(&mockAssessor{latest: testAssessment()}), http.MethodGet, "/api/assessment")
	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "gauges.csv", body.Source)
	assert.Len(t, body.Stations, 4)
	assert.Len(t, body.Dropped, 1)
}

func TestMapGeoJSON(t *testing.T) {
	rec := serve(t, newTestServer(&mockAssessor{latest: testAssessment()}), http.MethodGet, "/api/map.geojson")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	var body struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "FeatureCollection", body.Type)
	require.Len(t, body.Features, 6, "four markers and two influence rings")
	assert.Equal(t, "Polygon", body.Features[5].Geometry.Type)
}

func TestRefresh(t *testing.T) {
	m := &mockAssessor{latest: testAssessment()}
	rec := serve(t, newTestServer(m), http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, m.refreshed)

	var body struct {
		RunID    string `json:"run_id"`
		Stations int    `json:"stations"`
		Dropped  int    `json:"dropped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, 4, body.Stations)
	assert.Equal(t, 1, body.Dropped)
}

func TestRefresh_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"data source", domain.NewDataSourceError("gauges.csv", domain.ErrMissingColumn), http.StatusUnprocessableEntity},
		{"other", errors.New("broker down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockAssessor{refreshErr: tt.err}
			rec := serve(t, newTestServer(m), http.MethodPost, "/api/refresh")
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestRefresh_RejectsGet(t *testing.T) {
	rec := serve(t, newTestServer(&mockAssessor{}), http.MethodGet, "/api/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
