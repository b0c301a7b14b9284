package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the assessment pipeline.
type Metrics struct {
	AssessmentsTotal   prometheus.Counter
	AssessmentErrors   *prometheus.CounterVec // labels: stage={load,assess,publish}
	AssessmentDuration prometheus.Histogram
	PipelineReady      prometheus.Gauge

	// Station set metrics for the latest assessment.
	StationsLoaded  prometheus.Gauge
	RowsDropped     prometheus.Counter
	StationsByRisk  *prometheus.GaugeVec // labels: risk={High,Medium,Low}
	HotspotClusters prometheus.Gauge
	NoiseStations   prometheus.Gauge

	// Source cache and sink metrics.
	SourceCache      *prometheus.CounterVec // labels: result={hit,miss}
	MessagesProduced prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		AssessmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "assessments_total",
			Help:      "Total completed flood-risk assessments.",
		}),
		AssessmentErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "assessment_errors_total",
			Help:      "Failed assessment runs by stage.",
		}, []string{"stage"}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_risk",
			Name:      "assessment_duration_seconds",
			Help:      "Duration of a complete load-assess-publish run.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		PipelineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_risk",
			Name:      "pipeline_ready",
			Help:      "1 once an assessment is available, 0 otherwise.",
		}),
		StationsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_risk",
			Name:      "stations_loaded",
			Help:      "Stations in the latest assessment after cleaning.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "rows_dropped_total",
			Help:      "Source rows excluded by the data-quality filter.",
		}),
		StationsByRisk: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "flood_risk",
			Name:      "stations_by_risk",
			Help:      "Stations per risk tier in the latest assessment.",
		}, []string{"risk"}),
		HotspotClusters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_risk",
			Name:      "hotspot_clusters",
			Help:      "DBSCAN clusters among High-risk stations in the latest assessment.",
		}),
		NoiseStations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_risk",
			Name:      "noise_stations",
			Help:      "High-risk stations outside any cluster in the latest assessment.",
		}),
		SourceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "source_cache_total",
			Help:      "Station source cache lookups by result.",
		}, []string{"result"}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "messages_produced_total",
			Help:      "Enriched station records written to the sink topic.",
		}),
	}

	prometheus.MustRegister(
		m.AssessmentsTotal,
		m.AssessmentErrors,
		m.AssessmentDuration,
		m.PipelineReady,
		m.StationsLoaded,
		m.RowsDropped,
		m.StationsByRisk,
		m.HotspotClusters,
		m.NoiseStations,
		m.SourceCache,
		m.MessagesProduced,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		AssessmentsTotal:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_risk", Name: "assessments_total"}),
		AssessmentErrors:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flood_risk", Name: "assessment_errors_total"}, []string{"stage"}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "flood_risk", Name: "assessment_duration_seconds"}),
		PipelineReady:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flood_risk", Name: "pipeline_ready"}),
		StationsLoaded:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flood_risk", Name: "stations_loaded"}),
		RowsDropped:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_risk", Name: "rows_dropped_total"}),
		StationsByRisk:     prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "flood_risk", Name: "stations_by_risk"}, []string{"risk"}),
		HotspotClusters:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flood_risk", Name: "hotspot_clusters"}),
		NoiseStations:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flood_risk", Name: "noise_stations"}),
		SourceCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flood_risk", Name: "source_cache_total"}, []string{"result"}),
		MessagesProduced:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_risk", Name: "messages_produced_total"}),
	}
}
