package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/observability"
)

// StationSource loads a cleaned station set for a source identity.
type StationSource interface {
	Load(ctx context.Context, source string) (domain.StationSet, error)
}

// Invalidator is implemented by sources that cache loaded sets.
type Invalidator interface {
	Invalidate(source string)
}

// Publisher hands a finished assessment to a downstream consumer.
type Publisher interface {
	Publish(ctx context.Context, a *domain.Assessment) error
}

// Stage names used in errors and the assessment_errors_total metric.
const (
	StageLoad    = "load"
	StageAssess  = "assess"
	StagePublish = "publish"
)

// StageError reports which stage of a run failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Pipeline orchestrates the load-assess-publish run and keeps the latest
// successful assessment.
type Pipeline struct {
	source     StationSource
	publisher  Publisher
	sourcePath string
	params     domain.Params
	logger     *slog.Logger
	metrics    *observability.Metrics

	runMu  sync.Mutex
	latest atomic.Pointer[domain.Assessment]
}

// New creates a Pipeline reading sourcePath through source. publisher may be
// nil, in which case assessments are only kept in memory.
func New(source StationSource, publisher Publisher, sourcePath string, params domain.Params, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:     source,
		publisher:  publisher,
		sourcePath: sourcePath,
		params:     params,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once an assessment is available.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.latest.Load() == nil {
		return errors.New("no assessment has completed yet")
	}
	return nil
}

// Latest returns the most recent successful assessment, or nil.
// The returned value must not be modified.
func (p *Pipeline) Latest() *domain.Assessment {
	return p.latest.Load()
}

// Run performs the initial assessment and then blocks until ctx is cancelled.
// A failed initial run is returned to the caller.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "source", p.sourcePath)

	if _, err := p.RunOnce(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// Refresh drops any cached copy of the source and runs again.
func (p *Pipeline) Refresh(ctx context.Context) (*domain.Assessment, error) {
	if inv, ok := p.source.(Invalidator); ok {
		inv.Invalidate(p.sourcePath)
		p.logger.Info("source cache invalidated", "source", p.sourcePath)
	}
	return p.RunOnce(ctx)
}

// RunOnce loads the source, assesses it, publishes the result and stores it
// as the latest assessment. Any stage failure aborts the run and leaves the
// previous assessment in place. Runs are serialized.
func (p *Pipeline) RunOnce(ctx context.Context) (*domain.Assessment, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	log := p.logger.With("run_id", runID)

	set, err := p.source.Load(ctx, p.sourcePath)
	if err != nil {
		return nil, p.fail(log, StageLoad, err)
	}

	a, err := domain.Assess(runID, set, p.params)
	if err != nil {
		return nil, p.fail(log, StageAssess, err)
	}

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, a); err != nil {
			return nil, p.fail(log, StagePublish, err)
		}
	}

	p.latest.Store(a)
	p.record(a, time.Since(start))

	counts := a.CountByRisk()
	log.Info("assessment complete",
		"stations", len(a.Stations),
		"dropped", len(a.Dropped),
		"high", counts[domain.RiskHigh],
		"medium", counts[domain.RiskMedium],
		"low", counts[domain.RiskLow],
		"q_high", a.Thresholds.High,
		"q_medium", a.Thresholds.Medium,
		"clusters", a.ClusterCount,
		"noise", a.NoiseCount,
		"duration", time.Since(start),
	)
	return a, nil
}

func (p *Pipeline) fail(log *slog.Logger, stage string, err error) error {
	log.Error("assessment failed", "stage", stage, "error", err)
	p.metrics.AssessmentErrors.WithLabelValues(stage).Inc()
	return &StageError{Stage: stage, Err: err}
}

func (p *Pipeline) record(a *domain.Assessment, elapsed time.Duration) {
	p.metrics.AssessmentsTotal.Inc()
	p.metrics.AssessmentDuration.Observe(elapsed.Seconds())
	p.metrics.PipelineReady.Set(1)
	p.metrics.StationsLoaded.Set(float64(len(a.Stations)))
	p.metrics.RowsDropped.Add(float64(len(a.Dropped)))
	for risk, n := range a.CountByRisk() {
		p.metrics.StationsByRisk.WithLabelValues(string(risk)).Set(float64(n))
	}
	p.metrics.HotspotClusters.Set(float64(a.ClusterCount))
	p.metrics.NoiseStations.Set(float64(a.NoiseCount))
}
