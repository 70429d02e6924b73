// Package pipeline orchestrates one report run: load, filter, sanitize,
// join, summarize, render. Each stage is a pure function from the previous
// stage's table; the pipeline adds logging, metrics, and empty-result
// surfacing around them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/ghcnd-rainfall/internal/domain"
	"github.com/couchcryptid/ghcnd-rainfall/internal/observability"
)

// Loader reads the two source tables.
type Loader interface {
	Stations(ctx context.Context) ([]domain.StationMetadata, error)
	Observations(ctx context.Context) ([]domain.DailyObservation, error)
}

// Renderer draws the report artifacts. Failures are per-plot and never
// affect the tables.
type Renderer interface {
	RenderAll(ctx context.Context, stations []domain.StationMetadata, joined []domain.JoinedObservation) []error
}

// Pipeline runs the report stages in order.
type Pipeline struct {
	loader   Loader
	renderer Renderer
	filter   domain.StationFilter
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(loader Loader, renderer Renderer, filter domain.StationFilter, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		loader:   loader,
		renderer: renderer,
		filter:   filter,
		logger:   logger,
		metrics:  metrics,
	}
}

// Result is the outcome of one run: the report tables plus per-stage row
// counts for empty-result diagnosis.
type Result struct {
	Report domain.RainfallReport

	StationRows     int
	ObservationRows int
	FilteredRows    int
	CleanedRows     int
	JoinedRows      int

	RenderErrors []error
}

// Run executes one complete report run. Errors in the load-through-summarize
// stages are fatal and identify the failing stage; render failures are
// collected into the result instead.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	stations, err := p.timedStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	observations, err := p.timedObservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	p.metrics.RowsLoaded.WithLabelValues("stations").Add(float64(len(stations)))
	p.metrics.RowsLoaded.WithLabelValues("observations").Add(float64(len(observations)))
	p.logger.Info("loaded inputs", "stations", len(stations), "observations", len(observations))

	filtered := p.stageFilter(stations)
	cleaned := p.stageSanitize(filtered)
	joined := p.stageJoin(observations, cleaned)
	summaries := p.stageSummarize(joined)

	res := &Result{
		Report: domain.RainfallReport{
			Stations:    cleaned,
			Joined:      joined,
			Summaries:   summaries,
			GeneratedAt: domain.Now(),
		},
		StationRows:     len(stations),
		ObservationRows: len(observations),
		FilteredRows:    len(filtered),
		CleanedRows:     len(cleaned),
		JoinedRows:      len(joined),
	}

	res.RenderErrors = p.stageRender(ctx, cleaned, joined)
	return res, nil
}

func (p *Pipeline) stageFilter(stations []domain.StationMetadata) []domain.StationMetadata {
	defer p.observeStage("filter")()
	filtered := domain.FilterStations(stations, p.filter)
	p.metrics.StationsFiltered.Set(float64(len(filtered)))
	if len(filtered) == 0 {
		p.logger.Warn("station filter matched no rows; check filter criteria against the metadata",
			"element", p.filter.Element,
			"min_span_years", p.filter.MinSpanYears,
		)
	}
	p.logger.Info("filtered stations", "rows", len(filtered))
	return filtered
}

func (p *Pipeline) stageSanitize(filtered []domain.StationMetadata) []domain.StationMetadata {
	defer p.observeStage("sanitize")()
	cleaned := domain.DropSentinelElevations(filtered)
	dropped := len(filtered) - len(cleaned)
	p.metrics.SentinelRowsDropped.Set(float64(dropped))
	p.logger.Info("dropped sentinel elevations", "rows", len(cleaned), "dropped", dropped)
	return cleaned
}

func (p *Pipeline) stageJoin(observations []domain.DailyObservation, cleaned []domain.StationMetadata) []domain.JoinedObservation {
	defer p.observeStage("join")()
	joined := domain.Join(observations, cleaned)
	p.metrics.RowsJoined.Set(float64(len(joined)))
	if len(joined) == 0 && len(observations) > 0 && len(cleaned) > 0 {
		p.logger.Warn("join produced no rows; check that station IDs match between the two inputs")
	}
	p.logger.Info("joined observations", "rows", len(joined))
	return joined
}

func (p *Pipeline) stageSummarize(joined []domain.JoinedObservation) []domain.RainfallSummary {
	defer p.observeStage("summarize")()
	summaries := domain.Summarize(joined)
	p.metrics.StationsSummarized.Set(float64(len(summaries)))
	p.logger.Info("summarized rainfall", "stations", len(summaries))
	return summaries
}

func (p *Pipeline) stageRender(ctx context.Context, cleaned []domain.StationMetadata, joined []domain.JoinedObservation) []error {
	defer p.observeStage("render")()
	return p.renderer.RenderAll(ctx, cleaned, joined)
}

func (p *Pipeline) timedStations(ctx context.Context) ([]domain.StationMetadata, error) {
	defer p.observeStage("load_stations")()
	return p.loader.Stations(ctx)
}

func (p *Pipeline) timedObservations(ctx context.Context) ([]domain.DailyObservation, error) {
	defer p.observeStage("load_observations")()
	return p.loader.Observations(ctx)
}

// observeStage returns a func that records the stage duration when called.
func (p *Pipeline) observeStage(stage string) func() {
	start := time.Now()
	return func() {
		p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
