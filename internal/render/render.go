// Package render produces the report's graphical artifacts: the station
// scatter, the terrain basemap overlay, and the rainfall boxplots. It
// consumes the derived tables and never mutates them; the basemap reaches
// the network only through domain.TileProvider.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/ghcnd-rainfall/internal/domain"
	"github.com/couchcryptid/ghcnd-rainfall/internal/observability"
)

// Output file names, relative to the renderer's output directory.
const (
	ScatterFile    = "station_scatter.png"
	BasemapFile    = "station_basemap.png"
	BoxplotFile    = "rainfall_boxplot.png"
	BoxplotLogFile = "rainfall_boxplot_log.png"
)

// Renderer draws the report plots into an output directory.
type Renderer struct {
	tiles   domain.TileProvider // nil disables the basemap overlay
	outDir  string
	zoom    int
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Renderer. Pass a nil tile provider to disable the basemap
// overlay; the remaining plots are unaffected.
func New(tiles domain.TileProvider, outDir string, zoom int, logger *slog.Logger, metrics *observability.Metrics) *Renderer {
	return &Renderer{
		tiles:   tiles,
		outDir:  outDir,
		zoom:    zoom,
		logger:  logger,
		metrics: metrics,
	}
}

// RenderAll draws every artifact, isolating failures per plot: one failed
// visualization never prevents the others from rendering. The returned slice
// holds one error per failed plot.
func (r *Renderer) RenderAll(ctx context.Context, stations []domain.StationMetadata, joined []domain.JoinedObservation) []error {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return []error{fmt.Errorf("create output dir: %w", err)}
	}

	var errs []error
	fail := func(plot string, err error) {
		r.logger.Error("render failed", "plot", plot, "error", err)
		r.metrics.RenderErrors.WithLabelValues(plot).Inc()
		errs = append(errs, fmt.Errorf("%s: %w", plot, err))
	}

	if err := r.renderScatter(stations); err != nil {
		fail("scatter", err)
	} else {
		r.logger.Info("rendered plot", "plot", "scatter", "path", r.path(ScatterFile))
	}

	if r.tiles == nil {
		r.logger.Info("basemap overlay disabled, skipping", "plot", "basemap")
	} else if err := r.renderBasemap(ctx, stations); err != nil {
		fail("basemap", err)
	} else {
		r.logger.Info("rendered plot", "plot", "basemap", "path", r.path(BasemapFile))
	}

	if err := r.renderBoxplot(joined, false); err != nil {
		fail("boxplot", err)
	} else {
		r.logger.Info("rendered plot", "plot", "boxplot", "path", r.path(BoxplotFile))
	}

	if err := r.renderBoxplot(joined, true); err != nil {
		fail("boxplot_log", err)
	} else {
		r.logger.Info("rendered plot", "plot", "boxplot_log", "path", r.path(BoxplotLogFile))
	}

	return errs
}

func (r *Renderer) path(name string) string {
	return filepath.Join(r.outDir, name)
}
