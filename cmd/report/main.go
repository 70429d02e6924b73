// Command report runs the GHCN-D long-record rainfall report: it loads the
// station metadata and daily observation CSVs, filters stations with
// century-long precipitation records inside the study area, joins and
// summarizes the observations, renders the plots, and prints the summary
// table.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/ghcnd-rainfall/internal/adapter/csvfile"
	"github.com/couchcryptid/ghcnd-rainfall/internal/adapter/stadia"
	"github.com/couchcryptid/ghcnd-rainfall/internal/config"
	"github.com/couchcryptid/ghcnd-rainfall/internal/domain"
	"github.com/couchcryptid/ghcnd-rainfall/internal/observability"
	"github.com/couchcryptid/ghcnd-rainfall/internal/pipeline"
	"github.com/couchcryptid/ghcnd-rainfall/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize the basemap tile provider (feature-flagged via
	// STADIA_ENABLED / STADIA_API_KEY). Absence degrades only the overlay.
	var tiles domain.TileProvider
	if cfg.StadiaEnabled {
		client := stadia.NewClient(cfg.StadiaAPIKey, cfg.StadiaTimeout, metrics, logger)
		tiles = stadia.NewCachedTileProvider(client, cfg.StadiaCacheSize, metrics)
		metrics.BasemapEnabled.Set(1)
		logger.Info("stadia basemap enabled", "zoom", cfg.StadiaZoom, "cache_size", cfg.StadiaCacheSize, "timeout", cfg.StadiaTimeout)
	} else {
		logger.Info("stadia basemap disabled; set STADIA_API_KEY to render the terrain overlay")
	}

	source := csvfile.NewSource(cfg.MetaCSVPath, cfg.ObsCSVPath)
	renderer := render.New(tiles, cfg.OutputDir, cfg.StadiaZoom, logger, metrics)
	p := pipeline.New(source, renderer, domain.DefaultStationFilter(), logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := p.Run(ctx)
	if err != nil {
		logger.Error("report failed", "error", err)
		os.Exit(1)
	}

	printSummary(os.Stdout, res)

	for _, rerr := range res.RenderErrors {
		logger.Warn("plot not rendered", "error", rerr)
	}

	snapshotPath := filepath.Join(cfg.OutputDir, "report_metrics.prom")
	if err := observability.WriteSnapshot(prometheus.DefaultGatherer, snapshotPath); err != nil {
		logger.Warn("metrics snapshot not written", "error", err)
	}

	logger.Info("report complete",
		"output_dir", cfg.OutputDir,
		"stations", res.CleanedRows,
		"summaries", len(res.Report.Summaries),
	)
}

func printSummary(w io.Writer, res *pipeline.Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Rainfall summary (non-zero days) ===")
	fmt.Fprintf(w, "%-36s %14s %14s %10s\n", "Station", "Mean (mm)", "Median (mm)", "Rain days")
	for _, s := range res.Report.Summaries {
		fmt.Fprintf(w, "%-36s %14.2f %14.2f %10d\n", s.Name, s.MeanRainfall, s.MedianRainfall, s.Days)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rows: %d metadata, %d observations, %d filtered, %d cleaned, %d joined\n",
		res.StationRows, res.ObservationRows, res.FilteredRows, res.CleanedRows, res.JoinedRows)
	fmt.Fprintf(w, "Generated at: %s\n", res.Report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
}
