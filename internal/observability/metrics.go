package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, gauges, and histograms for one
// report run.
type Metrics struct {
	RowsLoaded          *prometheus.CounterVec // label: table={stations,observations}
	StationsFiltered    prometheus.Gauge
	SentinelRowsDropped prometheus.Gauge
	RowsJoined          prometheus.Gauge
	StationsSummarized  prometheus.Gauge
	StageDuration       *prometheus.HistogramVec // label: stage
	RenderErrors        *prometheus.CounterVec   // label: plot

	// Basemap tile metrics.
	TileRequests      *prometheus.CounterVec // label: outcome={success,error}
	TileCache         *prometheus.CounterVec // label: result={hit,miss}
	TileFetchDuration prometheus.Histogram
	BasemapEnabled    prometheus.Gauge
}

// NewMetrics creates and registers all report metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RowsLoaded,
		m.StationsFiltered,
		m.SentinelRowsDropped,
		m.RowsJoined,
		m.StationsSummarized,
		m.StageDuration,
		m.RenderErrors,
		m.TileRequests,
		m.TileCache,
		m.TileFetchDuration,
		m.BasemapEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall_report",
			Name:      "rows_loaded_total",
			Help:      "Rows read from the input CSVs, by table.",
		}, []string{"table"}),
		StationsFiltered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rainfall_report",
			Name:      "stations_filtered",
			Help:      "Stations passing the element, record-span, and bounding-box predicates.",
		}),
		SentinelRowsDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rainfall_report",
			Name:      "sentinel_rows_dropped",
			Help:      "Filtered stations removed for a -999 sentinel elevation.",
		}),
		RowsJoined: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rainfall_report",
			Name:      "rows_joined",
			Help:      "Observation rows matched to a surviving station.",
		}),
		StationsSummarized: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rainfall_report",
			Name:      "stations_summarized",
			Help:      "Stations with at least one positive rainfall reading.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rainfall_report",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
		}, []string{"stage"}),
		RenderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall_report",
			Name:      "render_errors_total",
			Help:      "Rendering failures by plot name.",
		}, []string{"plot"}),
		TileRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall_report",
			Name:      "tile_requests_total",
			Help:      "Stadia Maps tile requests by outcome.",
		}, []string{"outcome"}),
		TileCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall_report",
			Name:      "tile_cache_total",
			Help:      "Tile cache lookups by result.",
		}, []string{"result"}),
		TileFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rainfall_report",
			Name:      "tile_fetch_duration_seconds",
			Help:      "Stadia Maps tile request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		BasemapEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rainfall_report",
			Name:      "basemap_enabled",
			Help:      "1 when the basemap overlay is enabled, 0 otherwise.",
		}),
	}
}
