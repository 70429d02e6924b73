package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ghcnd-rainfall/internal/domain"
	"github.com/couchcryptid/ghcnd-rainfall/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memLoader serves in-memory tables, or a canned error.
type memLoader struct {
	stations []domain.StationMetadata
	obs      []domain.DailyObservation
	err      error
}

func (l *memLoader) Stations(context.Context) ([]domain.StationMetadata, error) {
	return l.stations, l.err
}

func (l *memLoader) Observations(context.Context) ([]domain.DailyObservation, error) {
	return l.obs, l.err
}

// recordingRenderer captures what the pipeline hands to the renderer.
type recordingRenderer struct {
	stations []domain.StationMetadata
	joined   []domain.JoinedObservation
	errs     []error
	calls    int
}

func (r *recordingRenderer) RenderAll(_ context.Context, stations []domain.StationMetadata, joined []domain.JoinedObservation) []error {
	r.calls++
	r.stations = stations
	r.joined = joined
	return r.errs
}

func day(d int) time.Time { return time.Date(2020, 1, d, 0, 0, 0, 0, time.UTC) }

func testTables() ([]domain.StationMetadata, []domain.DailyObservation) {
	stations := []domain.StationMetadata{
		// Passes everything.
		{ID: "ASN1", Name: "Alpha", Latitude: -27, Longitude: 140, Elevation: 50, Element: "PRCP", FirstYear: 1900, LastYear: 2015},
		// Span too short.
		{ID: "ASN2", Name: "Bravo", Latitude: -27, Longitude: 140, Elevation: 30, Element: "PRCP", FirstYear: 1930, LastYear: 2020},
		// Sentinel elevation.
		{ID: "ASN3", Name: "Charlie", Latitude: -27, Longitude: 140, Elevation: -999, Element: "PRCP", FirstYear: 1880, LastYear: 2020},
	}
	obs := []domain.DailyObservation{
		{StationID: "ASN1", Date: day(1), Prcp: 0},
		{StationID: "ASN1", Date: day(2), Prcp: 2},
		{StationID: "ASN1", Date: day(3), Prcp: 4},
		{StationID: "ASN1", Date: day(4), Prcp: 0},
		{StationID: "ASN1", Date: day(5), Prcp: 6},
		{StationID: "ASN3", Date: day(1), Prcp: 9}, // station dropped by sanitizer
		{StationID: "NOPE", Date: day(1), Prcp: 1}, // no matching station
	}
	return stations, obs
}

func newTestPipeline(l Loader, r Renderer) *Pipeline {
	return New(l, r, domain.DefaultStationFilter(), testLogger(), observability.NewMetricsForTesting())
}

func TestPipeline_Run(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	stations, obs := testTables()
	loader := &memLoader{stations: stations, obs: obs}
	renderer := &recordingRenderer{}

	res, err := newTestPipeline(loader, renderer).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.StationRows)
	assert.Equal(t, 7, res.ObservationRows)
	assert.Equal(t, 2, res.FilteredRows) // Alpha, Charlie
	assert.Equal(t, 1, res.CleanedRows)  // Charlie's sentinel dropped
	assert.Equal(t, 5, res.JoinedRows)   // Alpha's five days

	require.Len(t, res.Report.Summaries, 1)
	s := res.Report.Summaries[0]
	assert.Equal(t, "Alpha", s.Name)
	assert.Equal(t, 4.0, s.MeanRainfall)
	assert.Equal(t, 4.0, s.MedianRainfall)
	assert.Equal(t, 3, s.Days)

	assert.Equal(t, time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC), res.Report.GeneratedAt)

	// Renderer got the cleaned stations and the joined table, untouched.
	assert.Equal(t, 1, renderer.calls)
	require.Len(t, renderer.stations, 1)
	assert.Equal(t, "ASN1", renderer.stations[0].ID)
	assert.Len(t, renderer.joined, 5)
}

func TestPipeline_Run_LoaderErrorIsFatal(t *testing.T) {
	loader := &memLoader{err: errors.New("no such file")}
	renderer := &recordingRenderer{}

	_, err := newTestPipeline(loader, renderer).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load stations")
	assert.Zero(t, renderer.calls)
}

func TestPipeline_Run_RenderErrorsAreNotFatal(t *testing.T) {
	stations, obs := testTables()
	loader := &memLoader{stations: stations, obs: obs}
	renderer := &recordingRenderer{errs: []error{errors.New("basemap: tile service unavailable")}}

	res, err := newTestPipeline(loader, renderer).Run(context.Background())

	require.NoError(t, err)
	require.Len(t, res.RenderErrors, 1)
	assert.Len(t, res.Report.Summaries, 1)
}

func TestPipeline_Run_EmptyFilterResultSurfaces(t *testing.T) {
	// Stations all outside the study area.
	loader := &memLoader{
		stations: []domain.StationMetadata{
			{ID: "ASN1", Name: "Far West", Latitude: -27, Longitude: 115, Elevation: 50, Element: "PRCP", FirstYear: 1880, LastYear: 2020},
		},
		obs: []domain.DailyObservation{{StationID: "ASN1", Date: day(1), Prcp: 3}},
	}
	renderer := &recordingRenderer{}

	res, err := newTestPipeline(loader, renderer).Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, res.FilteredRows)
	assert.Zero(t, res.JoinedRows)
	assert.Empty(t, res.Report.Summaries)
}
