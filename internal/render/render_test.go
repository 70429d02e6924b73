package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ghcnd-rainfall/internal/domain"
	"github.com/couchcryptid/ghcnd-rainfall/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// solidTileProvider serves a uniform tile without touching the network.
type solidTileProvider struct{}

func (solidTileProvider) FetchTile(_ context.Context, _, _, _ int) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, domain.TileSize, domain.TileSize))
	for y := 0; y < domain.TileSize; y++ {
		for x := 0; x < domain.TileSize; x++ {
			img.Set(x, y, color.RGBA{R: 222, G: 214, B: 196, A: 255})
		}
	}
	return img, nil
}

// failingTileProvider always errors, for isolation tests.
type failingTileProvider struct{}

func (failingTileProvider) FetchTile(_ context.Context, _, _, _ int) (image.Image, error) {
	return nil, errors.New("tile service unavailable")
}

func testStations() []domain.StationMetadata {
	return []domain.StationMetadata{
		{ID: "ASN1", Name: "YAMBA PILOT STATION", Latitude: -29.43, Longitude: 153.36, Elevation: 18, Element: "PRCP", FirstYear: 1877, LastYear: 2020},
		{ID: "ASN2", Name: "BRISBANE REGIONAL OFFICE", Latitude: -27.48, Longitude: 153.03, Elevation: 38.1, Element: "PRCP", FirstYear: 1840, LastYear: 2020},
	}
}

func testJoined() []domain.JoinedObservation {
	stations := testStations()
	var joined []domain.JoinedObservation
	for _, s := range stations {
		for d, p := range []float64{0, 1.2, 5.4, 0, 22.6, 3.1} {
			joined = append(joined, domain.JoinedObservation{
				Station: s,
				Observation: domain.DailyObservation{
					StationID: s.ID,
					Date:      time.Date(2020, 1, d+1, 0, 0, 0, 0, time.UTC),
					Prcp:      p,
				},
			})
		}
	}
	return joined
}

func newTestRenderer(t *testing.T, tiles domain.TileProvider) (*Renderer, string) {
	t.Helper()
	dir := t.TempDir()
	return New(tiles, dir, 7, testLogger(), observability.NewMetricsForTesting()), dir
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, "expected %s to exist", path)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderAll(t *testing.T) {
	r, dir := newTestRenderer(t, solidTileProvider{})

	errs := r.RenderAll(context.Background(), testStations(), testJoined())

	assert.Empty(t, errs)
	assertPNG(t, filepath.Join(dir, ScatterFile))
	assertPNG(t, filepath.Join(dir, BasemapFile))
	assertPNG(t, filepath.Join(dir, BoxplotFile))
	assertPNG(t, filepath.Join(dir, BoxplotLogFile))
}

func TestRenderAll_NoTileProviderSkipsBasemapOnly(t *testing.T) {
	r, dir := newTestRenderer(t, nil)

	errs := r.RenderAll(context.Background(), testStations(), testJoined())

	assert.Empty(t, errs)
	assertPNG(t, filepath.Join(dir, ScatterFile))
	assertPNG(t, filepath.Join(dir, BoxplotFile))
	assertPNG(t, filepath.Join(dir, BoxplotLogFile))
	_, err := os.Stat(filepath.Join(dir, BasemapFile))
	assert.True(t, os.IsNotExist(err))
}

func TestRenderAll_BasemapFailureIsIsolated(t *testing.T) {
	r, dir := newTestRenderer(t, failingTileProvider{})

	errs := r.RenderAll(context.Background(), testStations(), testJoined())

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "basemap")
	assertPNG(t, filepath.Join(dir, ScatterFile))
	assertPNG(t, filepath.Join(dir, BoxplotFile))
	assertPNG(t, filepath.Join(dir, BoxplotLogFile))
}

func TestRenderAll_EmptyInputsReportPerPlot(t *testing.T) {
	r, _ := newTestRenderer(t, nil)

	errs := r.RenderAll(context.Background(), nil, nil)

	// Scatter and both boxplots fail; the basemap is disabled.
	assert.Len(t, errs, 3)
}

func TestRenderBoxplot_SingleStation(t *testing.T) {
	r, dir := newTestRenderer(t, nil)
	joined := testJoined()[:6]

	require.NoError(t, r.renderBoxplot(joined, false))
	require.NoError(t, r.renderBoxplot(joined, true))
	assertPNG(t, filepath.Join(dir, BoxplotFile))
	assertPNG(t, filepath.Join(dir, BoxplotLogFile))
}
