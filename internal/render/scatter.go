package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/ghcnd-rainfall/internal/domain"
)

// renderScatter draws one point per station at (longitude, latitude),
// color-mapped continuously by elevation.
func (r *Renderer) renderScatter(stations []domain.StationMetadata) error {
	p := plot.New()
	p.Title.Text = "Long-record precipitation stations"
	p.X.Label.Text = "Longitude (°)"
	p.Y.Label.Text = "Latitude (°)"
	p.Add(plotter.NewGrid())

	sc, err := stationScatter(stations)
	if err != nil {
		return err
	}
	p.Add(sc)

	return p.Save(8*vg.Inch, 6*vg.Inch, r.path(ScatterFile))
}

// stationScatter builds the elevation-coloured scatter used by both the
// plain plot and the basemap overlay.
func stationScatter(stations []domain.StationMetadata) (*plotter.Scatter, error) {
	if len(stations) == 0 {
		return nil, errors.New("no stations to plot")
	}

	pts := make(plotter.XYs, len(stations))
	elevs := make([]float64, len(stations))
	minElev, maxElev := math.Inf(1), math.Inf(-1)
	for i, s := range stations {
		pts[i] = plotter.XY{X: s.Longitude, Y: s.Latitude}
		elevs[i] = s.Elevation
		minElev = math.Min(minElev, s.Elevation)
		maxElev = math.Max(maxElev, s.Elevation)
	}
	if minElev == maxElev {
		// ColorMap needs a non-degenerate range.
		maxElev = minElev + 1
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("build scatter: %w", err)
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(minElev)
	cm.SetMax(maxElev)

	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c, err := cm.At(elevs[i])
		if err != nil {
			c = color.Gray{Y: 128}
		}
		return draw.GlyphStyle{
			Color:  c,
			Radius: vg.Points(4),
			Shape:  draw.CircleGlyph{},
		}
	}
	return sc, nil
}
