package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/ghcnd-rainfall/internal/domain"
)

// renderBoxplot draws one box per station over the zero-excluded rainfall
// readings, with the mean overlaid as a diamond marker. The log variant uses
// a base-10 y scale to compress precipitation's long right tail.
func (r *Renderer) renderBoxplot(joined []domain.JoinedObservation, logScale bool) error {
	names, values := domain.GroupPositiveRainfall(joined)
	if len(names) == 0 {
		return errors.New("no positive rainfall readings to plot")
	}

	p := plot.New()
	p.Title.Text = "Daily rainfall distribution by station"
	p.Y.Label.Text = "Rainfall (mm)"
	if logScale {
		p.Title.Text = "Daily rainfall distribution by station (log scale)"
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	means := make(plotter.XYs, len(names))
	for i := range names {
		box, err := plotter.NewBoxPlot(vg.Points(22), float64(i), plotter.Values(values[i]))
		if err != nil {
			return fmt.Errorf("box %q: %w", names[i], err)
		}
		p.Add(box)
		means[i] = plotter.XY{X: float64(i), Y: stat.Mean(values[i], nil)}
	}

	meanMarks, err := plotter.NewScatter(means)
	if err != nil {
		return fmt.Errorf("mean markers: %w", err)
	}
	meanMarks.GlyphStyle = draw.GlyphStyle{
		Color:  color.RGBA{R: 178, G: 34, B: 34, A: 255},
		Radius: vg.Points(3.5),
		Shape:  draw.PyramidGlyph{},
	}
	p.Add(meanMarks)
	p.Legend.Add("mean", meanMarks)
	p.Legend.Top = true

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	out := BoxplotFile
	if logScale {
		out = BoxplotLogFile
	}
	return p.Save(10*vg.Inch, 6*vg.Inch, r.path(out))
}
