package render

import (
	"context"
	"fmt"
	"image"
	imgdraw "image/draw"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/ghcnd-rainfall/internal/domain"
)

// renderBasemap draws the station scatter over a stitched terrain mosaic
// covering the basemap extent.
func (r *Renderer) renderBasemap(ctx context.Context, stations []domain.StationMetadata) error {
	sc, err := stationScatter(stations)
	if err != nil {
		return err
	}

	mosaic, extent, err := r.fetchMosaic(ctx)
	if err != nil {
		return fmt.Errorf("fetch basemap: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Long-record precipitation stations (terrain)"
	p.X.Label.Text = "Longitude (°)"
	p.Y.Label.Text = "Latitude (°)"

	p.Add(plotter.NewImage(mosaic, extent.Left, extent.Bottom, extent.Right, extent.Top))
	p.Add(sc)

	// Clamp the axes to the report's extent rather than the (larger) mosaic.
	p.X.Min, p.X.Max = domain.BasemapExtent.Left, domain.BasemapExtent.Right
	p.Y.Min, p.Y.Max = domain.BasemapExtent.Bottom, domain.BasemapExtent.Top

	return p.Save(8*vg.Inch, 6*vg.Inch, r.path(BasemapFile))
}

// fetchMosaic downloads the tile grid covering the basemap extent and
// stitches it into one image, returning the mosaic's geographic extent.
func (r *Renderer) fetchMosaic(ctx context.Context) (image.Image, domain.BoundingBox, error) {
	grid := domain.BasemapExtent.TileRange(r.zoom)

	mosaic := image.NewRGBA(image.Rect(0, 0, grid.Dx()*domain.TileSize, grid.Dy()*domain.TileSize))
	for ty := grid.Min.Y; ty < grid.Max.Y; ty++ {
		for tx := grid.Min.X; tx < grid.Max.X; tx++ {
			tile, err := r.tiles.FetchTile(ctx, r.zoom, tx, ty)
			if err != nil {
				return nil, domain.BoundingBox{}, fmt.Errorf("tile %d/%d/%d: %w", r.zoom, tx, ty, err)
			}

			dst := image.Rect(
				(tx-grid.Min.X)*domain.TileSize,
				(ty-grid.Min.Y)*domain.TileSize,
				(tx-grid.Min.X+1)*domain.TileSize,
				(ty-grid.Min.Y+1)*domain.TileSize,
			)
			imgdraw.Draw(mosaic, dst, tile, tile.Bounds().Min, imgdraw.Src)
		}
	}

	top, left := domain.TileLatLon(grid.Min.X, grid.Min.Y, r.zoom)
	bottom, right := domain.TileLatLon(grid.Max.X, grid.Max.Y, r.zoom)
	return mosaic, domain.BoundingBox{Left: left, Bottom: bottom, Right: right, Top: top}, nil
}
