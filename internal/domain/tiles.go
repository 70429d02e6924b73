package domain

import (
	"context"
	"image"
	"math"
)

// TileSize is the edge length in pixels of a standard XYZ raster tile.
const TileSize = 256

// TileProvider fetches one slippy-map raster tile. The basemap renderer
// depends on this interface so the relational stages and their tests never
// touch the network.
type TileProvider interface {
	FetchTile(ctx context.Context, zoom, x, y int) (image.Image, error)
}

// TileXY converts a WGS-84 coordinate to fractional XYZ tile coordinates at
// the given zoom, following the Web Mercator slippy-map convention.
func TileXY(lat, lon float64, zoom int) (x, y float64) {
	n := float64(int(1) << uint(zoom))
	x = (lon + 180) / 360 * n
	latRad := lat * math.Pi / 180
	y = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n
	return x, y
}

// TileLatLon converts integer tile coordinates to the WGS-84 coordinate of
// the tile's north-west corner. Inverse of [TileXY] on whole tiles.
func TileLatLon(x, y, zoom int) (lat, lon float64) {
	n := float64(int(1) << uint(zoom))
	lon = float64(x)/n*360 - 180
	lat = math.Atan(math.Sinh(math.Pi*(1-2*float64(y)/n))) * 180 / math.Pi
	return lat, lon
}

// TileRange returns the half-open tile rectangle [Min, Max) covering the box
// at the given zoom.
func (b BoundingBox) TileRange(zoom int) image.Rectangle {
	x0f, y0f := TileXY(b.Top, b.Left, zoom) // north-west corner
	x1f, y1f := TileXY(b.Bottom, b.Right, zoom)
	return image.Rect(int(x0f), int(y0f), int(x1f)+1, int(y1f)+1)
}
