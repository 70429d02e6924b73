// Package stadia fetches terrain basemap tiles from the Stadia Maps XYZ
// raster API. It implements domain.TileProvider.
package stadia

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/ghcnd-rainfall/internal/observability"
)

const defaultBaseURL = "https://tiles.stadiamaps.com/tiles/stamen_terrain"

// Client implements domain.TileProvider using the Stadia Maps tile API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Stadia Maps tile client.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchTile downloads and decodes one terrain tile.
func (c *Client) FetchTile(ctx context.Context, zoom, x, y int) (image.Image, error) {
	params := url.Values{"api_key": {c.apiKey}}
	fullURL := fmt.Sprintf("%s/%d/%d/%d.png?%s", c.baseURL, zoom, x, y, params.Encode())

	start := time.Now()
	img, err := c.doRequest(ctx, fullURL)
	c.metrics.TileFetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.TileRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.TileRequests.WithLabelValues("success").Inc()
	return img, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tile request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("stadia API error: status %d: %s", resp.StatusCode, body)
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode tile: %w", err)
	}
	return img, nil
}
