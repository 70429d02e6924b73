package stadia

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/ghcnd-rainfall/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string) *Client {
	return &Client{
		apiKey:     testAPIKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    testMetrics(),
		logger:     testLogger(),
	}
}

func solidTile(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestClient_FetchTile_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/7/113/73.png", r.URL.Path)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "image/png")
		require.NoError(t, png.Encode(w, solidTile(color.RGBA{R: 200, G: 180, B: 150, A: 255})))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	img, err := c.FetchTile(context.Background(), 7, 113, 73)
	require.NoError(t, err)

	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestClient_FetchTile_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchTile(context.Background(), 7, 113, 73)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestClient_FetchTile_NotPNG(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not an image"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchTile(context.Background(), 7, 113, 73)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode tile")
}

func TestClient_FetchTile_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(srv.URL)
	_, err := c.FetchTile(ctx, 7, 113, 73)
	require.Error(t, err)
}
