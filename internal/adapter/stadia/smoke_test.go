//go:build stadia

package stadia

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Stadia Maps API and require a valid STADIA_API_KEY
// env var. Run with: go test -tags=stadia ./internal/adapter/stadia/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("STADIA_API_KEY")
	if key == "" {
		t.Fatal("STADIA_API_KEY must be set to run smoke tests")
	}
	c := NewClient(key, 15*time.Second, testMetrics(), testLogger())
	return c
}

func TestSmoke_FetchTile(t *testing.T) {
	c := smokeClient(t)

	// Zoom-7 tile over Brisbane.
	img, err := c.FetchTile(context.Background(), 7, 118, 73)
	require.NoError(t, err)

	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}
