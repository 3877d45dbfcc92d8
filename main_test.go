package main

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-volume-iterators/pkg/config"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		filter      string
		expectError bool
	}{
		// Built-in scenes
		{"zramp scene", "zramp", "trilinear", false},
		{"wavelet scene", "wavelet", "trilinear", false},
		{"sphere scene", "sphere", "nearest", false},

		// Invalid scenes
		{"unknown scene", "nonexistent", "trilinear", true},
		{"empty scene name", "", "trilinear", true},
		{"bad filter", "zramp", "cubic", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Volume.Filter = tt.filter

			sc, err := createScene(context.Background(), cfg, tt.sceneType, 17)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, sc)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, sc)
			assert.Equal(t, tt.sceneType, sc.Name)
			assert.Equal(t, 17, sc.Volume.Dimensions().X)
			assert.NotEmpty(t, sc.IsoValues)
			assert.NotNil(t, sc.Volume.Accelerator())
		})
	}
}

func TestSavePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "zramp")
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	filename, err := savePNG(dir, img, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "render_20240506_070809.png"), filename)

	file, err := os.Open(filename)
	require.NoError(t, err)
	defer file.Close()

	decoded, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}
