package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/itohio/goecg/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSnapshot(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "ecg")
	require.NoError(t, runSnapshot(config.Default(), prefix, 600, 240))

	for _, name := range []string{"-strip.png", "-timeline.png", "-detail.png"} {
		f, err := os.Open(prefix + name)
		require.NoError(t, err, name)

		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err, name)
		assert.Equal(t, 600, img.Bounds().Dx(), name)
		assert.Equal(t, 240, img.Bounds().Dy(), name)
	}
}

func TestRunSnapshot_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Display.TimeScale = 0
	assert.ErrorIs(t, runSnapshot(cfg, filepath.Join(t.TempDir(), "x"), 100, 100), config.ErrInvalidConfig)
}
