package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, 250, cfg.Display.SamplingRateHz)
	assert.Equal(t, float64(25), cfg.Display.TimeScale)
	assert.Equal(t, float64(10), cfg.Display.AmplitudeScale)
	assert.Equal(t, float64(1), cfg.Display.GridSpacing)
	assert.Equal(t, "II", cfg.Display.LeadLabel)
	assert.Equal(t, 5*time.Second, cfg.Realtime.Window)
	assert.Equal(t, 20*time.Second, cfg.Timeline.ProducerInterval)
	assert.Equal(t, 30*time.Minute, cfg.Timeline.Retention)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 250, cfg.Display.SamplingRateHz)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
display:
  sampling_rate_hz: 128
  time_scale: 50
  amplitude_scale: 20
  grid_spacing: 2
  lead_label: "V1"

realtime:
  window: 3s
  fps: 60

timeline:
  producer_interval: 10s
  retention: 15m
  row_duration: 30s
  segment_duration: 5s
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, 128, cfg.Display.SamplingRateHz)
	assert.Equal(t, float64(50), cfg.Display.TimeScale)
	assert.Equal(t, float64(20), cfg.Display.AmplitudeScale)
	assert.Equal(t, float64(2), cfg.Display.GridSpacing)
	assert.Equal(t, "V1", cfg.Display.LeadLabel)
	assert.Equal(t, 3*time.Second, cfg.Realtime.Window)
	assert.Equal(t, 60, cfg.Realtime.FPS)
	assert.Equal(t, 10*time.Second, cfg.Timeline.ProducerInterval)
	assert.Equal(t, 15*time.Minute, cfg.Timeline.Retention)
	assert.Equal(t, 30*time.Second, cfg.Timeline.RowDuration)
	assert.Equal(t, 5*time.Second, cfg.Timeline.SegmentDuration)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
display:
  lead_label: "aVR"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "aVR", cfg.Display.LeadLabel)
	assert.Equal(t, 250, cfg.Display.SamplingRateHz)
	assert.Equal(t, time.Minute, cfg.Timeline.RowDuration)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Display.LeadLabel = "V5"
	cfg.Timeline.Retention = 10 * time.Minute

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "V5", loaded.Display.LeadLabel)
	assert.Equal(t, 10*time.Minute, loaded.Timeline.Retention)
}

func TestClone_Independent(t *testing.T) {
	cfg := Default()
	cp := cfg.Clone()
	cp.Display.SamplingRateHz = 500

	assert.Equal(t, 250, cfg.Display.SamplingRateHz)
	assert.Equal(t, 500, cp.Display.SamplingRateHz)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"zero sampling rate", func(c *Config) { c.Display.SamplingRateHz = 0 }, "sampling_rate_hz"},
		{"negative sampling rate", func(c *Config) { c.Display.SamplingRateHz = -1 }, "sampling_rate_hz"},
		{"zero time scale", func(c *Config) { c.Display.TimeScale = 0 }, "time_scale"},
		{"zero amplitude scale", func(c *Config) { c.Display.AmplitudeScale = 0 }, "amplitude_scale"},
		{"zero grid spacing", func(c *Config) { c.Display.GridSpacing = 0 }, "grid_spacing"},
		{"zero pixels per mm", func(c *Config) { c.Display.PixelsPerMM = 0 }, "pixels_per_mm"},
		{"zero fps", func(c *Config) { c.Realtime.FPS = 0 }, "realtime.fps"},
		{"retention below window", func(c *Config) { c.Realtime.Retention = time.Second }, "realtime.retention"},
		{"zero row duration", func(c *Config) { c.Timeline.RowDuration = 0 }, "row_duration"},
		{"segment not dividing row", func(c *Config) { c.Timeline.SegmentDuration = 7 * time.Second }, "segment_duration"},
		{"zero row height", func(c *Config) { c.Timeline.RowHeight = 0 }, "row_height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_ReportsAllFields(t *testing.T) {
	cfg := Default()
	cfg.Display.SamplingRateHz = 0
	cfg.Display.TimeScale = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sampling_rate_hz")
	assert.Contains(t, err.Error(), "time_scale")
}
