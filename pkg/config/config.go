package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration.
type Config struct {
	Display  DisplayConfig  `yaml:"display"`
	Synth    SynthConfig    `yaml:"synth"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Timeline TimelineConfig `yaml:"timeline"`
	Detail   DetailConfig   `yaml:"detail"`
}

// DisplayConfig contains the signal and paper settings shared by all views.
type DisplayConfig struct {
	SamplingRateHz int     `yaml:"sampling_rate_hz"`
	TimeScale      float64 `yaml:"time_scale"`      // Paper speed (mm/s)
	AmplitudeScale float64 `yaml:"amplitude_scale"` // Gain (mm/mV)
	GridSpacing    float64 `yaml:"grid_spacing"`    // Minor grid spacing (mm), major lines every 5
	LeadLabel      string  `yaml:"lead_label"`
	PixelsPerMM    float64 `yaml:"pixels_per_mm"`
}

// SynthConfig contains the synthetic ECG shape parameters.
type SynthConfig struct {
	HeartRateBPM       float64       `yaml:"heart_rate_bpm"`
	HeartRateVariation float64       `yaml:"heart_rate_variation_bpm"` // Respiratory sinus arrhythmia depth (bpm)
	RespirationRateHz  float64       `yaml:"respiration_rate_hz"`
	AmplitudeVariation float64       `yaml:"amplitude_variation"` // Per-cycle fraction, 0.05 = +/-5%
	DriftAmplitude     float64       `yaml:"drift_amplitude"`     // Baseline wander bound (mV)
	DriftInterval      time.Duration `yaml:"drift_interval"`
	JitterAmplitude    float64       `yaml:"jitter_amplitude"` // High-frequency noise bound (mV)
}

// RealtimeConfig contains the scrolling strip settings.
type RealtimeConfig struct {
	ProducerInterval   time.Duration `yaml:"producer_interval"`
	Window             time.Duration `yaml:"window"`
	Retention          time.Duration `yaml:"retention"`
	FPS                int           `yaml:"fps"`
	Gain               float64       `yaml:"gain"`
	InterpolationSteps int           `yaml:"interpolation_steps"`
}

// TimelineConfig contains the multi-row timeline settings.
type TimelineConfig struct {
	ProducerInterval   time.Duration `yaml:"producer_interval"`
	Retention          time.Duration `yaml:"retention"`
	RowDuration        time.Duration `yaml:"row_duration"`
	SegmentDuration    time.Duration `yaml:"segment_duration"`
	RowHeight          float64       `yaml:"row_height"` // px
	Gain               float64       `yaml:"gain"`
	InterpolationSteps int           `yaml:"interpolation_steps"`
	ShowLabels         bool          `yaml:"show_labels"`
}

// DetailConfig contains the zoomed segment view settings.
type DetailConfig struct {
	Gain               float64 `yaml:"gain"`
	InterpolationSteps int     `yaml:"interpolation_steps"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			SamplingRateHz: 250,
			TimeScale:      25,
			AmplitudeScale: 10,
			GridSpacing:    1,
			LeadLabel:      "II",
			PixelsPerMM:    96 / 25.4,
		},
		Synth: SynthConfig{
			HeartRateBPM:       72,
			HeartRateVariation: 4,
			RespirationRateHz:  0.25,
			AmplitudeVariation: 0.05,
			DriftAmplitude:     0.05,
			DriftInterval:      time.Second,
			JitterAmplitude:    0.01,
		},
		Realtime: RealtimeConfig{
			ProducerInterval:   33 * time.Millisecond,
			Window:             5 * time.Second,
			Retention:          10 * time.Second,
			FPS:                30,
			Gain:               1.0,
			InterpolationSteps: 3,
		},
		Timeline: TimelineConfig{
			ProducerInterval:   20 * time.Second,
			Retention:          30 * time.Minute,
			RowDuration:        time.Minute,
			SegmentDuration:    10 * time.Second,
			RowHeight:          80,
			Gain:               1.5,
			InterpolationSteps: 4,
			ShowLabels:         true,
		},
		Detail: DetailConfig{
			Gain:               1.2,
			InterpolationSteps: 4,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Clone returns an independent copy. Configurations are replaced wholesale,
// so editors should modify a clone and hand it over.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate reports every field that would make production or rendering
// divide by zero. The returned error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	bad := func(field string, v any) {
		errs = append(errs, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, field, v))
	}

	if c.Display.SamplingRateHz <= 0 {
		bad("display.sampling_rate_hz", c.Display.SamplingRateHz)
	}
	if c.Display.TimeScale <= 0 {
		bad("display.time_scale", c.Display.TimeScale)
	}
	if c.Display.AmplitudeScale <= 0 {
		bad("display.amplitude_scale", c.Display.AmplitudeScale)
	}
	if c.Display.GridSpacing <= 0 {
		bad("display.grid_spacing", c.Display.GridSpacing)
	}
	if c.Display.PixelsPerMM <= 0 {
		bad("display.pixels_per_mm", c.Display.PixelsPerMM)
	}

	if c.Realtime.ProducerInterval <= 0 {
		bad("realtime.producer_interval", c.Realtime.ProducerInterval)
	}
	if c.Realtime.Window <= 0 {
		bad("realtime.window", c.Realtime.Window)
	}
	if c.Realtime.Retention < c.Realtime.Window {
		errs = append(errs, fmt.Errorf("%w: realtime.retention %v shorter than realtime.window %v",
			ErrInvalidConfig, c.Realtime.Retention, c.Realtime.Window))
	}
	if c.Realtime.FPS <= 0 {
		bad("realtime.fps", c.Realtime.FPS)
	}

	if c.Timeline.ProducerInterval <= 0 {
		bad("timeline.producer_interval", c.Timeline.ProducerInterval)
	}
	if c.Timeline.Retention <= 0 {
		bad("timeline.retention", c.Timeline.Retention)
	}
	if c.Timeline.RowDuration <= 0 {
		bad("timeline.row_duration", c.Timeline.RowDuration)
	}
	if c.Timeline.SegmentDuration <= 0 {
		bad("timeline.segment_duration", c.Timeline.SegmentDuration)
	} else if c.Timeline.RowDuration%c.Timeline.SegmentDuration != 0 {
		errs = append(errs, fmt.Errorf("%w: timeline.segment_duration %v does not divide timeline.row_duration %v",
			ErrInvalidConfig, c.Timeline.SegmentDuration, c.Timeline.RowDuration))
	}
	if c.Timeline.RowHeight <= 0 {
		bad("timeline.row_height", c.Timeline.RowHeight)
	}

	return errors.Join(errs...)
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Display.SamplingRateHz == 0 {
		c.Display.SamplingRateHz = def.Display.SamplingRateHz
	}
	if c.Display.TimeScale == 0 {
		c.Display.TimeScale = def.Display.TimeScale
	}
	if c.Display.AmplitudeScale == 0 {
		c.Display.AmplitudeScale = def.Display.AmplitudeScale
	}
	if c.Display.GridSpacing == 0 {
		c.Display.GridSpacing = def.Display.GridSpacing
	}
	if c.Display.PixelsPerMM == 0 {
		c.Display.PixelsPerMM = def.Display.PixelsPerMM
	}
	if c.Display.LeadLabel == "" {
		c.Display.LeadLabel = def.Display.LeadLabel
	}

	if c.Synth.HeartRateBPM == 0 {
		c.Synth.HeartRateBPM = def.Synth.HeartRateBPM
	}
	if c.Synth.DriftInterval == 0 {
		c.Synth.DriftInterval = def.Synth.DriftInterval
	}

	if c.Realtime.ProducerInterval == 0 {
		c.Realtime.ProducerInterval = def.Realtime.ProducerInterval
	}
	if c.Realtime.Window == 0 {
		c.Realtime.Window = def.Realtime.Window
	}
	if c.Realtime.Retention == 0 {
		c.Realtime.Retention = def.Realtime.Retention
	}
	if c.Realtime.FPS == 0 {
		c.Realtime.FPS = def.Realtime.FPS
	}
	if c.Realtime.Gain == 0 {
		c.Realtime.Gain = def.Realtime.Gain
	}

	if c.Timeline.ProducerInterval == 0 {
		c.Timeline.ProducerInterval = def.Timeline.ProducerInterval
	}
	if c.Timeline.Retention == 0 {
		c.Timeline.Retention = def.Timeline.Retention
	}
	if c.Timeline.RowDuration == 0 {
		c.Timeline.RowDuration = def.Timeline.RowDuration
	}
	if c.Timeline.SegmentDuration == 0 {
		c.Timeline.SegmentDuration = def.Timeline.SegmentDuration
	}
	if c.Timeline.RowHeight == 0 {
		c.Timeline.RowHeight = def.Timeline.RowHeight
	}
	if c.Timeline.Gain == 0 {
		c.Timeline.Gain = def.Timeline.Gain
	}

	if c.Detail.Gain == 0 {
		c.Detail.Gain = def.Detail.Gain
	}
}
