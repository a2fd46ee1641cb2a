// Package config provides configuration loading and management for the ring
// analyzer. It handles loading the tunable parameters from YAML files and
// provides the documented defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/ironsheep/coffee-ring/internal/errors"
)

// DefaultAreaRatioThreshold is the empirically tuned rejection threshold of
// the ring validator: regions whose area / filled-area ratio all exceed it are
// too solid to be a ring.
const DefaultAreaRatioThreshold = 0.5

// Config represents the application configuration loaded from YAML
type Config struct {
	Localizer  LocalizerConfig  `yaml:"localizer"`
	Validator  ValidatorConfig  `yaml:"validator"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Profiler   ProfilerConfig   `yaml:"profiler"`
	Scorer     ScorerConfig     `yaml:"scorer"`
	Batch      BatchConfig      `yaml:"batch"`
	Output     OutputConfig     `yaml:"output"`
}

// LocalizerConfig tunes circle detection and cropping.
type LocalizerConfig struct {
	// MedianRadius is the square median footprint radius applied before edge detection
	MedianRadius int `yaml:"medianRadius"`

	// CannySigma is the Gaussian smoothing scale of the edge detector
	CannySigma float64 `yaml:"cannySigma"`

	// CannyLow and CannyHigh are hysteresis thresholds as fractions of the
	// strongest gradient magnitude
	CannyLow  float64 `yaml:"cannyLow"`
	CannyHigh float64 `yaml:"cannyHigh"`

	// Hough radius search range, inclusive
	RadiusMin  int `yaml:"radiusMin"`
	RadiusMax  int `yaml:"radiusMax"`
	RadiusStep int `yaml:"radiusStep"`

	// CropPadding is added to the detected radius to get the crop half-width
	CropPadding int `yaml:"cropPadding"`
}

// ValidatorConfig tunes ring visibility checking.
type ValidatorConfig struct {
	MedianRadius       int     `yaml:"medianRadius"`
	AreaRatioThreshold float64 `yaml:"areaRatioThreshold"`
}

// SampleBitDepth is the depth of every raster the loader produces: source
// images of any depth are rescaled to [0, 255].
const SampleBitDepth = 8

// NormalizerConfig describes the intensity range used for inversion.
type NormalizerConfig struct {
	// BitDepth of the intensity samples; inversion maps v to 2^BitDepth-1-v.
	// Must match SampleBitDepth.
	BitDepth int `yaml:"bitDepth"`
}

// ProfilerConfig tunes radial sampling.
type ProfilerConfig struct {
	NumLines  int `yaml:"numLines"`
	Tolerance int `yaml:"tolerance"`
}

// ScorerConfig holds the background weights of the ring parameter formula.
type ScorerConfig struct {
	ExteriorWeight float64 `yaml:"exteriorWeight"`
	InteriorWeight float64 `yaml:"interiorWeight"`
}

// BatchConfig controls directory processing.
type BatchConfig struct {
	// Workers is the number of images analyzed concurrently; 1 is sequential
	Workers int `yaml:"workers"`

	// ImageTimeout bounds the processing time of a single image
	ImageTimeout time.Duration `yaml:"imageTimeout"`
}

// OutputConfig controls optional debug artifacts.
type OutputConfig struct {
	// OverlayDir, when set, receives one annotated PNG per measured image
	OverlayDir string `yaml:"overlayDir"`

	CircleColor  string `yaml:"circleColor"`
	ProfileColor string `yaml:"profileColor"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Localizer.MedianRadius = 1
	cfg.Localizer.CannySigma = 30
	cfg.Localizer.CannyLow = 0.1
	cfg.Localizer.CannyHigh = 0.2
	cfg.Localizer.RadiusMin = 20
	cfg.Localizer.RadiusMax = 250
	cfg.Localizer.RadiusStep = 10
	cfg.Localizer.CropPadding = 100

	cfg.Validator.MedianRadius = 3
	cfg.Validator.AreaRatioThreshold = DefaultAreaRatioThreshold

	cfg.Normalizer.BitDepth = SampleBitDepth

	cfg.Profiler.NumLines = 20
	cfg.Profiler.Tolerance = 10

	cfg.Scorer.ExteriorWeight = 0.75
	cfg.Scorer.InteriorWeight = 0.25

	cfg.Batch.Workers = 1
	cfg.Batch.ImageTimeout = 2 * time.Minute

	cfg.Output.CircleColor = "#FF3030"
	cfg.Output.ProfileColor = "#30A0FF"

	return cfg
}

// MaxIntensity returns the largest sample value representable at the
// configured bit depth.
func (c *Config) MaxIntensity() float64 {
	return float64(uint64(1)<<uint(c.Normalizer.BitDepth) - 1)
}

// Validate checks that every parameter is usable by the pipeline.
func (c *Config) Validate() error {
	l := c.Localizer
	switch {
	case l.MedianRadius < 0:
		return invalid("localizer.medianRadius must be >= 0 (got %d)", l.MedianRadius)
	case l.CannySigma <= 0:
		return invalid("localizer.cannySigma must be > 0 (got %g)", l.CannySigma)
	case l.CannyLow < 0 || l.CannyHigh <= 0 || l.CannyLow > l.CannyHigh || l.CannyHigh > 1:
		return invalid("localizer canny thresholds must satisfy 0 <= low <= high <= 1 (got %g, %g)", l.CannyLow, l.CannyHigh)
	case l.RadiusMin < 1 || l.RadiusMax < l.RadiusMin:
		return invalid("localizer radius range invalid (got %d..%d)", l.RadiusMin, l.RadiusMax)
	case l.RadiusStep < 1:
		return invalid("localizer.radiusStep must be >= 1 (got %d)", l.RadiusStep)
	case l.CropPadding < 0:
		return invalid("localizer.cropPadding must be >= 0 (got %d)", l.CropPadding)
	}
	if c.Validator.MedianRadius < 0 {
		return invalid("validator.medianRadius must be >= 0 (got %d)", c.Validator.MedianRadius)
	}
	if c.Validator.AreaRatioThreshold <= 0 || c.Validator.AreaRatioThreshold > 1 {
		return invalid("validator.areaRatioThreshold must be in (0, 1] (got %g)", c.Validator.AreaRatioThreshold)
	}
	if c.Normalizer.BitDepth != SampleBitDepth {
		return invalid("normalizer.bitDepth must be %d, the depth of loaded rasters (got %d)",
			SampleBitDepth, c.Normalizer.BitDepth)
	}
	if c.Profiler.NumLines < 1 {
		return invalid("profiler.numLines must be >= 1 (got %d)", c.Profiler.NumLines)
	}
	if c.Profiler.Tolerance < 0 {
		return invalid("profiler.tolerance must be >= 0 (got %d)", c.Profiler.Tolerance)
	}
	if c.Batch.Workers < 1 {
		return invalid("batch.workers must be >= 1 (got %d)", c.Batch.Workers)
	}
	if c.Batch.ImageTimeout <= 0 {
		return invalid("batch.imageTimeout must be > 0 (got %s)", c.Batch.ImageTimeout)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return apperrors.NewValidationError(fmt.Sprintf(format, args...), nil)
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
