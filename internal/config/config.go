package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kmmndr/motioncut/internal/region"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Concurrency is the number of videos processed at once.
	Concurrency int `yaml:"concurrency"`

	Detection DetectionConfig `yaml:"detection"`
	Segments  SegmentsConfig  `yaml:"segments"`
	Regions   region.Options  `yaml:"regions"`
	Extract   ExtractConfig   `yaml:"extract"`
	History   HistoryConfig   `yaml:"history"`
}

type DetectionConfig struct {
	DifferenceThreshold   int     `yaml:"difference_threshold"`
	MinContourArea        int     `yaml:"min_contour_area"`
	StaticDurationSeconds float64 `yaml:"static_duration_seconds"`
	BlurKernel            int     `yaml:"blur_kernel"`
}

type SegmentsConfig struct {
	BufferSeconds float64 `yaml:"buffer_seconds"`
}

type ExtractConfig struct {
	// OutputDir is where clips are written; empty means next to the video.
	OutputDir   string        `yaml:"output_dir"`
	Concat      bool          `yaml:"concat"`
	FFmpegPath  string        `yaml:"ffmpeg_path"`
	FFprobePath string        `yaml:"ffprobe_path"`
	Threads     int           `yaml:"threads"`
	Timeout     time.Duration `yaml:"timeout"`
}

type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values no detection run can work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.Detection.DifferenceThreshold < 0 || c.Detection.DifferenceThreshold > 255 {
		errs = append(errs, fmt.Errorf("detection.difference_threshold must be in [0, 255], got %d", c.Detection.DifferenceThreshold))
	}
	if c.Detection.MinContourArea < 0 {
		errs = append(errs, fmt.Errorf("detection.min_contour_area must not be negative"))
	}
	if c.Detection.StaticDurationSeconds <= 0 {
		errs = append(errs, fmt.Errorf("detection.static_duration_seconds must be positive"))
	}
	if c.Segments.BufferSeconds < 0 {
		errs = append(errs, fmt.Errorf("segments.buffer_seconds must not be negative"))
	}
	if f := c.Regions.EdgeFraction; f < 0 || f >= 0.5 {
		errs = append(errs, fmt.Errorf("regions.edge_fraction must be in [0, 0.5), got %v", f))
	}
	for i, r := range c.Regions.Exclude {
		if r.Empty() || r.X < 0 || r.Y < 0 {
			errs = append(errs, fmt.Errorf("regions.exclude[%d] is not a valid rectangle", i))
		}
	}
	if c.Extract.Timeout < 0 {
		errs = append(errs, fmt.Errorf("extract.timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// Default returns the built-in configuration. The default excluded region
// covers the timestamp overlay of the cameras the tool was first used with.
func Default() *Config {
	return &Config{
		Concurrency: 2,
		Detection: DetectionConfig{
			DifferenceThreshold:   25,
			MinContourArea:        1000,
			StaticDurationSeconds: 1.0,
			BlurKernel:            21,
		},
		Segments: SegmentsConfig{
			BufferSeconds: 3,
		},
		Regions: region.Options{
			EdgeFraction: 0.02,
			Exclude: []region.Region{
				{X: 550, Y: 46, Width: 340, Height: 55},
			},
		},
		Extract: ExtractConfig{
			Concat:  true,
			Timeout: 30 * time.Minute,
		},
		History: HistoryConfig{
			Path: filepath.Join(homeDir(), ".motioncut", "history.db"),
		},
	}
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// DefaultPath is where Save writes when no path is given.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".motioncut", "config.yaml")
}

func findConfigFile() string {
	candidates := []string{
		"./motioncut.yaml",
		"./motioncut.yml",
		DefaultPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
