package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// ErrInvalid marks configuration values outside their domain
var ErrInvalid = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	Detection DetectionConfig `yaml:"detection" toml:"detection"`
	FFmpeg    FFmpegConfig    `yaml:"ffmpeg" toml:"ffmpeg"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
}

// DetectionConfig tunes strike detection
type DetectionConfig struct {
	// BrightnessThreshold is the average luma (0-255) a frame must exceed.
	// Dark rural skies work around 40-70, city skies need 80-120.
	BrightnessThreshold float64 `yaml:"brightness_threshold" toml:"brightness_threshold"`
	// PreRoll is kept before each strike, in seconds.
	PreRoll float64 `yaml:"pre_roll" toml:"pre_roll"`
	// PostRoll is kept after each strike, in seconds.
	PostRoll float64 `yaml:"post_roll" toml:"post_roll"`
}

type FFmpegConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path" toml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path" toml:"ffprobe_path"`
	Threads     int    `yaml:"threads" toml:"threads"`
	// Profile selects the encoder: auto, hardware or software.
	Profile string `yaml:"profile" toml:"profile"`
}

type OutputConfig struct {
	// Suffix is appended to the input name, extension included.
	Suffix string `yaml:"suffix" toml:"suffix"`
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

	if err := unmarshal(path, data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// Save writes configuration to file, as TOML or YAML by extension
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks every value against its domain
func (c *Config) Validate() error {
	var errs []error

	d := c.Detection
	if !finite(d.BrightnessThreshold) || d.BrightnessThreshold < 0 || d.BrightnessThreshold > 255 {
		errs = append(errs, fmt.Errorf("%w: brightness_threshold %v must be within 0-255", ErrInvalid, d.BrightnessThreshold))
	}
	if !finite(d.PreRoll) || d.PreRoll < 0 {
		errs = append(errs, fmt.Errorf("%w: pre_roll %v must be >= 0", ErrInvalid, d.PreRoll))
	}
	if !finite(d.PostRoll) || d.PostRoll < 0 {
		errs = append(errs, fmt.Errorf("%w: post_roll %v must be >= 0", ErrInvalid, d.PostRoll))
	}
	if c.FFmpeg.Threads < 0 {
		errs = append(errs, fmt.Errorf("%w: ffmpeg.threads %d must be >= 0", ErrInvalid, c.FFmpeg.Threads))
	}
	switch strings.ToLower(c.FFmpeg.Profile) {
	case "", "auto", "hardware", "software":
	default:
		errs = append(errs, fmt.Errorf("%w: ffmpeg.profile %q must be auto, hardware or software", ErrInvalid, c.FFmpeg.Profile))
	}
	if strings.TrimSpace(c.Output.Suffix) == "" || filepath.Ext(c.Output.Suffix) == "" {
		errs = append(errs, fmt.Errorf("%w: output.suffix %q must carry a file extension", ErrInvalid, c.Output.Suffix))
	}

	return errors.Join(errs...)
}

// Default returns the stock configuration
func Default() *Config {
	return &Config{
		Detection: DetectionConfig{
			BrightnessThreshold: 50,
			PreRoll:             0.5,
			PostRoll:            1.0,
		},
		FFmpeg: FFmpegConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			Threads:     0,
			Profile:     "auto",
		},
		Output: OutputConfig{
			Suffix: " - Lightning Trimmed.mp4",
		},
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func findConfigFile() string {
	candidates := []string{
		"./lightningtrim.yaml",
		"./lightningtrim.yml",
		"./lightningtrim.toml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".lightningtrim", "config.yaml"),
			filepath.Join(home, ".lightningtrim", "config.toml"),
		)
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
