// Package config loads gsea settings.
//
// Settings come from built-in defaults, optionally overlaid by a YAML
// file named with --config or the GSEA_CONFIG environment variable.
// Command line flags are applied on top by the caller.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gsea/pkg/core"
	"gsea/pkg/scan"
)

// EnvVar names the environment variable holding a config file path
const EnvVar = "GSEA_CONFIG"

// MaxThreads is the upper bound on the worker pool size
const MaxThreads = core.MaxThreads

// Config holds every tunable of the tool
type Config struct {
	// Threads is the worker pool size for directory operations. Zero
	// means the number of CPUs; larger values are clamped to MaxThreads.
	// Default: number of CPUs, capped at MaxThreads.
	Threads int `yaml:"threads"`

	// TempDir holds per-file artifacts while archiving and extracting.
	// Default: os.TempDir()
	TempDir string `yaml:"temp_dir"`

	// MaxFiles caps how many files a directory scan records. Zero
	// means no cap.
	MaxFiles int `yaml:"max_files"`

	// Exclude lists doublestar patterns skipped by directory scans.
	Exclude []string `yaml:"exclude"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Progress enables periodic progress lines on long operations.
	Progress bool `yaml:"progress"`

	// ProgressInterval is how often progress is reported, e.g. "2s".
	ProgressInterval string `yaml:"progress_interval"`
}

// Default returns the built-in configuration
func Default() *Config {
	threads := runtime.NumCPU()
	if threads > MaxThreads {
		threads = MaxThreads
	}
	return &Config{
		Threads:          threads,
		TempDir:          os.TempDir(),
		LogLevel:         "info",
		Progress:         false,
		ProgressInterval: "1s",
	}
}

// Load returns the defaults overlaid with the file named by GSEA_CONFIG,
// if that variable is set.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile returns the defaults overlaid with the file at path
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports settings that cannot be used
func (c *Config) Validate() error {
	if c.Threads < 0 {
		return fmt.Errorf("threads must not be negative, got %d", c.Threads)
	}
	if err := c.Scan().Validate(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Interval(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return level, nil
}

// Interval parses ProgressInterval
func (c *Config) Interval() (time.Duration, error) {
	d, err := time.ParseDuration(c.ProgressInterval)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid progress_interval %q", c.ProgressInterval)
	}
	return d, nil
}

// Workers resolves Threads to the pool size actually used
func (c *Config) Workers() int {
	n := c.Threads
	if n == 0 {
		n = runtime.NumCPU()
	}
	if n > MaxThreads {
		n = MaxThreads
	}
	return n
}

// Scan returns the directory scan settings
func (c *Config) Scan() scan.Options {
	return scan.Options{MaxFiles: c.MaxFiles, Exclude: c.Exclude}
}

// Options builds the settings for directory operations. Validate must
// have succeeded.
func (c *Config) Options(logger *slog.Logger) core.Options {
	interval, _ := c.Interval()
	return core.Options{
		Threads:          c.Workers(),
		TempDir:          c.TempDir,
		Scan:             c.Scan(),
		Logger:           logger,
		Progress:         c.Progress,
		ProgressInterval: interval,
	}
}
