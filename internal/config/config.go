package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"image-workbench/internal/logger"
	"image-workbench/internal/models"

	"github.com/BurntSushi/toml"
)

const appDirName = "image-workbench"

type Config struct {
	History  HistoryConfig   `toml:"history"`
	Logging  LoggingConfig   `toml:"logging"`
	Defaults models.Defaults `toml:"defaults"`
	Output   OutputConfig    `toml:"output"`
	Window   WindowConfig    `toml:"window"`
	Metrics  MetricsConfig   `toml:"metrics"`
	Batch    BatchConfig     `toml:"batch"`
}

type HistoryConfig struct {
	Capacity int `toml:"capacity"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
	// File switches output from the console to JSON lines in this file.
	File string `toml:"file"`
}

type OutputConfig struct {
	JPEGQuality   int    `toml:"jpeg_quality"`
	DefaultFormat string `toml:"default_format"`
}

type WindowConfig struct {
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
}

type MetricsConfig struct {
	// Addr enables the Prometheus endpoint when non-empty, e.g. "127.0.0.1:9464".
	Addr string `toml:"addr"`
}

type BatchConfig struct {
	Jobs int `toml:"jobs"`
}

func Default() Config {
	return Config{
		History:  HistoryConfig{Capacity: models.DefaultHistoryCapacity},
		Logging:  LoggingConfig{Level: "info"},
		Defaults: models.DefaultParameters(),
		Output:   OutputConfig{JPEGQuality: 95, DefaultFormat: "png"},
		Window:   WindowConfig{Width: 1280, Height: 820},
		Batch:    BatchConfig{Jobs: runtime.NumCPU()},
	}
}

// DefaultPath returns the per-user config location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", appDirName+".toml")
	}
	return filepath.Join(dir, appDirName, "config.toml")
}

// Load reads path on top of the defaults. A missing file is not an error.
// Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as TOML, creating the parent directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.History.Capacity < 1 {
		return fmt.Errorf("history.capacity must be at least 1, got %d", c.History.Capacity)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be between 1 and 100, got %d", c.Output.JPEGQuality)
	}
	switch strings.ToLower(c.Output.DefaultFormat) {
	case "png", "jpeg", "jpg", "bmp", "tiff", "tif":
	default:
		return fmt.Errorf("output.default_format %q is not supported", c.Output.DefaultFormat)
	}
	if c.Batch.Jobs < 1 {
		return fmt.Errorf("batch.jobs must be at least 1, got %d", c.Batch.Jobs)
	}
	if err := c.Defaults.Validate(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	return nil
}

func (c Config) LogLevel() logger.LogLevel {
	level, err := logger.ParseLevel(c.Logging.Level)
	if err != nil {
		return logger.InfoLevel
	}
	return level
}

// applyEnv layers LOG_LEVEL, DEBUG and the IMAGE_WORKBENCH_* variables on
// top of the file. DEBUG=1 wins over LOG_LEVEL.
func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if getenv("DEBUG") == "1" {
		c.Logging.Level = "debug"
	}
	if v := getenv("IMAGE_WORKBENCH_HISTORY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IMAGE_WORKBENCH_HISTORY: %w", err)
		}
		c.History.Capacity = n
	}
	if v := getenv("IMAGE_WORKBENCH_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	return nil
}
