// Package config loads detector settings from a file and CLI flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"sprite-detector/internal/cache"
	"sprite-detector/internal/detect"
	"sprite-detector/internal/export"
)

// WorkerMode selects where detection runs.
type WorkerMode string

const (
	WorkerInline  WorkerMode = "inline"
	WorkerPool    WorkerMode = "pool"
	WorkerProcess WorkerMode = "process"
)

// Valid reports whether m is a known mode.
func (m WorkerMode) Valid() bool {
	switch m {
	case WorkerInline, WorkerPool, WorkerProcess:
		return true
	}
	return false
}

// Config holds all configurable detection and output settings.
type Config struct {
	Detection detect.Overrides `json:"detection" yaml:"detection" koanf:"detection"`

	// ChunkSize is a human size such as "4MiB" or "512 kB".
	ChunkSize string `json:"chunk_size" yaml:"chunk_size" koanf:"chunk_size"`

	Worker    WorkerMode `json:"worker" yaml:"worker" koanf:"worker"`
	Workers   int        `json:"workers" yaml:"workers" koanf:"workers"`
	CacheSize int        `json:"cache_size" yaml:"cache_size" koanf:"cache_size"`

	OutputDir    string `json:"output_dir" yaml:"output_dir" koanf:"output_dir"`
	ExportFormat string `json:"export_format" yaml:"export_format" koanf:"export_format"`
	Scale        int    `json:"scale" yaml:"scale" koanf:"scale"`
	LogLevel     string `json:"log_level" yaml:"log_level" koanf:"log_level"`
}

// Load reads a config file; the format follows the extension (.json,
// .yaml, .yml or .toml). Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if err := k.Unmarshal("", &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".yaml", ".yml", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if ext == ".json" {
			err = json.Unmarshal(data, &cfg)
		} else {
			err = yaml.Unmarshal(data, &cfg)
		}
		if err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported file type %q", ext)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Nil detection fields and zero values leave the file setting alone.
type Flags struct {
	Detection    detect.Overrides
	ChunkSize    string
	Worker       string
	Workers      int
	CacheSize    int
	OutputDir    string
	ExportFormat string
	Scale        int
	LogLevel     string
}

// Resolve applies flags over the file settings, fills defaults and
// validates the result.
func (c *Config) Resolve(flags Flags) error {
	c.Detection = c.Detection.Layer(flags.Detection)
	if flags.ChunkSize != "" {
		c.ChunkSize = flags.ChunkSize
	}
	if flags.Worker != "" {
		c.Worker = WorkerMode(flags.Worker)
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.CacheSize > 0 {
		c.CacheSize = flags.CacheSize
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.ExportFormat != "" {
		c.ExportFormat = flags.ExportFormat
	}
	if flags.Scale > 0 {
		c.Scale = flags.Scale
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.Worker == "" {
		c.Worker = WorkerPool
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.CacheSize <= 0 {
		c.CacheSize = cache.DefaultCapacity
	}
	if c.OutputDir == "" {
		c.OutputDir = "sprites"
	}
	if c.ExportFormat == "" {
		c.ExportFormat = string(export.FormatWebP)
	}
	if c.Scale <= 0 {
		c.Scale = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if !c.Worker.Valid() {
		return fmt.Errorf("config: unknown worker mode %q", c.Worker)
	}
	if _, err := export.ParseFormat(c.ExportFormat); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.ChunkSize != "" {
		n, err := humanize.ParseBytes(c.ChunkSize)
		if err != nil {
			return fmt.Errorf("config: chunk_size %q: %w", c.ChunkSize, err)
		}
		c.Detection.ChunkSize = detect.Ptr(int(n))
	}
	if c.Worker == WorkerInline {
		c.Detection.UseWorker = detect.Ptr(false)
	}
	return nil
}

// DetectConfig returns the engine defaults these settings describe.
func (c Config) DetectConfig() (detect.Config, error) {
	cfg := detect.Merge(detect.DefaultConfig(), c.Detection)
	if err := cfg.Validate(); err != nil {
		return detect.Config{}, err
	}
	return cfg, nil
}

// Export returns the frame export options.
func (c Config) Export() export.Options {
	f, _ := export.ParseFormat(c.ExportFormat)
	return export.Options{Format: f, Scale: c.Scale}
}
