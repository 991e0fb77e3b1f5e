package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the per-directory configuration file
const FileName = ".planboard.json"

// Environment overrides
const (
	EnvProject = "PLANBOARD_PROJECT"
	EnvActor   = "PLANBOARD_ACTOR"
	EnvAPIKey  = "ANTHROPIC_API_KEY"
)

// Config represents the full planboard configuration
type Config struct {
	ProjectFile string         `json:"projectFile"`
	Actor       string         `json:"actor"`
	Timeline    TimelineConfig `json:"timeline"`
	Server      ServerConfig   `json:"server"`
	Summary     SummaryConfig  `json:"summary"`
	Log         LogConfig      `json:"log"`
	Watch       WatchConfig    `json:"watch"`
}

// TimelineConfig contains Gantt view settings
type TimelineConfig struct {
	DefaultZoom string `json:"defaultZoom"`
	// LabelWidth is the width of the task name column in the terminal chart
	LabelWidth int `json:"labelWidth"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Addr           string `json:"addr"`
	ReadTimeoutMs  int    `json:"readTimeoutMs"`
	WriteTimeoutMs int    `json:"writeTimeoutMs"`
}

// SummaryConfig contains AI summary settings. The API key is only ever
// read from the environment.
type SummaryConfig struct {
	Enabled   bool   `json:"enabled"`
	Model     string `json:"model"`
	MaxTokens int    `json:"maxTokens"`
	TimeoutMs int    `json:"timeoutMs"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// WatchConfig contains project file watching settings
type WatchConfig struct {
	Enabled    bool `json:"enabled"`
	DebounceMs int  `json:"debounceMs"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ProjectFile: "planboard.json",
		Actor:       defaultActor(),
		Timeline: TimelineConfig{
			DefaultZoom: "week",
			LabelWidth:  24,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeoutMs:  10000,
			WriteTimeoutMs: 30000,
		},
		Summary: SummaryConfig{
			Enabled:   true,
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 2048,
			TimeoutMs: 60000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 200,
		},
	}
}

func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "planboard"
}

// LoadConfig loads configuration for a working directory with priority:
// 1. Environment overrides
// 2. .planboard.json in dir (with version migration support)
// 3. Defaults
//
// A relative projectFile is resolved against dir.
func LoadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		parsed, err := ParseVersionedConfig(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
		}
		cfg = MergeWithDefaults(parsed)
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	applyEnv(cfg)

	if !filepath.IsAbs(cfg.ProjectFile) {
		cfg.ProjectFile = filepath.Join(dir, cfg.ProjectFile)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvProject); v != "" {
		cfg.ProjectFile = v
	}
	if v := os.Getenv(EnvActor); v != "" {
		cfg.Actor = v
	}
}

// SaveConfig saves configuration to the specified path with version information
func SaveConfig(cfg *Config, path string) error {
	data, err := MarshalVersionedConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeWithDefaults fills in missing values with defaults
func MergeWithDefaults(cfg *Config) *Config {
	defaults := DefaultConfig()

	if cfg.ProjectFile == "" {
		cfg.ProjectFile = defaults.ProjectFile
	}
	if cfg.Actor == "" {
		cfg.Actor = defaults.Actor
	}

	// Merge Timeline config
	if cfg.Timeline.DefaultZoom == "" {
		cfg.Timeline.DefaultZoom = defaults.Timeline.DefaultZoom
	}
	if cfg.Timeline.LabelWidth == 0 {
		cfg.Timeline.LabelWidth = defaults.Timeline.LabelWidth
	}

	// Merge Server config
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Server.ReadTimeoutMs == 0 {
		cfg.Server.ReadTimeoutMs = defaults.Server.ReadTimeoutMs
	}
	if cfg.Server.WriteTimeoutMs == 0 {
		cfg.Server.WriteTimeoutMs = defaults.Server.WriteTimeoutMs
	}

	// Merge Summary config
	if cfg.Summary.Model == "" {
		cfg.Summary.Model = defaults.Summary.Model
	}
	if cfg.Summary.MaxTokens == 0 {
		cfg.Summary.MaxTokens = defaults.Summary.MaxTokens
	}
	if cfg.Summary.TimeoutMs == 0 {
		cfg.Summary.TimeoutMs = defaults.Summary.TimeoutMs
	}

	// Merge Log config
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}

	// Merge Watch config
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = defaults.Watch.DebounceMs
	}

	return cfg
}

// Load is a convenience function that loads config from current directory
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return LoadConfig(cwd)
}
