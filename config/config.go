// Package config loads the service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"healthpredict/ml"
)

type Config struct {
	Http    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
	Models  ModelsConfig  `yaml:"models"`
	History HistoryConfig `yaml:"history"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	Timeout        time.Duration `yaml:"timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "console" or "json"
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ModelsConfig struct {
	Sleep     ArtifactConfig `yaml:"sleep"`
	Stress    ArtifactConfig `yaml:"stress"`
	CacheSize int            `yaml:"cache_size"`
	// Watch logs a warning when an artifact changes on disk. Artifacts are
	// never reloaded.
	Watch bool `yaml:"watch"`
}

type ArtifactConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
}

// HistoryConfig enables the SQLite prediction history when Path is set.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

func Default() Config {
	return Config{
		Http: HTTPConfig{
			Port:           8501,
			Timeout:        30 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Models: ModelsConfig{
			Sleep:     ArtifactConfig{Kind: ml.KindDecisionTree, Path: "dt1.json"},
			Stress:    ArtifactConfig{Kind: ml.KindDecisionTree, Path: "dt2.json"},
			CacheSize: 256,
		},
	}
}

// Load overlays the YAML file at path on Default. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	config := Default()
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &config, nil
		}
		return nil, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.Http.Port))
	}
	if c.Http.Timeout < 0 {
		errs = append(errs, errors.New("http.timeout must not be negative"))
	}
	if c.Models.Sleep.Path == "" || c.Models.Stress.Path == "" {
		errs = append(errs, errors.New("models.sleep.path and models.stress.path are required"))
	}
	if c.Models.CacheSize < 0 {
		errs = append(errs, errors.New("models.cache_size must not be negative"))
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		errs = append(errs, errors.New("log rotation limits must not be negative"))
	}
	return errors.Join(errs...)
}

func (m ModelsConfig) SleepSpec() ml.ArtifactSpec {
	return ml.ArtifactSpec{Kind: m.Sleep.Kind, Path: m.Sleep.Path}
}

func (m ModelsConfig) StressSpec() ml.ArtifactSpec {
	return ml.ArtifactSpec{Kind: m.Stress.Kind, Path: m.Stress.Path}
}
