package config

import (
	"github.com/jvanloock/dupdirs/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Exclude     []string          `yaml:"exclude"`
}

// AnalysisConfig holds result filtering and cache settings
type AnalysisConfig struct {
	MinSimilarityPercent float64 `yaml:"min_similarity_percent"`
	MinSizeBytes         int64   `yaml:"min_size_bytes"`

	// CacheFile is the snapshot path for incremental runs;
	// empty disables persistence
	CacheFile string `yaml:"cache_file"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	// MaxWorkers bounds scan and hash parallelism; 0 means automatic
	MaxWorkers     int   `yaml:"max_workers"`
	BufferSize     int   `yaml:"buffer_size"`
	BandwidthLimit int64 `yaml:"bandwidth_limit"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bars
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = disabled)
}

// Default returns the default configuration
func Default() *Config {
	criteria := models.DefaultFilterCriteria()
	return &Config{
		Analysis: AnalysisConfig{
			MinSimilarityPercent: criteria.MinSimilarityPercent,
			MinSizeBytes:         criteria.MinSizeBytes,
			CacheFile:            "",
		},
		Performance: PerformanceConfig{
			MaxWorkers:     0,
			BufferSize:     65536,
			BandwidthLimit: 0,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Format:  "json",
			Level:   "info",
			File:    "",
		},
		Exclude: []string{
			"*.tmp",
			".git/",
			"node_modules/",
		},
	}
}

// Criteria converts the analysis settings into filter criteria.
func (c *Config) Criteria() models.FilterCriteria {
	return models.FilterCriteria{
		MinSimilarityPercent: c.Analysis.MinSimilarityPercent,
		MinSizeBytes:         c.Analysis.MinSizeBytes,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Analysis.MinSimilarityPercent < 0 || c.Analysis.MinSimilarityPercent > 100 {
		return &models.ValidationError{
			Field:   "analysis.min_similarity_percent",
			Message: "must be between 0 and 100",
		}
	}

	if c.Analysis.MinSizeBytes < 0 {
		return &models.ValidationError{
			Field:   "analysis.min_size_bytes",
			Message: "must not be negative",
		}
	}

	if c.Performance.MaxWorkers < 0 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be 0 (automatic) or positive",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
