package config

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/MeKo-Tech/docoutline/internal/batch"
	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/MeKo-Tech/docoutline/internal/output"
	"github.com/MeKo-Tech/docoutline/internal/server"
	"github.com/MeKo-Tech/docoutline/internal/watch"
)

// Default container paths used by the batch command.
const (
	DefaultInputDir  = "/app/input"
	DefaultOutputDir = "/app/output"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Outline:  outline.DefaultOptions(),
		Output: OutputConfig{
			Format: string(output.FormatJSON),
		},
		Server: ServerConfig{
			Host:              "localhost",
			Port:              8080,
			CORSOrigin:        "*",
			MaxUploadMB:       50,
			TimeoutSec:        30,
			ShutdownTimeout:   10,
			RequestsPerMinute: 60,
			RequestsPerHour:   1000,
			MaxRequestsPerDay: 5000,
			MaxDataPerDay:     100 * 1024 * 1024,
		},
		Batch: BatchConfig{
			InputDir:      DefaultInputDir,
			OutputDir:     DefaultOutputDir,
			Workers:       runtime.NumCPU(),
			SummaryFormat: "text",
		},
		Watch: WatchConfig{
			DebounceMs:    int(watch.DefaultDebounce / time.Millisecond),
			RetryAttempts: watch.DefaultRetryAttempts,
			RetryDelayMs:  int(watch.DefaultRetryDelay / time.Millisecond),
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Output.Format != "" {
		if _, err := output.ParseFormat(c.Output.Format); err != nil {
			return err
		}
	}

	if err := c.Outline.Validate(); err != nil {
		return fmt.Errorf("invalid outline options: %w", err)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	validSummaryFormats := []string{"text", "json", "csv"}
	if c.Batch.SummaryFormat != "" && !slices.Contains(validSummaryFormats, c.Batch.SummaryFormat) {
		return fmt.Errorf("invalid summary format: %s (must be one of: %s)",
			c.Batch.SummaryFormat, strings.Join(validSummaryFormats, ", "))
	}

	if c.Watch.DebounceMs < 0 || c.Watch.RetryAttempts < 0 || c.Watch.RetryDelayMs < 0 {
		return fmt.Errorf("invalid watch settings: debounce %dms, attempts %d, delay %dms",
			c.Watch.DebounceMs, c.Watch.RetryAttempts, c.Watch.RetryDelayMs)
	}

	return nil
}

// ToBatchConfig converts the batch section to a batch.Config.
func (c *Config) ToBatchConfig() *batch.Config {
	return &batch.Config{
		OutputDir:       c.Batch.OutputDir,
		Options:         c.Outline,
		Password:        c.Password,
		Workers:         c.Batch.Workers,
		Recursive:       c.Batch.Recursive,
		IncludeLayouts:  c.Batch.IncludeLayouts,
		IncludePatterns: c.Batch.IncludePatterns,
		ExcludePatterns: c.Batch.ExcludePatterns,
		Format:          c.Batch.SummaryFormat,
		OutputFile:      c.Output.File,
	}
}

// ToWatchConfig converts the watch section to a watch.Config reading from
// the batch input directory and writing to the batch output directory.
func (c *Config) ToWatchConfig() watch.Config {
	return watch.Config{
		InputDir:        c.Batch.InputDir,
		OutputDir:       c.Batch.OutputDir,
		Options:         c.Outline,
		Debounce:        time.Duration(c.Watch.DebounceMs) * time.Millisecond,
		RetryAttempts:   uint(max(c.Watch.RetryAttempts, 0)), //nolint:gosec // clamped above
		RetryDelay:      time.Duration(c.Watch.RetryDelayMs) * time.Millisecond,
		ProcessExisting: c.Watch.ProcessExisting,
	}
}

// ToServerConfig converts the server section to a server.Config.
func (c *Config) ToServerConfig() server.Config {
	return server.Config{
		Host:        c.Server.Host,
		Port:        c.Server.Port,
		CORSOrigin:  c.Server.CORSOrigin,
		MaxUploadMB: int64(c.Server.MaxUploadMB),
		TimeoutSec:  c.Server.TimeoutSec,
		Options:     c.Outline,
		Password:    c.Password,
		RateLimit: server.RateLimitConfig{
			Enabled:           c.Server.RateLimitEnabled,
			RequestsPerMinute: c.Server.RequestsPerMinute,
			RequestsPerHour:   c.Server.RequestsPerHour,
			MaxRequestsPerDay: c.Server.MaxRequestsPerDay,
			MaxDataPerDay:     c.Server.MaxDataPerDay,
		},
	}
}
