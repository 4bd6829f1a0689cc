//nolint:lll
package config

import "github.com/MeKo-Tech/docoutline/internal/outline"

// Config represents the complete configuration for the docoutline
// application. It includes settings for all commands (extract, batch, serve,
// watch) and supports loading from configuration files, environment
// variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
	// Password opens encrypted PDFs.
	Password string `mapstructure:"password" yaml:"password,omitempty" json:"-"`

	// Heuristic thresholds
	Outline outline.Options `mapstructure:"outline" yaml:"outline" json:"outline"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`

	// Watch mode configuration
	Watch WatchConfig `mapstructure:"watch" yaml:"watch" json:"watch"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// Rate limiting
	RateLimitEnabled  bool  `mapstructure:"rate_limit_enabled" yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int   `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int   `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxDataPerDay     int64 `mapstructure:"max_data_per_day" yaml:"max_data_per_day" json:"max_data_per_day"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	InputDir        string   `mapstructure:"input_dir" yaml:"input_dir" json:"input_dir"`
	OutputDir       string   `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	Workers         int      `mapstructure:"workers" yaml:"workers" json:"workers"`
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	IncludeLayouts  bool     `mapstructure:"include_layouts" yaml:"include_layouts" json:"include_layouts"`
	IncludePatterns []string `mapstructure:"include" yaml:"include" json:"include"`
	ExcludePatterns []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	SummaryFormat   string   `mapstructure:"summary_format" yaml:"summary_format" json:"summary_format"`
}

// WatchConfig contains watch mode settings.
type WatchConfig struct {
	DebounceMs      int  `mapstructure:"debounce_ms" yaml:"debounce_ms" json:"debounce_ms"`
	RetryAttempts   int  `mapstructure:"retry_attempts" yaml:"retry_attempts" json:"retry_attempts"`
	RetryDelayMs    int  `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms" json:"retry_delay_ms"`
	ProcessExisting bool `mapstructure:"process_existing" yaml:"process_existing" json:"process_existing"`
}
