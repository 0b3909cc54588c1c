package config

import "fmt"

// Config represents the main chronicle configuration
type Config struct {
	// Catalog root directory holding session logs and metadata records
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Metrics endpoint
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// Insights refresh
	Refresh RefreshConfig `json:"refresh" mapstructure:"refresh"`

	// Export defaults
	Export ExportConfig `json:"export" mapstructure:"export"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// MetricsConfig holds the prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr" mapstructure:"addr"`
}

// RefreshConfig holds the insights refresh schedule
type RefreshConfig struct {
	Schedule string `json:"schedule" mapstructure:"schedule"`
}

// ExportConfig holds export defaults
type ExportConfig struct {
	Format string `json:"format" mapstructure:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    "127.0.0.1:9190",
		},
		Refresh: RefreshConfig{
			Schedule: "*/5 * * * *",
		},
		Export: ExportConfig{
			Format: "sqlite",
		},
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics address cannot be empty when metrics are enabled")
	}

	switch c.Export.Format {
	case "", "sqlite", "db", "jsonl":
	default:
		return fmt.Errorf("invalid export format: %s", c.Export.Format)
	}

	return nil
}
