package config

import (
	"fmt"
	"os"

	"stock-screener/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills zero-valued sections so a minimal YAML file still
// yields a runnable configuration.
func (c *Config) applyDefaults() {
	if c.Analysis.MonthBars == 0 {
		c.Analysis = models.DefaultAnalysisConfig()
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.BackupKeep == 0 {
		c.Storage.BackupKeep = 5
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 20
	}
	if c.Network.MaxRetries == 0 {
		c.Network.MaxRetries = 3
	}
	if c.Network.ConcurrentRequests == 0 {
		c.Network.ConcurrentRequests = 4
	}
	if c.Ingest.LookbackDays == 0 {
		c.Ingest.LookbackDays = 500
	}
	if c.Schedule.IngestAt == "" {
		c.Schedule.IngestAt = "18:30"
	}
	if c.Schedule.ComputeAt == "" {
		c.Schedule.ComputeAt = "19:00"
	}
	if c.Schedule.BackupAt == "" {
		c.Schedule.BackupAt = "20:00"
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Port != 0 && (c.Port <= 1024 || c.Port > 65535) {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.WorkingDBPath == "" {
			return fmt.Errorf("working database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}

	// Validate Analysis configuration
	a := c.Analysis
	if len(a.EMASpans) == 0 || len(a.SMAWindows) == 0 {
		return fmt.Errorf("analysis windows cannot be empty")
	}
	for _, w := range append(append([]int{}, a.EMASpans...), a.SMAWindows...) {
		if w <= 0 {
			return fmt.Errorf("analysis window sizes must be positive")
		}
	}
	if a.WeekBars <= 0 || a.MonthBars <= 0 || a.QuarterBars <= 0 || a.HalfYearBars <= 0 {
		return fmt.Errorf("lookback offsets must be positive")
	}
	if a.ATRWindow <= 0 || a.RSIWindow <= 0 || a.RangeWindow <= 0 || a.VolumeAvgWindow <= 0 {
		return fmt.Errorf("atr/rsi/range/volume windows must be positive")
	}

	// Validate Ingest configuration
	for i, src := range c.Ingest.Sources {
		if src.Name == "" {
			return fmt.Errorf("source %d must have a name", i)
		}
		if len(src.Symbols) == 0 {
			return fmt.Errorf("source '%s' must have at least one symbol", src.Name)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
