// Package config provides configuration loading and management for bgbootstrap.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Distributions understood by the stack section
const (
	DistPoisson = "poisson"
	DistNormal  = "normal"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Synthetic background stack parameters
	Stack struct {
		// Depth, Height and Width give the (D, Y, X) shape of the stack
		Depth  int `yaml:"depth"`
		Height int `yaml:"height"`
		Width  int `yaml:"width"`

		// Distribution is either "poisson" or "normal"
		Distribution string `yaml:"distribution"`

		// Lambda is the Poisson rate
		Lambda float64 `yaml:"lambda"`

		// Mean and StdDev parameterize the normal distribution
		Mean   float64 `yaml:"mean"`
		StdDev float64 `yaml:"stdDev"`

		// Seed for the generator, 0 picks one from the clock
		Seed uint64 `yaml:"seed"`
	} `yaml:"stack"`

	// Bootstrap parameters
	Bootstrap struct {
		// Division is the number of regions per spatial axis
		Division int `yaml:"division"`

		// Samples is the number of draws per region
		Samples int `yaml:"samples"`

		// Threshold is the percentile computed per region
		Threshold float64 `yaml:"threshold"`

		// Seed for sampling, 0 picks one from the clock
		Seed uint64 `yaml:"seed"`
	} `yaml:"bootstrap"`

	// Whole-stack analysis parameters
	Analysis struct {
		// Threshold is the percentile computed over the whole stack
		Threshold float64 `yaml:"threshold"`

		// Alpha is the Shapiro-Wilk significance level
		Alpha float64 `yaml:"alpha"`

		// MaxNormalitySamples caps the values handed to the normality
		// tests; 0 means no cap
		MaxNormalitySamples int `yaml:"maxNormalitySamples"`
	} `yaml:"analysis"`

	// Output parameters
	Output struct {
		// MapImage is the path of the rendered threshold map, empty to skip
		MapImage string `yaml:"mapImage"`

		// CellSize is the edge length in pixels of one grid cell in the image
		CellSize int `yaml:"cellSize"`

		// Verbose prints the normality test verdicts
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default stack parameters
	cfg.Stack.Depth = 10
	cfg.Stack.Height = 400
	cfg.Stack.Width = 600
	cfg.Stack.Distribution = DistPoisson
	cfg.Stack.Lambda = 2.0
	cfg.Stack.Mean = 0.0
	cfg.Stack.StdDev = 1.0

	// Set default bootstrap parameters
	cfg.Bootstrap.Division = 1
	cfg.Bootstrap.Samples = 10000
	cfg.Bootstrap.Threshold = 95.0

	// Set default analysis parameters
	cfg.Analysis.Threshold = 95.0
	cfg.Analysis.Alpha = 0.05
	cfg.Analysis.MaxNormalitySamples = 5000

	// Set default output parameters
	cfg.Output.CellSize = 32
	cfg.Output.Verbose = true

	return cfg
}

// Validate checks the configuration for values the tool cannot run with
func (c *Config) Validate() error {
	if c.Stack.Depth <= 0 || c.Stack.Height <= 0 || c.Stack.Width <= 0 {
		return fmt.Errorf("stack shape must be positive, got (%d, %d, %d)",
			c.Stack.Depth, c.Stack.Height, c.Stack.Width)
	}
	switch c.Stack.Distribution {
	case DistPoisson:
		if c.Stack.Lambda <= 0 {
			return fmt.Errorf("poisson lambda must be positive, got %g", c.Stack.Lambda)
		}
	case DistNormal:
		if c.Stack.StdDev <= 0 {
			return fmt.Errorf("normal stdDev must be positive, got %g", c.Stack.StdDev)
		}
	default:
		return fmt.Errorf("unknown distribution %q", c.Stack.Distribution)
	}
	if c.Output.CellSize <= 0 {
		return fmt.Errorf("cellSize must be positive, got %d", c.Output.CellSize)
	}
	return nil
}

// LoadConfig loads and validates configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
