// Package config provides configuration loading and management for blockmotion.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"blockmotion/pkg/pgm"
	"blockmotion/pkg/visualization"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Input images
	Images struct {
		// Reference is the image the reference block is read from
		Reference string `yaml:"reference"`

		// Target is the image searched for the reference block
		Target string `yaml:"target"`

		// ByteOrder selects how 2-byte samples are decoded: native, little or big
		ByteOrder string `yaml:"byteOrder"`
	} `yaml:"images"`

	// Output parameters
	Output struct {
		// Verbose enables the run summary and logging to stderr
		Verbose bool `yaml:"verbose"`

		// LogFile receives log output when set
		LogFile string `yaml:"logFile"`
	} `yaml:"output"`

	// Debug image dumps
	Dump struct {
		// Dir is the directory dumps are written to; empty disables dumping
		Dir string `yaml:"dir"`

		// Format is the dump image format: png, bmp, jpeg or pgm
		Format string `yaml:"format"`
	} `yaml:"dump"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Images.Reference = "./lenna1.pgm"
	cfg.Images.Target = "./lenna.pgm"
	cfg.Images.ByteOrder = "native"

	cfg.Output.Verbose = false

	cfg.Dump.Format = "png"

	return cfg
}

// Validate checks the values that cannot be checked by the YAML decoder
func (c *Config) Validate() error {
	if c.Images.Reference == "" {
		return fmt.Errorf("reference image path is empty")
	}
	if c.Images.Target == "" {
		return fmt.Errorf("target image path is empty")
	}
	if _, err := pgm.ParseByteOrder(c.Images.ByteOrder); err != nil {
		return err
	}
	if c.Dump.Dir != "" && !visualization.ValidFormat(c.Dump.Format) {
		return fmt.Errorf("unsupported dump format: %s", c.Dump.Format)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

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
