// Package config provides configuration loading and management for specklefilter.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"specklefilter/pkg/speckle"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Speckle holds the filter settings
	Speckle struct {
		// InputImage is the name the loaded image is registered under
		InputImage string `yaml:"inputImage"`

		// OutputImage is the name given to the filtered image
		OutputImage string `yaml:"outputImage"`

		// Method is "Enhance" or "Suppress"
		Method string `yaml:"method"`

		// EnhanceMethod is "Speckles", "Neurites" or "Dark holes"
		EnhanceMethod string `yaml:"enhanceMethod"`

		// ObjectSize is the diameter of the largest speckle or neurite in pixels
		ObjectSize int `yaml:"objectSize"`

		// HoleSize is the range of dark hole diameters to enhance
		HoleSize speckle.HoleSizeRange `yaml:"holeSize"`
	} `yaml:"speckle"`

	// Processing parameters
	Processing struct {
		// NumWorkers specifies how many images are filtered concurrently
		NumWorkers int `yaml:"numWorkers"`

		// MaskSuffix identifies mask files: "cells.png" pairs with "cells<suffix>.png"
		MaskSuffix string `yaml:"maskSuffix"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// SaveComparison writes a side-by-side original/filtered image per input
		SaveComparison bool `yaml:"saveComparison"`

		// LogLevel is one of debug, info, warn, error
		LogLevel string `yaml:"logLevel"`

		// Verbose switches to human readable console logs
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Speckle.InputImage = speckle.DefaultInputName
	cfg.Speckle.OutputImage = speckle.DefaultOutputName
	cfg.Speckle.Method = speckle.MethodEnhanceName
	cfg.Speckle.EnhanceMethod = speckle.SpecklesName
	cfg.Speckle.ObjectSize = speckle.DefaultObjectSize
	cfg.Speckle.HoleSize = speckle.HoleSizeRange{Min: speckle.DefaultHoleSizeMin, Max: speckle.DefaultHoleSizeMax}

	cfg.Processing.NumWorkers = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.MaskSuffix = "_mask"

	cfg.Output.SaveComparison = false
	cfg.Output.LogLevel = "info"
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
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

// Validate checks every setting. It is the parameter source's side of
// validation: names, sizes and worker counts are checked here so the
// filter only has to guard its own invariants.
func (c *Config) Validate() error {
	if _, err := c.SpeckleParams(); err != nil {
		return err
	}
	if c.Speckle.ObjectSize < 1 {
		return fmt.Errorf("speckle.objectSize must be at least 1, got %d", c.Speckle.ObjectSize)
	}
	if c.Speckle.HoleSize.Min < 1 {
		return fmt.Errorf("speckle.holeSize.min must be at least 1, got %d", c.Speckle.HoleSize.Min)
	}
	if err := c.Speckle.HoleSize.Validate(); err != nil {
		return fmt.Errorf("speckle.holeSize: %w", err)
	}
	if c.Speckle.InputImage == c.Speckle.OutputImage {
		return fmt.Errorf("speckle.outputImage must differ from speckle.inputImage (%q)", c.Speckle.InputImage)
	}
	if c.Processing.NumWorkers < 1 {
		return fmt.Errorf("processing.numWorkers must be at least 1, got %d", c.Processing.NumWorkers)
	}
	if _, err := zerolog.ParseLevel(c.Output.LogLevel); err != nil {
		return fmt.Errorf("output.logLevel: %w", err)
	}
	return nil
}

// SpeckleParams converts the speckle section to filter parameters
func (c *Config) SpeckleParams() (speckle.Params, error) {
	method, err := speckle.ParseMethod(c.Speckle.Method)
	if err != nil {
		return speckle.Params{}, err
	}
	// The enhancement kind is only read when enhancing, as in the settings UI.
	enhance := speckle.Speckles
	if method == speckle.Enhance {
		enhance, err = speckle.ParseEnhanceMethod(c.Speckle.EnhanceMethod)
		if err != nil {
			return speckle.Params{}, err
		}
	}
	return speckle.Params{
		Method:        method,
		EnhanceMethod: enhance,
		ObjectSize:    c.Speckle.ObjectSize,
		HoleSize:      c.Speckle.HoleSize,
	}, nil
}
