package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Sampling SamplingConfig `yaml:"sampling"`
	Detector DetectorConfig `yaml:"detector"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains serial port configuration for the Bluetooth SPP link.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// SamplingConfig contains ADC conversion parameters.
type SamplingConfig struct {
	VRef float64 `yaml:"vref"` // ADC reference voltage (V)
}

// DetectorConfig contains beat detection and display window parameters.
type DetectorConfig struct {
	Threshold     float64       `yaml:"threshold"`      // Beat threshold above baseline (ADC counts)
	Refractory    time.Duration `yaml:"refractory"`     // Minimum time between beats
	WindowSeconds float64       `yaml:"window_seconds"` // Live display window
	SmoothSamples int           `yaml:"smooth_samples"` // Moving-average width for the displayed trace (0 = disabled)
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	NoiseLevel float64       `yaml:"noise_level"` // Peak noise added to the waveform (ADC counts)
	SampleRate time.Duration `yaml:"sample_rate"` // Interval between simulated samples
	Temp       int           `yaml:"temp"`        // Simulated skin temperature (degrees C)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM8", // Default for Windows, should be "/dev/rfcomm0" on Linux
			BaudRate: 115200,
		},
		Sampling: SamplingConfig{
			VRef: 3.3,
		},
		Detector: DetectorConfig{
			Threshold:     40,
			Refractory:    300 * time.Millisecond,
			WindowSeconds: 10,
			SmoothSamples: 0, // No smoothing by default
		},
		Mock: MockConfig{
			NoiseLevel: 4.0,
			SampleRate: 20 * time.Millisecond, // Matches the 50 Hz recording
			Temp:       36,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Sampling.VRef == 0 {
		c.Sampling.VRef = def.Sampling.VRef
	}

	if c.Detector.Threshold == 0 {
		c.Detector.Threshold = def.Detector.Threshold
	}
	if c.Detector.Refractory == 0 {
		c.Detector.Refractory = def.Detector.Refractory
	}
	if c.Detector.WindowSeconds == 0 {
		c.Detector.WindowSeconds = def.Detector.WindowSeconds
	}

	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.Temp == 0 {
		c.Mock.Temp = def.Mock.Temp
	}
}
