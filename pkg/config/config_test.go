package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "COM8", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, float64(3.3), cfg.Sampling.VRef)
	assert.Equal(t, float64(40), cfg.Detector.Threshold)
	assert.Equal(t, 300*time.Millisecond, cfg.Detector.Refractory)
	assert.Equal(t, float64(10), cfg.Detector.WindowSeconds)
	assert.Equal(t, 0, cfg.Detector.SmoothSamples)
	assert.Equal(t, 20*time.Millisecond, cfg.Mock.SampleRate)
	assert.Equal(t, 36, cfg.Mock.Temp)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "COM8", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/rfcomm0"
  baud_rate: 57600

sampling:
  vref: 5.0

detector:
  threshold: 25
  refractory: 250ms
  window_seconds: 5
  smooth_samples: 3

mock:
  noise_level: 2.5
  sample_rate: 10ms
  temp: 34
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/rfcomm0", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, float64(5.0), cfg.Sampling.VRef)
	assert.Equal(t, float64(25), cfg.Detector.Threshold)
	assert.Equal(t, 250*time.Millisecond, cfg.Detector.Refractory)
	assert.Equal(t, float64(5), cfg.Detector.WindowSeconds)
	assert.Equal(t, 3, cfg.Detector.SmoothSamples)
	assert.Equal(t, float64(2.5), cfg.Mock.NoiseLevel)
	assert.Equal(t, 10*time.Millisecond, cfg.Mock.SampleRate)
	assert.Equal(t, 34, cfg.Mock.Temp)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/rfcomm0"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/rfcomm0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)            // default
	assert.Equal(t, float64(40), cfg.Detector.Threshold)    // default
	assert.Equal(t, 20*time.Millisecond, cfg.Mock.SampleRate) // default
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Detector.WindowSeconds = 15

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, float64(15), loaded.Detector.WindowSeconds)
}
