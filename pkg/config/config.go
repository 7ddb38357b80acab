// Package config loads render settings and resampling options from YAML.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/df07/go-restir/pkg/renderer"
	"github.com/df07/go-restir/pkg/restir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the top level configuration file
type Config struct {
	Scene                string                     `yaml:"scene"`
	Environment          string                     `yaml:"environment"` // Optional equirectangular image replacing the scene's sky
	EnvironmentIntensity float64                    `yaml:"environmentIntensity"`
	Output               string                     `yaml:"output"` // .png or .tiff
	LogLevel             string                     `yaml:"logLevel"`
	Camera               renderer.CameraConfig      `yaml:"camera"` // Non-zero fields override the scene camera
	Render               renderer.ProgressiveConfig `yaml:"render"`
	ReSTIR               restir.Options             `yaml:"restir"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Scene:                "cornell",
		EnvironmentIntensity: 1,
		Output:               "output/render.png",
		LogLevel:             "notice",
		Render:               renderer.DefaultProgressiveConfig(),
		ReSTIR:               restir.DefaultOptions(),
	}
}

// Load reads a configuration file on top of the defaults
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults. Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decoding yaml")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that cannot be clamped
func (c Config) Validate() error {
	if c.Scene == "" {
		return errors.New("scene must be set")
	}
	if c.Render.Frames <= 0 {
		return errors.Errorf("render.frames must be positive, got %d", c.Render.Frames)
	}
	if c.EnvironmentIntensity < 0 {
		return errors.Errorf("environmentIntensity must not be negative, got %g", c.EnvironmentIntensity)
	}
	return nil
}

// Marshal encodes the configuration as YAML
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, errors.Wrap(err, "encoding yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding yaml")
	}
	return buf.Bytes(), nil
}
