// Package config reads the .jv.yaml file that supplies default flag
// values to jv.
package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// FileName is looked up in the working directory unless --config is given.
const FileName = ".jv.yaml"

var (
	Drafts  = []string{"4", "6", "7", "2020"}
	Outputs = []string{"flag", "verbose", "json"}
)

type Config struct {
	Draft         string `yaml:"draft"`
	Output        string `yaml:"output"`
	FailFast      bool   `yaml:"failFast"`
	AssertFormat  bool   `yaml:"assertFormat"`
	AssertContent bool   `yaml:"assertContent"`
	Insecure      bool   `yaml:"insecure"`
}

// Default is the configuration used without a config file.
func Default() *Config {
	return &Config{Draft: "2020", Output: "flag"}
}

// Load reads the config file at path. A missing file yields Default,
// unless required is set. Fields absent from the file keep their default.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, &MissingConfigError{Path: path, Err: err}
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, &InvalidYAMLError{Path: path, Wrapped: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !slices.Contains(Drafts, c.Draft) {
		return &InvalidValueError{Property: "draft", Value: c.Draft, Allowed: Drafts}
	}
	if !slices.Contains(Outputs, c.Output) {
		return &InvalidValueError{Property: "output", Value: c.Output, Allowed: Outputs}
	}
	return nil
}
