package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOptionsFile reads a YAML options file on top of DefaultOptions.
// Keys absent from the file keep their default.
func LoadOptionsFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Options{}, fmt.Errorf("options file not found: %s", path)
		}
		return Options{}, fmt.Errorf("reading options file: %w", err)
	}
	o, err := ParseOptions(data)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// ParseOptions decodes YAML options on top of DefaultOptions, after
// environment variable expansion.
func ParseOptions(data []byte) (Options, error) {
	o := DefaultOptions()
	expanded := ExpandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &o); err != nil {
		return Options{}, fmt.Errorf("parsing options: %w", err)
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}
