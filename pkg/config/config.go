// Package config loads ifconnectctl's persistent settings from a YAML file,
// separately from the per-invocation flag overrides cmd/ifconnectctl layers
// on top of it.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds every ifconnectctl setting that can be persisted to disk.
type Config struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	KeepAlive       bool   `yaml:"keep_alive"`
	Reconnect       bool   `yaml:"reconnect"`
	Timeout         string `yaml:"timeout"`
	ManifestTimeout string `yaml:"manifest_timeout"`
	PollThrottle    string `yaml:"poll_throttle"`
	OutputFormat    string `yaml:"output_format"`
	LogLevel        string `yaml:"log_level"`
}

// DefaultPath returns ~/.ifconnect/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".ifconnect", "config.yaml")
	}
	return filepath.Join(home, ".ifconnect", "config.yaml")
}

// Load reads the configuration from path. A missing file is not an error —
// it returns the defaults below.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:         10112,
		Reconnect:    true,
		OutputFormat: "table",
		LogLevel:     "info",
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		fmt.Fprintf(os.Stderr,
			"warning: config file %s has permissions %04o — expected 0600\n", path, perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
