package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vizdash/internal/controls"
)

const (
	DefaultAddr      = ":8050"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
	DefaultTheme     = "cyberpunk"
	DefaultExportDir = "exports"
)

type Config struct {
	Server     ServerConfig                         `yaml:"server"`
	Log        LogConfig                            `yaml:"log"`
	Theme      string                               `yaml:"theme"`
	ExportDir  string                               `yaml:"export_dir"`
	Datasets   map[string]string                    `yaml:"datasets,omitempty"`
	Dashboards []string                             `yaml:"dashboards,omitempty"`
	Presets    map[string]map[string]controls.State `yaml:"presets,omitempty"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Server:    ServerConfig{Addr: DefaultAddr},
		Log:       LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Theme:     DefaultTheme,
		ExportDir: DefaultExportDir,
	}
}

// Load overlays the YAML file at path on DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Source returns the configured source for a dataset, or "" for the
// built-in copy.
func (c *Config) Source(dataset string) string {
	return c.Datasets[dataset]
}

// Enabled reports whether a dashboard is served. An empty list enables all.
func (c *Config) Enabled(name string) bool {
	if len(c.Dashboards) == 0 {
		return true
	}
	for _, d := range c.Dashboards {
		if d == name {
			return true
		}
	}
	return false
}

// Preset looks a preset up in the file first, then in the built-ins.
func (c *Config) Preset(dashboard, name string) (controls.State, bool) {
	if st, ok := c.Presets[dashboard][name]; ok {
		return st, true
	}
	return GetPreset(dashboard, name)
}

// PresetNames lists built-in and file presets for a dashboard, sorted.
func (c *Config) PresetNames(dashboard string) []string {
	seen := make(map[string]bool)
	for _, n := range ListPresets(dashboard) {
		seen[n] = true
	}
	for n := range c.Presets[dashboard] {
		seen[n] = true
	}
	return sortedKeys(seen)
}
