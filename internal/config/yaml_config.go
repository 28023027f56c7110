package config

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// View names for the tally display.
const (
	ViewList      = "list"
	ViewHistogram = "histogram"
)

// DefaultSampleName is the built-in sample dataset, always available.
const DefaultSampleName = "groceries"

const defaultSample = `Milk
Bread
Eggs
Apples
Milk
Bananas
Coffee
Bread
Milk
Cheese
Apples
Tomatoes
Eggs
Pasta
Milk
Coffee
Yogurt
Bread
Apples
Rice`

// YAMLConfig represents the structure of the config.yaml file.
// Sample datasets are multi-line and easier to keep in YAML than env vars.
type YAMLConfig struct {
	Samples map[string]string `yaml:"samples"`
	Display DisplayConfig     `yaml:"display"`
}

// DisplayConfig defines presentation defaults.
type DisplayConfig struct {
	DefaultView  string `yaml:"default_view"`   // list or histogram
	ChartMaxBars int    `yaml:"chart_max_bars"` // Histogram bars shown before truncation
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// A missing file yields the defaults.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	var cfg YAMLConfig
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// DefaultYAMLConfig returns the configuration used when no file is present.
func DefaultYAMLConfig() *YAMLConfig {
	cfg := &YAMLConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *YAMLConfig) applyDefaults() {
	if c.Samples == nil {
		c.Samples = make(map[string]string)
	}
	if _, ok := c.Samples[DefaultSampleName]; !ok {
		c.Samples[DefaultSampleName] = defaultSample
	}
	if c.Display.DefaultView != ViewHistogram {
		c.Display.DefaultView = ViewList
	}
	if c.Display.ChartMaxBars <= 0 {
		c.Display.ChartMaxBars = 25
	}
}

// GetSample returns the named sample dataset.
func (c *YAMLConfig) GetSample(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	if name == "" {
		name = DefaultSampleName
	}
	text, ok := c.Samples[name]
	return text, ok
}

// SampleNames returns the available sample dataset names in order.
func (c *YAMLConfig) SampleNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Samples))
	for name := range c.Samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
