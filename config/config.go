package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/plb/core/generator"
	"github.com/kilianp07/plb/core/metrics"
	"github.com/kilianp07/plb/core/planner"
	"github.com/kilianp07/plb/core/runlog"
)

// GeneratorConfig configures the instance generator of the generate command.
type GeneratorConfig struct {
	generator.Params `json:",squash" yaml:",inline"`
	// Count is the number of instances written per run.
	Count int `json:"count" yaml:"count"`
}

// SetDefaults applies the experiment campaign settings to zero fields.
func (c *GeneratorConfig) SetDefaults() {
	def := generator.DefaultParams(c.N)
	if c.PMin == 0 && c.PMax == 0 {
		c.PMin, c.PMax = def.PMin, def.PMax
	}
	if c.DRatio == 0 {
		c.DRatio = def.DRatio
	}
	if c.Count <= 0 {
		c.Count = 1
	}
}

type Config struct {
	Planner   planner.Config  `json:"planner"`
	RunLog    runlog.Config   `json:"runlog"`
	Metrics   metrics.Config  `json:"metrics"`
	Generator GeneratorConfig `json:"generator"`
	Logging   LoggingConfig   `json:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	c.RunLog.SetDefaults()
	c.Generator.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Planner.Period < 0 {
		return fmt.Errorf("planner period must not be negative")
	}
	if err := c.RunLog.Validate(); err != nil {
		return err
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	return c.Logging.Validate()
}

// Load reads a YAML or JSON file and applies K_ prefixed environment
// overrides, where "__" separates nested keys (K_RUNLOG__BACKEND=sqlite).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
