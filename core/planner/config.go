package planner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/plb/core/model"
)

// Config defines planning parameters loaded from configuration.
type Config struct {
	// Period overrides the segment length of every instance when positive.
	Period model.Time `json:"period" yaml:"period"`
	// Verify checks each produced schedule before it is reported.
	Verify bool `json:"verify" yaml:"verify"`
	// Trace keeps the per-round trace in exported schedules.
	Trace bool `json:"trace" yaml:"trace"`
}

// Options converts the configuration into planner options.
func (c Config) Options() []Option {
	var opts []Option
	if c.Period > 0 {
		opts = append(opts, WithPeriod(c.Period))
	}
	return opts
}

// LoadConfig loads Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeConfig(f, ext)
}

// DecodeConfig reads from r to decode a Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config format: %s", format)
	}
	return cfg, nil
}
