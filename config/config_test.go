package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `planner:
  period: 4
  verify: true
runlog:
  backend: "sqlite"
  path: "runs.db"
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "nop"
    - type: "mqtt"
      conf:
        broker: "tcp://localhost:1883"
        topic: "lab/plb"
generator:
  n: 50
  d_ratio: 2
  seed: 7
  count: 10
logging:
  level: "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"planner.period", cfg.Planner.Period, int64(4)},
		{"planner.verify", cfg.Planner.Verify, true},
		{"runlog.backend", cfg.RunLog.Backend, "sqlite"},
		{"runlog.path", cfg.RunLog.Path, "runs.db"},
		{"metrics.prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"metrics.sinks", len(cfg.Metrics.Sinks), 2},
		{"metrics.sinks[1].type", cfg.Metrics.Sinks[1].Type, "mqtt"},
		{"metrics.sinks[1].conf.topic", cfg.Metrics.Sinks[1].Conf["topic"], "lab/plb"},
		{"generator.n", cfg.Generator.N, 50},
		{"generator.d_ratio", cfg.Generator.DRatio, 2.0},
		{"generator.seed", cfg.Generator.Seed, uint64(7)},
		{"generator.count", cfg.Generator.Count, 10},
		{"generator.p_max default", cfg.Generator.PMax, int64(100)},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"logging.format default", cfg.Logging.Format, "json"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"runlog":{"backend":"jsonl"}}`), 0o644))
	t.Setenv("K_RUNLOG__BACKEND", "text")
	t.Setenv("K_PLANNER__PERIOD", "9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.RunLog.Backend)
	assert.Equal(t, "runs.log", cfg.RunLog.Path)
	assert.Equal(t, int64(9), cfg.Planner.Period)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad.toml":     "",
		"backend.yaml": "runlog:\n  backend: redis\n",
		"level.yaml":   "logging:\n  level: loud\n",
		"ratio.yaml":   "generator:\n  d_ratio: -1\n",
		"period.yaml":  "planner:\n  period: -2\n",
	}
	for name, data := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
		_, err := Load(path)
		assert.Error(t, err, name)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "none", cfg.RunLog.Backend)
	assert.Equal(t, 1, cfg.Generator.Count)
	assert.Equal(t, 1.5, cfg.Generator.DRatio)
}
