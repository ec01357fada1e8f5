package planner

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(bytes.NewBufferString("period: 12\nverify: true\n"), "yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Period != 12 || !cfg.Verify {
		t.Fatalf("bad cfg %#v", cfg)
	}
	if len(cfg.Options()) != 1 {
		t.Fatalf("expected period option")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.json")
	if err := os.WriteFile(path, []byte(`{"period":4,"trace":true}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Period != 4 || !cfg.Trace || cfg.Verify {
		t.Fatalf("bad cfg %#v", cfg)
	}
	if _, err := LoadConfig(path + ".txt"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := DecodeConfig(bytes.NewBufferString("{}"), "toml"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := DecodeConfig(bytes.NewBufferString(":"), "yaml"); err == nil {
		t.Fatalf("expected yaml error")
	}
	if (Config{}).Options() != nil {
		t.Fatalf("zero config should not override the period")
	}
}
