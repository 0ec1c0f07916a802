package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing config, got %v", err)
	}
	if cfg.Tournament.Repetitions != nil || cfg.SizeClasses != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[tournament]
repetitions = 5
shapes = ["random", "sorted"]
timeout = "2s"
sleep-unit = "50us"
store = false

[size-classes]
bogo_sort = 6
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	tc := cfg.Tournament
	if tc.Repetitions == nil || *tc.Repetitions != 5 {
		t.Fatalf("unexpected repetitions: %v", tc.Repetitions)
	}
	if tc.Shapes == nil || len(*tc.Shapes) != 2 {
		t.Fatalf("unexpected shapes: %v", tc.Shapes)
	}
	if tc.Timeout == nil || tc.Timeout.Duration != 2*time.Second {
		t.Fatalf("unexpected timeout: %v", tc.Timeout)
	}
	if tc.SleepUnit == nil || tc.SleepUnit.Duration != 50*time.Microsecond {
		t.Fatalf("unexpected sleep unit: %v", tc.SleepUnit)
	}
	if tc.Store == nil || *tc.Store {
		t.Fatalf("expected store = false")
	}
	if tc.Seed != nil || tc.Out != nil {
		t.Fatalf("expected unset keys to stay nil")
	}
	if cfg.SizeClasses["bogo_sort"] != 6 {
		t.Fatalf("unexpected size classes: %v", cfg.SizeClasses)
	}
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown.toml":  "[tournament]\nrounds = 3\n",
		"duration.toml": "[tournament]\ntimeout = \"soon\"\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "sortbench", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "sortbench", "sortbench.db") {
		t.Fatalf("unexpected db path %q", got)
	}
}
