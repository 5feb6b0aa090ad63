package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ENCDASH_CONFIG_PATH", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Assistant.APIStyle != "generic" {
		t.Fatalf("unexpected api_style: %q", cfg.Assistant.APIStyle)
	}
	if cfg.Rollout.StepDelayMS != 900 {
		t.Fatalf("unexpected step delay: %d", cfg.Rollout.StepDelayMS)
	}
	if len(cfg.Rollout.Snapshots) != 7 {
		t.Fatalf("expected 7 default snapshots, got %d", len(cfg.Rollout.Snapshots))
	}
}

func TestLoadMergesFileAndStripsComments(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
  // 本地联调端点 / local endpoint
  "assistant": {"endpoint": "http://localhost:9999/chat", "timeout_ms": 5000},
  "diagnostics": {"base_url": "http://localhost:9999///"},
  "rollout": {"step_delay_ms": 250, "snapshots": [{"day": 1, "encrypted": 3, "pending": 2, "failed": 1}]}
}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ENCDASH_CONFIG_PATH", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Assistant.Endpoint != "http://localhost:9999/chat" {
		t.Fatalf("endpoint not merged: %q", cfg.Assistant.Endpoint)
	}
	if cfg.Assistant.TimeoutMS != 5000 {
		t.Fatalf("timeout not merged: %d", cfg.Assistant.TimeoutMS)
	}
	if cfg.Diagnostics.BaseURL != "http://localhost:9999" {
		t.Fatalf("base_url not normalized: %q", cfg.Diagnostics.BaseURL)
	}
	if len(cfg.Rollout.Snapshots) != 1 || cfg.Rollout.Snapshots[0].Encrypted != 3 {
		t.Fatalf("snapshots not replaced: %#v", cfg.Rollout.Snapshots)
	}
	// 未覆盖的字段保留默认 / untouched fields keep defaults
	if cfg.Diagnostics.SweepForwardMS != 1200 {
		t.Fatalf("sweep forward default lost: %d", cfg.Diagnostics.SweepForwardMS)
	}
}

func TestLoadRejectsUnknownAPIStyle(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"assistant": {"api_style": "soap"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ENCDASH_CONFIG_PATH", path)

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unknown api_style")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ENCDASH_CONFIG_PATH", "")
	t.Setenv("ENCDASH_ENDPOINT", "http://10.0.0.1/api/chat")
	t.Setenv("ENCDASH_DIAG_BASE_URL", "http://10.0.0.1/")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Assistant.Endpoint != "http://10.0.0.1/api/chat" {
		t.Fatalf("env endpoint not applied: %q", cfg.Assistant.Endpoint)
	}
	if cfg.Diagnostics.BaseURL != "http://10.0.0.1" {
		t.Fatalf("env base_url not normalized: %q", cfg.Diagnostics.BaseURL)
	}
}

func TestStripJSONComments(t *testing.T) {
	in := []byte("{\n  \"a\": \"http://x//y\", // trailing\n  /* block */ \"b\": 1\n}")
	out := stripJSONComments(in)
	want := "{\n  \"a\": \"http://x//y\", \n   \"b\": 1\n}"
	if string(out) != want {
		t.Fatalf("unexpected strip result: %q", string(out))
	}
}
