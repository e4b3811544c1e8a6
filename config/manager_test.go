package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	path := filepath.Join(dir, "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	cfg := mgr.Get()
	cfg.APIBaseURL = "http://analysis.internal:9000/"
	cfg.RequestTimeoutSeconds = 5

	data, _ := json.Marshal(cfg)
	if err := mgr.UpdateFromJSON(string(data)); err != nil {
		t.Fatalf("UpdateFromJSON: %v", err)
	}

	updated := mgr.Get()
	if updated.APIBaseURL != "http://analysis.internal:9000" {
		t.Fatalf("expected trailing slash trimmed, got %s", updated.APIBaseURL)
	}
	if updated.RequestTimeoutSeconds != 5 {
		t.Fatalf("expected timeout 5, got %d", updated.RequestTimeoutSeconds)
	}
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := mgr.Get()
	cfg.APIBaseURL = "ftp://example.com"
	if err := mgr.Update(cfg); err == nil {
		t.Fatalf("expected validation error for non-http url")
	}
	if got := mgr.Get().APIBaseURL; got != DefaultConfig().APIBaseURL {
		t.Fatalf("config changed after rejected update: %s", got)
	}
}

func TestManagerNeverWritesSecrets(t *testing.T) {
	dir := t.TempDir()
	initial := DefaultConfig()
	initial.LLMAPIKey = "sk-secret"
	initial.LongportAccessToken = "lp-token"

	mgr, err := NewManager(WithConfigDir(dir), WithInitialConfig(initial))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	raw, err := os.ReadFile(mgr.Path())
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if strings.Contains(string(raw), "sk-secret") || strings.Contains(string(raw), "lp-token") {
		t.Fatalf("credentials leaked into %s:\n%s", mgr.Path(), raw)
	}
	if mgr.Get().LLMAPIKey != "sk-secret" {
		t.Fatalf("expected secret kept in memory")
	}
}

func TestManagerWatchReloads(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Config, 1)
	if err := mgr.Watch(ctx, func(cfg Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cfg := mgr.Get()
	cfg.APIBaseURL = "http://changed.example:5000"

	if err := writeConfigFile(mgr.Path(), cfg); err != nil {
		t.Fatalf("writeConfigFile: %v", err)
	}

	select {
	case got := <-reloaded:
		if got.APIBaseURL != cfg.APIBaseURL {
			t.Fatalf("expected %s, got %s", cfg.APIBaseURL, got.APIBaseURL)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not fire on config change")
	}
}
