package config

import "testing"

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	t.Setenv("ANALYZER_API_URL", "https://analysis.example.com/")
	t.Setenv("DEVAPI_SOURCE", "Yahoo")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "https://analysis.example.com" {
		t.Fatalf("unexpected api url %q", cfg.APIBaseURL)
	}
	if cfg.DevAPISource != SourceYahoo {
		t.Fatalf("expected source normalized to yahoo, got %q", cfg.DevAPISource)
	}
	if cfg.RequestTimeoutSeconds != 30 || cfg.ListenAddr != ":8080" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "no host", mutate: func(c *Config) { c.APIBaseURL = "http://" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeoutSeconds = 0 }, wantErr: true},
		{name: "unknown source", mutate: func(c *Config) { c.DevAPISource = "bloomberg" }, wantErr: true},
		{name: "longport without credentials", mutate: func(c *Config) { c.DevAPISource = SourceLongport }, wantErr: true},
		{name: "llm without key", mutate: func(c *Config) { c.LLMEnabled = true }, wantErr: true},
		{name: "llm with key", mutate: func(c *Config) {
			c.LLMEnabled = true
			c.LLMAPIKey = "sk-test"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
