package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.Agent.Model != DefaultModel {
		t.Errorf("model = %q, want %q", cfg.Agent.Model, DefaultModel)
	}
	if cfg.Agent.Temperature != DefaultTemperature {
		t.Errorf("temperature = %v, want %v", cfg.Agent.Temperature, DefaultTemperature)
	}
	if cfg.Agent.MaxIterations != DefaultMaxIterations {
		t.Errorf("maxIterations = %d, want %d", cfg.Agent.MaxIterations, DefaultMaxIterations)
	}
	if cfg.Storage.DBPath == "" {
		t.Error("dbPath should not be empty")
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOREWRIGHT_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Agent.Model != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, cfg.Agent.Model)
	}
	if cfg.Provider.APIKey != "" {
		t.Errorf("expected empty api key, got %q", cfg.Provider.APIKey)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("LOREWRIGHT_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LOREWRIGHT_MODEL", "")

	dir := filepath.Join(tmpDir, ".lorewright")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	raw := map[string]any{
		"agent": map[string]any{
			"model":         "gpt-4o",
			"temperature":   0.2,
			"maxIterations": 30,
		},
		"provider": map[string]any{
			"type":   "openai",
			"apiKey": "sk-test",
		},
	}
	data, _ := json.Marshal(raw)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Agent.Model != "gpt-4o" {
		t.Errorf("model = %q, want %q", cfg.Agent.Model, "gpt-4o")
	}
	if cfg.Agent.MaxIterations != 30 {
		t.Errorf("maxIterations = %d, want 30", cfg.Agent.MaxIterations)
	}
	if cfg.Provider.Type != "openai" {
		t.Errorf("provider type = %q, want %q", cfg.Provider.Type, "openai")
	}
	if cfg.Provider.APIKey != "sk-test" {
		t.Errorf("apiKey = %q, want %q", cfg.Provider.APIKey, "sk-test")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOREWRIGHT_API_KEY", "lw-key")
	t.Setenv("LOREWRIGHT_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("LOREWRIGHT_BRAVE_API_KEY", "brave-key")
	t.Setenv("LOREWRIGHT_MODEL", "claude-opus-4")
	t.Setenv("LOREWRIGHT_MAX_ITERATIONS", "7")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Provider.APIKey != "lw-key" {
		t.Errorf("apiKey = %q, want %q", cfg.Provider.APIKey, "lw-key")
	}
	if cfg.Provider.BaseURL != "http://localhost:8080/v1" {
		t.Errorf("baseUrl = %q", cfg.Provider.BaseURL)
	}
	if cfg.Tools.BraveAPIKey != "brave-key" {
		t.Errorf("braveApiKey = %q, want %q", cfg.Tools.BraveAPIKey, "brave-key")
	}
	if cfg.Agent.Model != "claude-opus-4" {
		t.Errorf("model = %q, want %q", cfg.Agent.Model, "claude-opus-4")
	}
	if cfg.Agent.MaxIterations != 7 {
		t.Errorf("maxIterations = %d, want 7", cfg.Agent.MaxIterations)
	}
}

func TestLoadConfig_OpenAIKeySetsProviderType(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOREWRIGHT_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Provider.Type != "openai" {
		t.Errorf("provider type = %q, want %q", cfg.Provider.Type, "openai")
	}
	if cfg.Provider.APIKey != "sk-openai" {
		t.Errorf("apiKey = %q, want %q", cfg.Provider.APIKey, "sk-openai")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Provider.APIKey = "saved-key"
	cfg.Agent.MaxIterations = 5
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig error: %v", err)
	}

	t.Setenv("LOREWRIGHT_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LOREWRIGHT_MAX_ITERATIONS", "")

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if loaded.Provider.APIKey != "saved-key" {
		t.Errorf("apiKey = %q, want %q", loaded.Provider.APIKey, "saved-key")
	}
	if loaded.Agent.MaxIterations != 5 {
		t.Errorf("maxIterations = %d, want 5", loaded.Agent.MaxIterations)
	}
}
