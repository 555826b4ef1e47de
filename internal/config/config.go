package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultModel         = "claude-sonnet-4-5-20250929"
	DefaultTemperature   = 0.7
	DefaultMaxIterations = 15
	DefaultDBFile        = "sessions.db"
)

type Config struct {
	Agent    AgentConfig    `json:"agent"`
	Provider ProviderConfig `json:"provider"`
	Tools    ToolsConfig    `json:"tools"`
	Storage  StorageConfig  `json:"storage"`
}

type AgentConfig struct {
	Model         string  `json:"model"`
	Temperature   float64 `json:"temperature"`
	MaxIterations int     `json:"maxIterations"`
}

type ProviderConfig struct {
	Type    string `json:"type,omitempty"` // "anthropic" (default) or "openai"
	APIKey  string `json:"apiKey"`
	BaseURL string `json:"baseUrl,omitempty"`
}

type ToolsConfig struct {
	BraveAPIKey string `json:"braveApiKey,omitempty"`
}

type StorageConfig struct {
	DBPath string `json:"dbPath,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Model:         DefaultModel,
			Temperature:   DefaultTemperature,
			MaxIterations: DefaultMaxIterations,
		},
		Provider: ProviderConfig{},
		Storage: StorageConfig{
			DBPath: filepath.Join(ConfigDir(), DefaultDBFile),
		},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".lorewright")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if key := os.Getenv("LOREWRIGHT_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
		if cfg.Provider.Type == "" {
			cfg.Provider.Type = "openai"
		}
	}
	if url := os.Getenv("LOREWRIGHT_BASE_URL"); url != "" {
		cfg.Provider.BaseURL = url
	}
	if url := os.Getenv("ANTHROPIC_BASE_URL"); url != "" && cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = url
	}
	if key := os.Getenv("LOREWRIGHT_BRAVE_API_KEY"); key != "" {
		cfg.Tools.BraveAPIKey = key
	}
	if model := os.Getenv("LOREWRIGHT_MODEL"); model != "" {
		cfg.Agent.Model = model
	}
	if n := os.Getenv("LOREWRIGHT_MAX_ITERATIONS"); n != "" {
		if parsed, err := strconv.Atoi(n); err == nil && parsed > 0 {
			cfg.Agent.MaxIterations = parsed
		}
	}
	if dbPath := os.Getenv("LOREWRIGHT_DB_PATH"); dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}

	if cfg.Agent.Model == "" {
		cfg.Agent.Model = DefaultModel
	}
	if cfg.Agent.MaxIterations <= 0 {
		cfg.Agent.MaxIterations = DefaultMaxIterations
	}
	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = DefaultConfig().Storage.DBPath
	}

	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
