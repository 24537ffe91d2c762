package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Config holds application configuration.
type Config struct {
	// GeminiModel is the model used for intent extraction.
	GeminiModel string `json:"gemini_model"`

	// AITimeoutSeconds bounds a single model call. The generator reports
	// AI_UNAVAILABLE instead of hanging past this.
	AITimeoutSeconds int `json:"ai_timeout_seconds"`

	// TaskExpiryDays is how long a pending task stays actionable before
	// the archive sweep picks it up.
	TaskExpiryDays int `json:"task_expiry_days"`

	// BusinessContext is a short description of the owner's business,
	// included in the generation prompt so messages read naturally.
	BusinessContext string `json:"business_context"`

	// Bind and Port configure the HTTP API server.
	Bind string `json:"bind,omitempty"`
	Port int    `json:"port,omitempty"`

	// CandidateLimit caps the number of contact candidates surfaced
	// during disambiguation.
	CandidateLimit int `json:"candidate_limit,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized.
	// 0 means use sql.DB default. Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		GeminiModel:      "gemini-2.5-flash",
		AITimeoutSeconds: 30,
		TaskExpiryDays:   7,
		Bind:             "127.0.0.1",
		Port:             8470,
		CandidateLimit:   3,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tradehand.
func Load(baseDir string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults fills zero values left by a sparse config file.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = def.GeminiModel
	}
	if cfg.AITimeoutSeconds <= 0 {
		cfg.AITimeoutSeconds = def.AITimeoutSeconds
	}
	if cfg.TaskExpiryDays <= 0 {
		cfg.TaskExpiryDays = def.TaskExpiryDays
	}
	if cfg.Bind == "" {
		cfg.Bind = def.Bind
	}
	if cfg.Port <= 0 {
		cfg.Port = def.Port
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = def.CandidateLimit
	}
}

// AITimeout returns the model-call timeout as a duration.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}

// TaskExpiry returns the task expiry window as a duration.
func (c *Config) TaskExpiry() time.Duration {
	return time.Duration(c.TaskExpiryDays) * 24 * time.Hour
}

// GeminiAPIKey reads the model API key from the environment. Secrets stay
// out of the config file.
func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}
