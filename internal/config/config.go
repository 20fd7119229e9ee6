// Package config provides configuration for the memory assistant. Settings
// load from environment variables with the MEMORY_ prefix, with sensible
// defaults for fully offline operation.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration settings.
type Config struct {
	Storage  StorageConfig
	Index    IndexConfig
	LLM      LLMConfig
	Features FeaturesConfig
}

// StorageConfig contains the relational storage configuration.
type StorageConfig struct {
	DatabasePath string // SQLite database path (default: ./data/memory.db)
	ArtifactPath string // Directory for stored files and previews (default: ./data/artifacts)
}

// IndexConfig contains the vector index configuration.
type IndexConfig struct {
	Backend     string // Vector backend: memory, pgvector (default: memory)
	PostgresDSN string // Postgres DSN for the pgvector backend
	Dimension   int    // Embedding dimension for the pgvector column (default: 768)
}

// LLMConfig contains the generative model configuration.
type LLMConfig struct {
	Provider          string        // Provider: ollama, openai, none (default: ollama)
	BaseURL           string        // Provider API URL (default: http://localhost:11434)
	APIKey            string        // API key for hosted providers
	Model             string        // Text generation model (default: phi3:mini)
	EmbeddingModel    string        // Embedding model (default: nomic-embed-text)
	Timeout           time.Duration // Per-request timeout (default: 30s)
	RequestsPerMinute int           // Rate limit across all calls (default: 60)
}

// FeaturesConfig contains feature flags.
type FeaturesConfig struct {
	AutoCategory   bool // Resolve a category automatically on ingest (default: true)
	PreviewWorkers int  // Preview generation workers; 0 disables previews (default: 0)
}

// Load builds a Config from environment variables and defaults.
func Load() *Config {
	return &Config{
		Storage: StorageConfig{
			DatabasePath: getEnv("MEMORY_DATABASE_PATH", "./data/memory.db"),
			ArtifactPath: getEnv("MEMORY_ARTIFACT_PATH", "./data/artifacts"),
		},
		Index: IndexConfig{
			Backend:     getEnv("MEMORY_INDEX_BACKEND", "memory"),
			PostgresDSN: getEnv("MEMORY_POSTGRES_DSN", ""),
			Dimension:   getEnvInt("MEMORY_EMBEDDING_DIMENSION", 768),
		},
		LLM: LLMConfig{
			Provider:          getEnv("MEMORY_LLM_PROVIDER", "ollama"),
			BaseURL:           getEnv("MEMORY_LLM_URL", "http://localhost:11434"),
			APIKey:            getEnv("MEMORY_LLM_API_KEY", ""),
			Model:             getEnv("MEMORY_LLM_MODEL", "phi3:mini"),
			EmbeddingModel:    getEnv("MEMORY_EMBEDDING_MODEL", "nomic-embed-text"),
			Timeout:           getEnvDuration("MEMORY_LLM_TIMEOUT", 30*time.Second),
			RequestsPerMinute: getEnvInt("MEMORY_LLM_REQUESTS_PER_MINUTE", 60),
		},
		Features: FeaturesConfig{
			AutoCategory:   getEnvBool("MEMORY_AUTO_CATEGORY", true),
			PreviewWorkers: getEnvInt("MEMORY_PREVIEW_WORKERS", 0),
		},
	}
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default
// value. Recognizes true/false, 1/0, and yes/no in any case.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable (e.g. "45s") or
// returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
