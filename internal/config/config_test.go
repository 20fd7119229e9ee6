package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Storage.DatabasePath != "./data/memory.db" {
		t.Errorf("DatabasePath = %q", cfg.Storage.DatabasePath)
	}
	if cfg.Index.Backend != "memory" {
		t.Errorf("Index.Backend = %q, want memory", cfg.Index.Backend)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("LLM defaults wrong: %+v", cfg.LLM)
	}
	if !cfg.Features.AutoCategory {
		t.Error("AutoCategory should default to true")
	}
	if cfg.Features.PreviewWorkers != 0 {
		t.Errorf("PreviewWorkers = %d, want 0", cfg.Features.PreviewWorkers)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MEMORY_INDEX_BACKEND", "pgvector")
	t.Setenv("MEMORY_LLM_PROVIDER", "none")
	t.Setenv("MEMORY_LLM_TIMEOUT", "45s")
	t.Setenv("MEMORY_AUTO_CATEGORY", "false")
	t.Setenv("MEMORY_EMBEDDING_DIMENSION", "1536")

	cfg := Load()
	if cfg.Index.Backend != "pgvector" {
		t.Errorf("Index.Backend = %q", cfg.Index.Backend)
	}
	if cfg.LLM.Provider != "none" {
		t.Errorf("LLM.Provider = %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Timeout != 45*time.Second {
		t.Errorf("LLM.Timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Features.AutoCategory {
		t.Error("AutoCategory override not applied")
	}
	if cfg.Index.Dimension != 1536 {
		t.Errorf("Dimension = %d", cfg.Index.Dimension)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MEMORY_EMBEDDING_DIMENSION", "lots")
	t.Setenv("MEMORY_LLM_TIMEOUT", "soonish")

	cfg := Load()
	if cfg.Index.Dimension != 768 {
		t.Errorf("Dimension = %d, want default 768", cfg.Index.Dimension)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default 30s", cfg.LLM.Timeout)
	}
}
