package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost:5432/bpa")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.ImportChunkSize != 50 {
		t.Errorf("expected default chunk size 50, got %d", cfg.ImportChunkSize)
	}
	if !cfg.IsDev() {
		t.Error("expected default env to be development")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestLoadRejectsNonPositiveChunkSize(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost:5432/bpa")
	setEnv(t, "IMPORT_CHUNK_SIZE", "0")

	if _, err := Load(); err == nil {
		t.Error("expected error for IMPORT_CHUNK_SIZE=0")
	}
}

func TestLoadSplitsCORSOrigins(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost:5432/bpa")
	setEnv(t, "CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
}

func TestIsProduction(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost:5432/bpa")
	setEnv(t, "ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
	if cfg.IsDev() {
		t.Error("did not expect development mode")
	}
}
