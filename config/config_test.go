package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.DataPath != "./data/listings.csv" {
		t.Errorf("DataPath = %q; want default", cfg.DataPath)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q; want :8080", cfg.ListenAddr)
	}
	if cfg.StorageBackend != "none" {
		t.Errorf("StorageBackend = %q; want none", cfg.StorageBackend)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d; want 3", cfg.MaxRetries)
	}
	if cfg.Theme.Background != "#0f172a" || cfg.Theme.GuestAccent != "#06b6d4" {
		t.Errorf("theme defaults wrong: %+v", cfg.Theme)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATA_PATH", "/srv/data/rentals.csv")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("MAX_RETRIES", "7")
	t.Setenv("DEBUG_LOG", "true")

	cfg := Load()
	if cfg.DataPath != "/srv/data/rentals.csv" {
		t.Errorf("DataPath = %q; want env value", cfg.DataPath)
	}
	if cfg.StorageBackend != "sqlite" {
		t.Errorf("StorageBackend = %q; want sqlite", cfg.StorageBackend)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d; want 7", cfg.MaxRetries)
	}
	if !cfg.DebugLog {
		t.Error("DebugLog not read from env")
	}
}

func TestLoadIgnoresBadNumbers(t *testing.T) {
	t.Setenv("MAX_RETRIES", "lots")
	t.Setenv("DEBUG_LOG", "maybe")

	cfg := Load()
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d; want fallback 3", cfg.MaxRetries)
	}
	if cfg.DebugLog {
		t.Error("DebugLog = true; want fallback false")
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost:     "db.internal",
		PostgresPort:     "5433",
		PostgresUser:     "svc",
		PostgresPassword: "secret",
		PostgresDB:       "rentals",
		PostgresSSLMode:  "require",
	}

	want := "host=db.internal port=5433 user=svc password=secret dbname=rentals sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q; want %q", got, want)
	}
}
