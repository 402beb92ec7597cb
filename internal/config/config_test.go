package config

import "testing"

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without DATABASE_URL")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/carebridge")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("port = %q", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Errorf("env = %q, want development default", cfg.Env)
	}
	if cfg.NotifyExchange != "carebridge.events" {
		t.Errorf("exchange = %q", cfg.NotifyExchange)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateRequiresJWTSecretOutsideDev(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/carebridge")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate passed without JWT_SECRET in production")
	}

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateConnBounds(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/carebridge")
	t.Setenv("DB_MAX_CONNS", "2")
	t.Setenv("DB_MIN_CONNS", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate passed with max conns below min conns")
	}
}
