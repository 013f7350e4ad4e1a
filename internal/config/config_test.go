package config

import "testing"

func TestLoadAppliesDefaultsWhenUnset(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("API_AUTH_TOKEN", "")
	t.Setenv("RATE_LIMIT_PER_MIN", "")

	cfg := Load()
	if cfg.Port != "5339" {
		t.Fatalf("Port = %q, want default 5339", cfg.Port)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty (no persistence configured)", cfg.DatabaseURL)
	}
	if cfg.RateLimitPerMin != 30 {
		t.Fatalf("RateLimitPerMin = %d, want default 30", cfg.RateLimitPerMin)
	}
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("API_AUTH_TOKEN", "secret")
	t.Setenv("DESIRED_CONTENDERS", "250")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Fatalf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.AuthToken != "secret" {
		t.Fatalf("AuthToken = %q, want secret", cfg.AuthToken)
	}
	if cfg.DesiredContenders != 250 {
		t.Fatalf("DesiredContenders = %d, want 250", cfg.DesiredContenders)
	}
}

func TestLoadFallsBackOnUnparseableInt(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg := Load()
	if cfg.RateLimitBurst != 5 {
		t.Fatalf("RateLimitBurst = %d, want fallback default 5", cfg.RateLimitBurst)
	}
}
