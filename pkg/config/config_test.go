package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "dev")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected :9090 from PORT, got %q", cfg.HTTPAddr)
	}
	if cfg.JWT.TTL != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %s", cfg.JWT.TTL)
	}
	if cfg.JWT.Secret == "" {
		t.Fatalf("expected dev secret fallback")
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("expected 2 default origins, got %v", cfg.AllowedOrigins)
	}
}

func TestValidate_ProdRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing secret error")
	}
}

func TestValidate_RejectsUnknownStore(t *testing.T) {
	cfg := Config{StoreDriver: "mongo", JWT: JWTConfig{Secret: "x"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid driver error")
	}
}
