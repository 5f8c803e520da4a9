package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Server.Port != "8088" {
		t.Errorf("default port = %q, want 8088", cfg.Server.Port)
	}
	if cfg.JWT.AccessExpiry != 30*time.Minute {
		t.Errorf("default access expiry = %v, want 30m", cfg.JWT.AccessExpiry)
	}
	if cfg.JWT.Issuer != "iot-showroom" {
		t.Errorf("default issuer = %q", cfg.JWT.Issuer)
	}
	if cfg.Database.MaxOpenConns != 100 {
		t.Errorf("default max open conns = %d, want 100", cfg.Database.MaxOpenConns)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_ACCESS_EXPIRY", "15m")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("ENV", "production")

	cfg := Load()
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.JWT.AccessExpiry != 15*time.Minute {
		t.Errorf("access expiry = %v, want 15m", cfg.JWT.AccessExpiry)
	}
	if cfg.Database.MaxIdleConns != 3 {
		t.Errorf("max idle conns = %d, want 3", cfg.Database.MaxIdleConns)
	}
	if cfg.Server.Env != "production" {
		t.Errorf("env = %q, want production", cfg.Server.Env)
	}
}

func TestGetenvIgnoresUnparsable(t *testing.T) {
	t.Setenv("DB_MAX_IDLE_CONNS", "not-a-number")
	t.Setenv("READ_TIMEOUT", "soon")

	cfg := Load()
	if cfg.Database.MaxIdleConns != 10 {
		t.Errorf("unparsable int should fall back, got %d", cfg.Database.MaxIdleConns)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("unparsable duration should fall back, got %v", cfg.Server.ReadTimeout)
	}
}
