package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Media.Driver != "disk" {
		t.Errorf("unexpected drivers %q/%q", cfg.Database.Driver, cfg.Media.Driver)
	}
	if cfg.Pagination.DefaultLimit != 10 || cfg.Pagination.MaxLimit != 100 {
		t.Errorf("unexpected pagination %+v", cfg.Pagination)
	}
	if cfg.Auth.TokenTTL.Duration != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Reconcile.StaleAfter.Duration != 15*time.Minute {
		t.Errorf("expected 15m stale_after, got %v", cfg.Reconcile.StaleAfter)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	file := `[server]
port = 9000

[auth]
jwt_secret = "from-file"
token_ttl = "1h"

[pagination]
default_limit = 5
`
	if err := os.WriteFile(path, []byte(file), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("JWT_SECRET", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("PORT", "9100")
	t.Setenv("RECONCILE_INTERVAL", "0s")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("environment should win over file, got port %d", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "from-file" || cfg.Auth.TokenTTL.Duration != time.Hour {
		t.Errorf("file values not applied: %+v", cfg.Auth)
	}
	if cfg.Pagination.DefaultLimit != 5 || cfg.Pagination.MaxLimit != 100 {
		t.Errorf("file should layer over defaults, got %+v", cfg.Pagination)
	}
	if cfg.Reconcile.Interval.Duration != 0 {
		t.Errorf("expected reconcile disabled, got %v", cfg.Reconcile.Interval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	missing := filepath.Join(t.TempDir(), "absent.toml")

	if _, err := Load(missing, false); err != nil {
		t.Errorf("implicit missing file should be ignored: %v", err)
	}
	if _, err := Load(missing, true); err == nil {
		t.Error("explicit missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Auth.JWTSecret = ""
	cfg.Database.Driver = "postgres"
	cfg.Media.Driver = "s3"
	cfg.Pagination.DefaultLimit = 500

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"jwt_secret", "database driver", "media driver", "default_limit"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestApplyEnvErrors(t *testing.T) {
	env := map[string]string{"PORT": "abc", "TOKEN_TTL": "forever", "MINIO_SECURE": "yes"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	err := Default().applyEnv(lookup)
	if err == nil {
		t.Fatal("expected parse errors")
	}
	for _, key := range []string{"PORT", "TOKEN_TTL", "MINIO_SECURE"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q should mention %s", err, key)
		}
	}
}
