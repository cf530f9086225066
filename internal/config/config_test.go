package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  base_path: api/
jwt:
  secret: file-secret-0123456789
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Server.BasePath != "/api" {
		t.Errorf("base path = %q", cfg.Server.BasePath)
	}
	if cfg.Database.Driver != "sqlite" || cfg.JWT.Issuer != "finance-ledger" || !cfg.JWT.RequireSession {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: file-secret-0123456789\n")
	t.Setenv("FL_JWT_SECRET", "env-secret-0123456789")
	t.Setenv("FL_SERVER_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.JWT.Secret != "env-secret-0123456789" || cfg.Server.Port != 7070 {
		t.Errorf("env override ignored: secret=%q port=%d", cfg.JWT.Secret, cfg.Server.Port)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate_CollectsProblems(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 0},
		Database: DatabaseConfig{Driver: "postgres"},
		JWT:      JWTConfig{Secret: "short"},
		Security: SecurityConfig{BcryptCost: 2},
		Log:      LogConfig{Format: "xml"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"server.port", "database.dsn", "jwt.secret", "jwt.expire_hours", "bcrypt_cost", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{"": "", "/": "", "api": "/api", "/api/": "/api", " /v1/api ": "/v1/api"}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
