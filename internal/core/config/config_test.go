package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if c.App.HTTP.Port != 8080 || c.App.Admin.Port != 8081 {
		t.Errorf("ports = %d/%d", c.App.HTTP.Port, c.App.Admin.Port)
	}
	if c.DB.Driver != "sqlite" {
		t.Errorf("driver = %q", c.DB.Driver)
	}
	if c.App.HTTP.PerIPRPS != 20 || c.App.HTTP.PerIPBurst != 40 {
		t.Errorf("per-ip limits = %v/%d", c.App.HTTP.PerIPRPS, c.App.HTTP.PerIPBurst)
	}
	if len(c.CORS.AllowOrigins) != 1 || c.CORS.AllowOrigins[0] != "*" {
		t.Errorf("cors origins = %v", c.CORS.AllowOrigins)
	}
	if c.Health.ProbeTimeoutMs != 2000 {
		t.Errorf("probe timeout = %d", c.Health.ProbeTimeoutMs)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
app:
  name: demo
  http:
    port: 9000
db:
  driver: postgres
  dsn: postgres://localhost/demo
log:
  log_requests: false
health:
  cache_ttl_sec: 7
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APP_DB_DSN", "postgres://override/demo")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if c.App.Name != "demo" || c.App.HTTP.Port != 9000 {
		t.Errorf("app = %+v", c.App)
	}
	if c.App.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("default read timeout lost: %d", c.App.HTTP.ReadTimeoutSec)
	}
	if c.DB.Driver != "postgres" || c.DB.DSN != "postgres://override/demo" {
		t.Errorf("db = %+v", c.DB)
	}
	if c.Log.LogRequests {
		t.Error("log_requests should be false")
	}
	if c.Health.CacheTTLSec != 7 {
		t.Errorf("cache ttl = %d", c.Health.CacheTTLSec)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("app: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed yaml")
	}
}
