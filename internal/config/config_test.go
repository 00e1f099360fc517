package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"HTTP_PORT", "HTTP_READ_TIMEOUT", "DB_HOST", "DB_PORT", "DB_MAX_CONNS",
		"CACHE_TTL", "AUTH_ENABLED", "JWT_SECRET", "TOKEN_TTL", "JIRA_API_EXPIRY",
		"JIRA_BASE_URL", "LOG_FORMAT", "REPORT_S3_BUCKET", "REPORT_S3_ENDPOINT",
	} {
		os.Unsetenv(v)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%q): %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HttpPort != "8080" {
		t.Errorf("HttpPort = %q, want 8080", cfg.HttpPort)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.JiraBaseURL != "https://projectcolibri.atlassian.net" {
		t.Errorf("JiraBaseURL = %q", cfg.JiraBaseURL)
	}
	if cfg.JiraAPIExpiry != "2027-01-20" {
		t.Errorf("JiraAPIExpiry = %q", cfg.JiraAPIExpiry)
	}
	if cfg.AuthEnabled {
		t.Error("AuthEnabled should default to false")
	}
	if cfg.ArchiveEnabled() {
		t.Error("ArchiveEnabled should be false without a bucket")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("HTTP_READ_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HttpPort != "9090" {
		t.Errorf("HttpPort = %q, want 9090", cfg.HttpPort)
	}
	if cfg.ReadTimeout != 3*time.Second {
		t.Errorf("ReadTimeout = %v, want 3s", cfg.ReadTimeout)
	}
	if dsn := cfg.PostgresDSN(); !strings.Contains(dsn, "@db.internal:5432/operations") {
		t.Errorf("PostgresDSN = %q", dsn)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(".env", []byte("LOG_FORMAT=console\nJIRA_BASE_URL=https://jira.example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("LOG_FORMAT")
		os.Unsetenv("JIRA_BASE_URL")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogFormat != "console" {
		t.Errorf("LogFormat = %q, want console", cfg.LogFormat)
	}
	if cfg.JiraBaseURL != "https://jira.example.com" {
		t.Errorf("JiraBaseURL = %q", cfg.JiraBaseURL)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		HttpPort:      "8080",
		DbMaxConns:    4,
		CacheTTL:      time.Minute,
		TokenTTL:      time.Hour,
		JiraAPIExpiry: "2027-01-20",
		LogFormat:     "json",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty port", func(c *Config) { c.HttpPort = "" }, "HTTP_PORT"},
		{"pool size", func(c *Config) { c.DbMaxConns = 0 }, "DB_MAX_CONNS"},
		{"auth without secret", func(c *Config) { c.AuthEnabled = true }, "JWT_SECRET"},
		{"bad expiry", func(c *Config) { c.JiraAPIExpiry = "soon" }, "JIRA_API_EXPIRY"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}
