package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "firewall.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoaderDefaults(t *testing.T) {
	cfg, err := NewLoader("").WithEnvVars(false).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Firewall.MaxRequestsPerSecond != 20 {
		t.Errorf("MaxRequestsPerSecond = %d, want 20", cfg.Firewall.MaxRequestsPerSecond)
	}
	if cfg.Firewall.BanThreshold != 10 {
		t.Errorf("BanThreshold = %d, want 10", cfg.Firewall.BanThreshold)
	}
	if cfg.Firewall.BanDuration != 86400 {
		t.Errorf("BanDuration = %d, want 86400", cfg.Firewall.BanDuration)
	}
	if cfg.Redis.HeartbeatInterval != 10 {
		t.Errorf("HeartbeatInterval = %d, want 10", cfg.Redis.HeartbeatInterval)
	}
	if cfg.Redis.RetryInitial != 2 || cfg.Redis.RetryMax != 60 {
		t.Errorf("retry backoff = %d/%d, want 2/60", cfg.Redis.RetryInitial, cfg.Redis.RetryMax)
	}
}

func TestLoaderFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
firewall:
  maxRequestsPerSecond: 5
  banThreshold: 3
redis:
  url: redis://cache:6379/1
`)

	cfg, err := NewLoader(path).WithEnvVars(false).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Firewall.MaxRequestsPerSecond != 5 {
		t.Errorf("MaxRequestsPerSecond = %d, want 5", cfg.Firewall.MaxRequestsPerSecond)
	}
	if cfg.Firewall.BanThreshold != 3 {
		t.Errorf("BanThreshold = %d, want 3", cfg.Firewall.BanThreshold)
	}
	if cfg.Redis.URL != "redis://cache:6379/1" {
		t.Errorf("URL = %q, want redis://cache:6379/1", cfg.Redis.URL)
	}
	// Untouched values keep defaults
	if cfg.Firewall.BanDuration != 86400 {
		t.Errorf("BanDuration = %d, want default 86400", cfg.Firewall.BanDuration)
	}
}

func TestLoaderEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
firewall:
  maxRequestsPerSecond: 5
`)

	t.Setenv("FIREWALL_FIREWALL_MAXREQUESTSPERSECOND", "7")
	t.Setenv("FIREWALL_REDIS_URL", "redis://envhost:6379/0")

	cfg, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Firewall.MaxRequestsPerSecond != 7 {
		t.Errorf("MaxRequestsPerSecond = %d, want env override 7", cfg.Firewall.MaxRequestsPerSecond)
	}
	if cfg.Redis.URL != "redis://envhost:6379/0" {
		t.Errorf("URL = %q, want env override", cfg.Redis.URL)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	if _, err := NewLoader("/nonexistent/firewall.yaml").Load(); err == nil {
		t.Fatal("expected missing file to fail")
	}
}

func TestLoaderValidation(t *testing.T) {
	cases := map[string]string{
		"zero rate threshold": `
firewall:
  maxRequestsPerSecond: -1
`,
		"zero ban threshold": `
firewall:
  banThreshold: 0
`,
		"missing redis url": `
redis:
  url: ""
`,
		"unknown auth mode": `
auth:
  mode: ldap
`,
		"sqlite auth without path": `
auth:
  mode: sqlite
`,
		"jwt auth without secret": `
auth:
  mode: jwt
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, content)
			if _, err := NewLoader(path).WithEnvVars(false).Load(); err == nil {
				t.Fatal("expected validation to fail")
			}
		})
	}
}

func TestFirewallTTLHelpers(t *testing.T) {
	fw := Firewall{RateWindow: 1, BanDuration: 86400, ViolationWindow: 3600}

	if fw.RateWindowTTL().Seconds() != 1 {
		t.Errorf("RateWindowTTL = %v, want 1s", fw.RateWindowTTL())
	}
	if fw.BanDurationTTL().Hours() != 24 {
		t.Errorf("BanDurationTTL = %v, want 24h", fw.BanDurationTTL())
	}
	if fw.ViolationWindowTTL().Hours() != 1 {
		t.Errorf("ViolationWindowTTL = %v, want 1h", fw.ViolationWindowTTL())
	}
}
