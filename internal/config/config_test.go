package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()
	if !cfg.Enabled {
		t.Error("expected rate limiting enabled by default")
	}
	if cfg.Capacity != 60 {
		t.Errorf("Capacity = %d, want 60", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 {
		t.Errorf("RefillTokens = %d, want 1", cfg.RefillTokens)
	}
	if cfg.RefillInterval != time.Second {
		t.Errorf("RefillInterval = %s, want 1s", cfg.RefillInterval)
	}
	if cfg.KeyStrategy != "ip_user_route" {
		t.Errorf("KeyStrategy = %q, want ip_user_route", cfg.KeyStrategy)
	}
	if cfg.Prefix != "rl" {
		t.Errorf("Prefix = %q, want rl", cfg.Prefix)
	}
}

func TestLoadRateLimitConfigOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_KEY_STRATEGY", "user")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 5 {
		t.Errorf("Capacity = %d, want 5", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 || cfg.RefillInterval != 2*time.Second {
		t.Errorf("refill = %d/%s, want 1/2s", cfg.RefillTokens, cfg.RefillInterval)
	}
	// TTL is clamped to cover at least five refill intervals.
	if cfg.TTL != 10*time.Second {
		t.Errorf("TTL = %s, want 10s", cfg.TTL)
	}
	if cfg.KeyStrategy != "user" {
		t.Errorf("KeyStrategy = %q, want user", cfg.KeyStrategy)
	}
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	if !cfg.Enabled {
		t.Error("expected cache enabled by default")
	}
	if !cfg.Methods["GET"] || len(cfg.Methods) != 1 {
		t.Errorf("Methods = %v, want GET only", cfg.Methods)
	}
	if cfg.TTL != 30*time.Second {
		t.Errorf("TTL = %s, want 30s", cfg.TTL)
	}
	if cfg.MaxBodyBytes != 1048576 {
		t.Errorf("MaxBodyBytes = %d, want 1048576", cfg.MaxBodyBytes)
	}
}

func TestParseMethods(t *testing.T) {
	m := parseMethods("get, head ,POST,")
	for _, want := range []string{"GET", "HEAD", "POST"} {
		if !m[want] {
			t.Errorf("missing method %s in %v", want, m)
		}
	}
	if len(m) != 3 {
		t.Errorf("len = %d, want 3", len(m))
	}
}

func TestEnvBool(t *testing.T) {
	cases := []struct {
		val  string
		def  bool
		want bool
	}{
		{"1", false, true},
		{"yes", false, true},
		{"off", true, false},
		{"FALSE", true, false},
		{"maybe", true, true},
		{"", false, false},
	}
	for _, tc := range cases {
		t.Setenv("TEST_ENV_BOOL", tc.val)
		if got := envBool("TEST_ENV_BOOL", tc.def); got != tc.want {
			t.Errorf("envBool(%q, %v) = %v, want %v", tc.val, tc.def, got, tc.want)
		}
	}
}
