package config

import (
	"strings"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("REFSCAN_TEST_PORT", "9090")
	t.Setenv("REFSCAN_TEST_EMPTY", "")

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "port: ${REFSCAN_TEST_PORT}", "port: 9090"},
		{"unset variable becomes empty", "key: ${REFSCAN_TEST_UNSET}", "key: "},
		{"default used when unset", "key: ${REFSCAN_TEST_UNSET:-fallback}", "key: fallback"},
		{"default used when empty", "key: ${REFSCAN_TEST_EMPTY:-fallback}", "key: fallback"},
		{"set variable beats default", "port: ${REFSCAN_TEST_PORT:-1234}", "port: 9090"},
		{"no substitution", "plain: value", "plain: value"},
		{"multiple on one line", "a: ${REFSCAN_TEST_PORT} b: ${REFSCAN_TEST_UNSET:-x}", "a: 9090 b: x"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := string(expandEnvVars([]byte(tc.in)))
			if got != tc.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("read timeout = %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("write timeout = %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Vision.Model != "gpt-4o" {
		t.Errorf("vision model = %q", cfg.Vision.Model)
	}
	if cfg.Vision.MaxImageSizeMB != 5 {
		t.Errorf("max image size = %v", cfg.Vision.MaxImageSizeMB)
	}
	if cfg.Catalog.KeyPrefix != "refscan:" {
		t.Errorf("key prefix = %q", cfg.Catalog.KeyPrefix)
	}
	if cfg.Catalog.RefreshIntervalSec != 300 {
		t.Errorf("refresh interval = %d", cfg.Catalog.RefreshIntervalSec)
	}
	if cfg.Matching.AcceptThreshold != 0.80 || cfg.Matching.SeparationThreshold != 0.05 {
		t.Errorf("thresholds = %v / %v", cfg.Matching.AcceptThreshold, cfg.Matching.SeparationThreshold)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.Matching.AcceptThreshold = 0.9
	cfg.Vision.Model = "gpt-4o-mini"
	cfg.ApplyDefaults()

	if cfg.Matching.AcceptThreshold != 0.9 {
		t.Errorf("accept threshold overwritten: %v", cfg.Matching.AcceptThreshold)
	}
	if cfg.Vision.Model != "gpt-4o-mini" {
		t.Errorf("vision model overwritten: %q", cfg.Vision.Model)
	}
}

func validConfig() Config {
	var cfg Config
	cfg.HTTP.Port = 8080
	cfg.Database.Addrs = []string{"localhost:6379"}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"zero port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"port out of range", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"no database addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"accept threshold above one", func(c *Config) { c.Matching.AcceptThreshold = 1.5 }, "accept_threshold"},
		{"separation above accept", func(c *Config) {
			c.Matching.AcceptThreshold = 0.5
			c.Matching.SeparationThreshold = 0.6
		}, "separation_threshold"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}
