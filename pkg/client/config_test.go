package client

import (
	"errors"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/jdziat/langfuse-ingest/pkg/config"
)

func validConfig() *Config {
	cfg := &Config{PublicKey: testPublicKey, SecretKey: testSecretKey}
	cfg.ApplyDefaults()
	return cfg
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.BaseURL != "https://cloud.langfuse.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if !cfg.BatchMode() {
		t.Error("BatchMode() = false, want true by default")
	}
	if cfg.BatchSize != DefaultBatchSize || cfg.FlushInterval != DefaultFlushInterval {
		t.Errorf("BatchSize = %d, FlushInterval = %v", cfg.BatchSize, cfg.FlushInterval)
	}
	if cfg.QueueCapacity != 50_000 || cfg.MaxBatchBytes != 3_500_000 {
		t.Errorf("QueueCapacity = %d, MaxBatchBytes = %d", cfg.QueueCapacity, cfg.MaxBatchBytes)
	}
	if cfg.HTTPClient == nil || cfg.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("HTTPClient = %+v", cfg.HTTPClient)
	}
}

func TestConfig_ApplyDefaultsRegion(t *testing.T) {
	cfg := &Config{Region: RegionUS}
	cfg.ApplyDefaults()
	if cfg.BaseURL != "https://us.cloud.langfuse.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		wantMsg string
	}{
		{"valid", func(*Config) {}, nil, ""},
		{"missing public key", func(c *Config) { c.PublicKey = "" }, ErrMissingPublicKey, ""},
		{"missing secret key", func(c *Config) { c.SecretKey = "" }, ErrMissingSecretKey, ""},
		{"short key", func(c *Config) { c.PublicKey = "pk-1" }, nil, "too short"},
		{"wrong prefix", func(c *Config) { c.SecretKey = "pk-lf-secret-key" }, nil, `start with "sk-"`},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://example.com" }, nil, "http or https"},
		{"batch size", func(c *Config) { c.BatchSize = MaxBatchSize + 1 }, nil, "batch size"},
		{"retries", func(c *Config) { c.MaxRetries = -1 }, nil, "max retries"},
		{"retry policy retries", func(c *Config) { c.RetryPolicy = &RetryPolicy{MaxRetries: -1} }, nil, "retry policy max retries"},
		{"flush interval", func(c *Config) { c.FlushInterval = time.Millisecond }, nil, "flush interval"},
		{"queue capacity", func(c *Config) { c.QueueCapacity = -1 }, nil, "queue capacity"},
		{"mode", func(c *Config) { c.Mode = IngestionMode(7) }, nil, "ingestion mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			switch {
			case tt.wantErr == nil && tt.wantMsg == "":
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
					t.Errorf("Validate() error = %v, want %q", err, tt.wantMsg)
				}
			}
		})
	}
}

func TestConfig_StringMasksCredentials(t *testing.T) {
	cfg := &Config{PublicKey: "pk-lf-1234567890abcd", SecretKey: "sk-lf-0987654321wxyz"}
	s := cfg.String()
	if strings.Contains(s, "1234567890") || strings.Contains(s, "0987654321") {
		t.Errorf("String() leaks credentials: %s", s)
	}
	if !strings.Contains(s, "pk-lf-****abcd") || !strings.Contains(s, "sk-lf-****wxyz") {
		t.Errorf("String() = %s", s)
	}
}

func TestMaskCredential(t *testing.T) {
	tests := map[string]string{
		"":                     "****",
		"pk-lf-short":          "****",
		"pk-lf-1234567890abcd": "pk-lf-****abcd",
	}
	for in, want := range tests {
		if got := maskCredential(in); got != want {
			t.Errorf("maskCredential(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWithBatchMode(t *testing.T) {
	cfg := &Config{}
	WithBatchMode(false)(cfg)
	if cfg.BatchMode() || cfg.Mode != ModeImmediate {
		t.Errorf("Mode = %v, want immediate", cfg.Mode)
	}
	WithBatchMode(true)(cfg)
	if !cfg.BatchMode() {
		t.Errorf("Mode = %v, want batch", cfg.Mode)
	}
}

func TestWithSettings(t *testing.T) {
	s := &pkgconfig.Settings{
		PublicKey:     "pk-lf-settings",
		SecretKey:     "sk-lf-settings",
		Host:          "http://localhost:3000/",
		BatchMode:     false,
		BatchSize:     25,
		FlushInterval: 2 * time.Second,
		Environment:   "dev",
	}
	cfg := &Config{}
	WithSettings(s)(cfg)
	WithBatchSize(50)(cfg)

	if cfg.PublicKey != "pk-lf-settings" || cfg.SecretKey != "sk-lf-settings" {
		t.Errorf("keys = %q %q", cfg.PublicKey, cfg.SecretKey)
	}
	if cfg.BaseURL != "http://localhost:3000" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.BatchMode() {
		t.Error("BatchMode() = true, want settings value false")
	}
	if cfg.BatchSize != 50 {
		t.Errorf("BatchSize = %d, want later option to win", cfg.BatchSize)
	}
	if cfg.FlushInterval != 2*time.Second || cfg.Environment != "dev" {
		t.Errorf("cfg = %s", cfg.String())
	}

	WithSettings(nil)(cfg)
	if cfg.PublicKey != "pk-lf-settings" {
		t.Error("WithSettings(nil) changed the config")
	}
}

func TestIngestionModeString(t *testing.T) {
	if ModeBatch.String() != "batch" || ModeImmediate.String() != "immediate" || IngestionMode(5).String() != "unknown" {
		t.Error("IngestionMode.String() mismatch")
	}
}
