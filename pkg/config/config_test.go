package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "environment: development\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if len(cfg.Assistant.Symbols) != len(DefaultSymbols) {
		t.Errorf("symbols = %v", cfg.Assistant.Symbols)
	}
	if cfg.Assistant.CacheMaxAge != 30*time.Minute {
		t.Errorf("cache max age = %v", cfg.Assistant.CacheMaxAge)
	}
	if cfg.Groq.Model != "llama-3.3-70b-versatile" {
		t.Errorf("model = %q", cfg.Groq.Model)
	}
	if cfg.Sports.BaseURL == "" || cfg.Sports.Timeout != 10*time.Second {
		t.Errorf("sports defaults not applied: %+v", cfg.Sports)
	}
}

func TestLoadMissingFileNotFatal(t *testing.T) {
	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing config must not be fatal: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("defaults not applied: %+v", cfg.Server)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("STOCK_SYMBOLS", "tsla, aapl")
	t.Setenv("BOSTON_INTENSITY", "9")
	t.Setenv("PORT", "9090")

	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Groq.APIKey != "gsk_test" {
		t.Errorf("api key not overridden")
	}
	if len(cfg.Assistant.Symbols) != 2 || cfg.Assistant.Symbols[0] != "TSLA" {
		t.Errorf("symbols = %v", cfg.Assistant.Symbols)
	}
	if cfg.Assistant.AccentIntensity != 9 {
		t.Errorf("intensity = %d", cfg.Assistant.AccentIntensity)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
}

func TestMissingCompletionKeyAllowed(t *testing.T) {
	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Groq.APIKey != "" {
		t.Skipf("ambient GROQ_API_KEY set")
	}
	// No error: chat degrades instead of refusing to start.
}

func TestValidateIntensityBounds(t *testing.T) {
	path := writeConfig(t, "environment: development\nassistant:\n  accent_intensity: 11\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("intensity 11 must fail validation")
	}
}

func TestValidateKafkaBrokers(t *testing.T) {
	path := writeConfig(t, "environment: development\nkafka:\n  enabled: true\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("enabled kafka without brokers must fail validation")
	}
}
