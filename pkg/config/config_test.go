package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != DefaultListen || cfg.APIURL != DefaultAPIURL || cfg.ClientApp != DefaultClientApp {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.RequestTimeout.Duration != DefaultRequestTimeout || cfg.SignalBuffer != DefaultSignalBuffer {
		t.Fatalf("expected default timeout and buffer, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
listen = "0.0.0.0:9000"
api_url = "http://localhost:8000/api/v5/"
client_app = "android"
request_timeout = "5s"
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9000" || cfg.ClientApp != "android" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.RequestTimeout.Duration != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.SignalBuffer != DefaultSignalBuffer {
		t.Errorf("expected default buffer, got %d", cfg.SignalBuffer)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"bad toml":      `listen = `,
		"bad duration":  `request_timeout = "soon"`,
		"bad scheme":    `api_url = "ftp://example.test/"`,
		"bad listen":    `listen = "nocolon"`,
		"auth no token": `auth_required = true`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(data), 0600); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTemplateLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := SaveTemplateConfig(path); err != nil {
		t.Fatalf("save template: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.ClientApp != "firefox" || cfg.Lang != "en-US" {
		t.Fatalf("unexpected template config %+v", cfg)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := GetDefaultConfig()
	cfg.ClientApp = "android"
	cfg.RequestTimeout = Duration{2 * time.Minute}
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ClientApp != "android" || loaded.RequestTimeout.Duration != 2*time.Minute {
		t.Fatalf("unexpected loaded config %+v", loaded)
	}
}

func TestGetDefaultConfigPathHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path, err := GetDefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != filepath.Join(dir, "amosearch", "config.toml") {
		t.Fatalf("unexpected path %q", path)
	}
}
