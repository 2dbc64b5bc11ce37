package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "washgate.yaml")
	raw := []byte(`
server_port: "4000"
api_base_url: https://wash.example.com
verify_timeout: 5s
default_location_id: loc-1
camera:
  fps: 15
  torch_led: /sys/class/leds/flash/brightness
`)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("WASHGATE_PORT", "4100")
	t.Setenv("WASHGATE_DEMO", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ServerPort != "4100" {
		t.Errorf("ServerPort = %q, want env override 4100", cfg.ServerPort)
	}
	if cfg.APIBaseURL != "https://wash.example.com" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.VerifyTimeout != 5*time.Second {
		t.Errorf("VerifyTimeout = %s", cfg.VerifyTimeout)
	}
	if cfg.Camera.FPS != 15 {
		t.Errorf("FPS = %d", cfg.Camera.FPS)
	}
	if cfg.Camera.Width != 640 || cfg.Camera.Height != 480 {
		t.Errorf("frame size = %dx%d, want defaults kept", cfg.Camera.Width, cfg.Camera.Height)
	}
	if cfg.Camera.TorchLED == "" {
		t.Error("TorchLED should come from file")
	}
	if !cfg.DemoMode {
		t.Error("DemoMode should be set from env")
	}
}

func TestApplyEnvRejectsBadDuration(t *testing.T) {
	cfg := NewConfig()
	lookup := func(key string) (string, bool) {
		if key == "WASHGATE_VERIFY_TIMEOUT" {
			return "soon", true
		}
		return "", false
	}
	if err := cfg.applyEnv(lookup); err == nil {
		t.Fatal("expected error for unparsable timeout")
	}
}

func TestValidate(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.VerifyTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero verify timeout should fail")
	}
}

func TestLoadValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "washgate.yaml")
	if err := os.WriteFile(path, []byte("api_base_url: \"\"\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("err = %v, want invalid config", err)
	}
}
