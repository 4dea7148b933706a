package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MODEL_PATH", "/models/frcnn.onnx")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.Port != "3006" {
		t.Errorf("Expected default port 3006, got %q", cfg.Port)
	}
	if cfg.DetectionThreshold != 0.5 {
		t.Errorf("Expected default threshold 0.5, got %g", cfg.DetectionThreshold)
	}
	if cfg.MaxObjects != 10 {
		t.Errorf("Expected default max objects 10, got %d", cfg.MaxObjects)
	}
	if cfg.Device != "auto" {
		t.Errorf("Expected default device auto, got %q", cfg.Device)
	}
	if cfg.PoolSize != 1 {
		t.Errorf("Expected default pool size 1, got %d", cfg.PoolSize)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected default request timeout 30s, got %s", cfg.RequestTimeout)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DEVICE", "cuda")
	t.Setenv("DETECTION_THRESHOLD", "0.75")
	t.Setenv("MAX_OBJECTS", "3")
	t.Setenv("POOL_SIZE", "4")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.Port != "9000" || cfg.Device != "cuda" || cfg.DetectionThreshold != 0.75 ||
		cfg.MaxObjects != 3 || cfg.PoolSize != 4 {
		t.Errorf("Overrides not applied: %+v", cfg)
	}
}

func TestLoadFromEnv_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"Invalid port", "PORT", "not-a-port"},
		{"Port out of range", "PORT", "70000"},
		{"Invalid device", "DEVICE", "tpu"},
		{"Zero pool size", "POOL_SIZE", "0"},
		{"Negative max objects", "MAX_OBJECTS", "-1"},
		{"Negative threshold", "DETECTION_THRESHOLD", "-0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadFromEnv_RequiresModelLocation(t *testing.T) {
	t.Setenv("MODEL_PATH", "")
	t.Setenv("MODEL_URL", "")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error when neither MODEL_PATH nor MODEL_URL is set")
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: " 0.0.0.0 ", Port: " 3006 "}
	if got := cfg.ServerAddress(); got != "0.0.0.0:3006" {
		t.Errorf("Expected 0.0.0.0:3006, got %q", got)
	}
}

func TestUseAzureWeights(t *testing.T) {
	cfg := &Config{}
	if cfg.UseAzureWeights() {
		t.Error("Expected false with no credentials")
	}
	cfg.AzureStorageAccount = "acct"
	if cfg.UseAzureWeights() {
		t.Error("Expected false with account but no key")
	}
	cfg.AzureStorageKey = "key"
	if !cfg.UseAzureWeights() {
		t.Error("Expected true with both credentials")
	}
}
