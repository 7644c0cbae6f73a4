package config

import (
	"testing"
)

func TestEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"unset", "", 42},
		{"valid", "7", 7},
		{"invalid", "seven", 42},
		{"negative", "-1", 42},
		{"zero", "0", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("FACEMATCH_TEST_INT", tt.value)
			}
			result := envInt("FACEMATCH_TEST_INT", 42)
			if result != tt.expected {
				t.Errorf("envInt(%q, 42) = %d, want %d", tt.value, result, tt.expected)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Detector.URL != "http://localhost:8000" {
		t.Errorf("Detector.URL = %q, want default", cfg.Detector.URL)
	}
	if cfg.Encoder.URL != "http://localhost:8001" {
		t.Errorf("Encoder.URL = %q, want default", cfg.Encoder.URL)
	}
	if cfg.Encoder.Dim != 512 {
		t.Errorf("Encoder.Dim = %d, want 512", cfg.Encoder.Dim)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Database.MaxOpenConns = %d, want 25", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("Database.MaxIdleConns = %d, want 5", cfg.Database.MaxIdleConns)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DETECTOR_URL", "http://faces:9000")
	t.Setenv("ENCODER_URL", "http://embed:9001")
	t.Setenv("EMBEDDING_DIM", "128")
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("REFERENCES_FILE", "refs.yaml")

	cfg := Load()

	if cfg.Detector.URL != "http://faces:9000" {
		t.Errorf("Detector.URL = %q", cfg.Detector.URL)
	}
	if cfg.Encoder.URL != "http://embed:9001" {
		t.Errorf("Encoder.URL = %q", cfg.Encoder.URL)
	}
	if cfg.Encoder.Dim != 128 {
		t.Errorf("Encoder.Dim = %d, want 128", cfg.Encoder.Dim)
	}
	if cfg.Database.URL != "postgres://x" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Matching.ReferencesFile != "refs.yaml" {
		t.Errorf("Matching.ReferencesFile = %q", cfg.Matching.ReferencesFile)
	}
}
