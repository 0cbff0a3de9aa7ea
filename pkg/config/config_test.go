package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
	if cfg.QualityThreshold != 0.4 || cfg.MinLawLength != 50 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.Chunking.MaxSize != 1000 {
		t.Errorf("MaxSize = %d, want 1000", cfg.Chunking.MaxSize)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Output.Dir != "data/processed" {
		t.Errorf("Output.Dir = %q", cfg.Output.Dir)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `chunking:
  min_chunk_size: 100
  max_chunk_size: 500
quality_threshold: 0.6
output:
  dir: out
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Chunking.MinSize != 100 || cfg.Chunking.MaxSize != 500 {
		t.Errorf("Chunking = %+v", cfg.Chunking)
	}
	if cfg.QualityThreshold != 0.6 {
		t.Errorf("QualityThreshold = %.1f", cfg.QualityThreshold)
	}
	// Untouched fields keep their defaults.
	if cfg.MinLawLength != 50 {
		t.Errorf("MinLawLength = %d", cfg.MinLawLength)
	}
	if cfg.Output.Chunks != "chunks.json" {
		t.Errorf("Output.Chunks = %q", cfg.Output.Chunks)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("quality_threshold: 2.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for out-of-range threshold")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("chunking: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestOutputPath(t *testing.T) {
	cfg := Default()
	got := cfg.OutputPath(cfg.Output.Chunks)
	if !strings.HasSuffix(got, filepath.Join("data", "processed", "chunks.json")) {
		t.Errorf("OutputPath = %q", got)
	}
}
