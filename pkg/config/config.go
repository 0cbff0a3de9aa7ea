// Package config loads the pipeline configuration from YAML with
// sensible defaults for every field.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/qanun/pkg/chunker"
)

// Output names the JSON collection files written by the pipeline,
// relative to Dir.
type Output struct {
	Dir              string `yaml:"dir"`
	IndividualLaws   string `yaml:"individual_laws"`
	Documents        string `yaml:"documents"`
	Chunks           string `yaml:"chunks"`
	Metadata         string `yaml:"metadata"`
	ProcessingReport string `yaml:"processing_report"`
}

// Config is the full pipeline configuration.
type Config struct {
	Chunking         chunker.Config `yaml:"chunking"`
	QualityThreshold float64        `yaml:"quality_threshold"`
	MinLawLength     int            `yaml:"min_law_length"`
	PatternDir       string         `yaml:"pattern_dir"`
	Output           Output         `yaml:"output"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Chunking:         chunker.DefaultConfig(),
		QualityThreshold: 0.4,
		MinLawLength:     50,
		Output: Output{
			Dir:              "data/processed",
			IndividualLaws:   "individual_laws.json",
			Documents:        "documents.json",
			Chunks:           "chunks.json",
			Metadata:         "metadata.json",
			ProcessingReport: "processing_report.json",
		},
	}
}

// Load reads a YAML configuration file over the defaults. An empty
// path returns the defaults untouched.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	if err := c.Chunking.Validate(); err != nil {
		return err
	}
	if c.QualityThreshold < 0 || c.QualityThreshold > 1 {
		return fmt.Errorf("quality threshold %.2f outside [0,1]", c.QualityThreshold)
	}
	if c.MinLawLength < 0 {
		return fmt.Errorf("negative minimum law length %d", c.MinLawLength)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("empty output directory")
	}
	return nil
}

// OutputPath resolves one of the output file names against Dir.
func (c *Config) OutputPath(name string) string {
	return filepath.Join(c.Output.Dir, name)
}
