// Package config provides the file-based configuration of an analysis run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Analysis names accepted in configuration files.
const (
	AnalysisReachable = "reachable-blocks"
	AnalysisConstProp = "constprop"
	AnalysisReaching  = "reaching-defs"
)

var knownAnalyses = map[string]bool{
	AnalysisReachable: true,
	AnalysisConstProp: true,
	AnalysisReaching:  true,
}

// Config is the deserialized configuration file of a run.
type Config struct {
	// Packages is the package pattern to load and analyze.
	Packages string `yaml:"packages"`
	// ModulePath points at the directory containing the target module's
	// go.mod. Empty means GOPATH mode.
	ModulePath string `yaml:"module-path"`
	// GoPath overrides GOPATH during loading.
	GoPath string `yaml:"go-path"`
	// IncludeTests also loads test functions.
	IncludeTests bool `yaml:"include-tests"`

	// Functions restricts the run to the named functions. Empty means all
	// functions with bodies.
	Functions []string `yaml:"functions"`
	// Analyses names the analyses to run over each function.
	Analyses []string `yaml:"analyses"`

	// OutputDir receives exported graphs. Empty disables export.
	OutputDir string `yaml:"output-dir"`
	// OutputFormat is the image format for exported graphs (svg, png, ...).
	OutputFormat string `yaml:"output-format"`

	sourceFile string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Analyses:     []string{AnalysisReachable},
		OutputFormat: "svg",
	}
}

// LoadFromFile reads and validates a configuration file. Relative paths in
// the file resolve against the file's directory.
func LoadFromFile(path string) (*Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	cfg.sourceFile = path

	dir := filepath.Dir(path)
	if cfg.ModulePath != "" && !filepath.IsAbs(cfg.ModulePath) {
		cfg.ModulePath = filepath.Join(dir, cfg.ModulePath)
	}
	if cfg.OutputDir != "" && !filepath.IsAbs(cfg.OutputDir) {
		cfg.OutputDir = filepath.Join(dir, cfg.OutputDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that name unknown analyses or lack a
// package pattern.
func (c *Config) Validate() error {
	if c.Packages == "" {
		return fmt.Errorf("config: no package pattern given")
	}
	for _, name := range c.Analyses {
		if !knownAnalyses[name] {
			return fmt.Errorf("config: unknown analysis %q", name)
		}
	}
	if len(c.Analyses) == 0 {
		return fmt.Errorf("config: no analyses given")
	}
	return nil
}

// SourceFile reports the file this configuration was loaded from, if any.
func (c *Config) SourceFile() string {
	return c.sourceFile
}

// WantsAnalysis checks whether the named analysis was requested.
func (c *Config) WantsAnalysis(name string) bool {
	for _, a := range c.Analyses {
		if a == name {
			return true
		}
	}
	return false
}
