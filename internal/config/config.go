// Package config loads the YAML configuration of nb2pdf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxNameLength        = 100  // student name
	MaxAssignmentLength  = 200  // assignment name
	MaxTitleLength       = 200  // report title
	MaxDateLength        = 60   // "auto:DD/MM/YYYY" or a literal date
	MaxPageSizeLength    = 10   // "letter", "a4", "legal"
	MaxOrientationLength = 10   // "portrait", "landscape"
	MaxKernelLength      = 100  // kernel spec name
	MaxEngineLength      = 10   // "native", "chrome"
	MaxPathLength        = 4096 // directories
)

// Limits for numeric fields.
const (
	MaxDPI                = 1200
	MaxExecTimeoutSeconds = 24 * 60 * 60
)

// Engine names accepted in render.engine.
var validEngines = []string{"native", "chrome"}

// Config holds all configuration for report generation.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Report    ReportConfig    `yaml:"report"`
	Page      PageConfig      `yaml:"page"`
	Execution ExecutionConfig `yaml:"execution"`
	Render    RenderConfig    `yaml:"render"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// ReportConfig defines the header of the report.
type ReportConfig struct {
	Student    string `yaml:"student"`
	Assignment string `yaml:"assignment"`
	Title      string `yaml:"title"` // empty = "Jupyter Notebook Assignment Report"
	Date       string `yaml:"date"`  // "auto", "auto:<format>" or a literal date
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal" (default: "a4")
	Orientation string  `yaml:"orientation"` // "portrait", "landscape" (default: "portrait")
	Margin      float64 `yaml:"margin"`      // inches
}

// ExecutionConfig defines how notebooks are executed before rendering.
type ExecutionConfig struct {
	Enabled        *bool  `yaml:"enabled"`        // nil = true
	Kernel         string `yaml:"kernel"`         // default: "python3"
	TimeoutSeconds int    `yaml:"timeoutSeconds"` // per cell, default: 600
}

// IsEnabled reports whether notebooks are executed. Execution is on
// unless explicitly disabled.
func (e ExecutionConfig) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// RenderConfig defines the page engine and rendering options.
type RenderConfig struct {
	Engine    string  `yaml:"engine"`    // "native" (default) or "chrome"
	Highlight bool    `yaml:"highlight"` // syntax highlighting, chrome engine only
	DPI       float64 `yaml:"dpi"`       // image resolution, default 25.4
	AssetsDir string  `yaml:"assetsDir"` // custom template/style directory
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"report.student", c.Report.Student, MaxNameLength},
		{"report.assignment", c.Report.Assignment, MaxAssignmentLength},
		{"report.title", c.Report.Title, MaxTitleLength},
		{"report.date", c.Report.Date, MaxDateLength},
		{"page.size", c.Page.Size, MaxPageSizeLength},
		{"page.orientation", c.Page.Orientation, MaxOrientationLength},
		{"execution.kernel", c.Execution.Kernel, MaxKernelLength},
		{"render.engine", c.Render.Engine, MaxEngineLength},
		{"render.assetsDir", c.Render.AssetsDir, MaxPathLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Execution.TimeoutSeconds < 0 || c.Execution.TimeoutSeconds > MaxExecTimeoutSeconds {
		return fmt.Errorf("%w: execution.timeoutSeconds must be between 0 and %d, got %d",
			ErrInvalidValue, MaxExecTimeoutSeconds, c.Execution.TimeoutSeconds)
	}

	if c.Render.Engine != "" && !containsFold(validEngines, c.Render.Engine) {
		return fmt.Errorf("%w: render.engine %q (must be %s)",
			ErrInvalidValue, c.Render.Engine, strings.Join(validEngines, " or "))
	}
	if c.Render.DPI < 0 || c.Render.DPI > MaxDPI {
		return fmt.Errorf("%w: render.dpi must be between 0 and %d, got %g", ErrInvalidValue, MaxDPI, c.Render.DPI)
	}

	if c.Page.Margin < 0 {
		return fmt.Errorf("%w: page.margin must not be negative, got %g", ErrInvalidValue, c.Page.Margin)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// DefaultConfig returns the configuration used when no file is given:
// execution enabled, native engine, A4 portrait.
func DefaultConfig() *Config {
	return &Config{
		Report:    ReportConfig{Date: "auto"},
		Execution: ExecutionConfig{},
		Render:    RenderConfig{Engine: "native"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := decodeStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-nb2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-nb2pdf", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// SearchedPaths lists where a config name is looked up, for error hints.
func SearchedPaths(name string) []string {
	paths := []string{name + ".yaml", name + ".yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(dir, "go-nb2pdf", name+".yaml"),
			filepath.Join(dir, "go-nb2pdf", name+".yml"))
	}
	return paths
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
