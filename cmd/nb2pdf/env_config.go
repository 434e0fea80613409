package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-nb2pdf/internal/config"
)

// envPrefix starts every variable read by the CLI.
const envPrefix = "NB2PDF_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // NB2PDF_CONFIG: config file name or path
	Timeout    time.Duration // NB2PDF_TIMEOUT: PDF generation timeout
	Workers    int           // NB2PDF_WORKERS: parallel workers

	InputDir  string // NB2PDF_INPUT_DIR: default input directory
	OutputDir string // NB2PDF_OUTPUT_DIR: default output directory

	Student    string // NB2PDF_STUDENT: student name
	Assignment string // NB2PDF_ASSIGNMENT: assignment name
	Engine     string // NB2PDF_ENGINE: native, chrome
	PageSize   string // NB2PDF_PAGE_SIZE: a4, letter, legal
	Kernel     string // NB2PDF_KERNEL: Jupyter kernel name
}

// knownEnvVars lists valid NB2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"NB2PDF_CONFIG":      true,
	"NB2PDF_TIMEOUT":     true,
	"NB2PDF_WORKERS":     true,
	"NB2PDF_INPUT_DIR":   true,
	"NB2PDF_OUTPUT_DIR":  true,
	"NB2PDF_STUDENT":     true,
	"NB2PDF_ASSIGNMENT":  true,
	"NB2PDF_ENGINE":      true,
	"NB2PDF_PAGE_SIZE":   true,
	"NB2PDF_KERNEL":      true,
	"NB2PDF_JUPYTER_BIN": true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("NB2PDF_CONFIG"),
		InputDir:   os.Getenv("NB2PDF_INPUT_DIR"),
		OutputDir:  os.Getenv("NB2PDF_OUTPUT_DIR"),
		Student:    os.Getenv("NB2PDF_STUDENT"),
		Assignment: os.Getenv("NB2PDF_ASSIGNMENT"),
		Engine:     os.Getenv("NB2PDF_ENGINE"),
		PageSize:   os.Getenv("NB2PDF_PAGE_SIZE"),
		Kernel:     os.Getenv("NB2PDF_KERNEL"),
	}

	if timeout := os.Getenv("NB2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("NB2PDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized NB2PDF_* variables.
// Helps catch typos like NB2PDF_STUDENTS instead of NB2PDF_STUDENT.
func warnUnknownEnvVars(logger *log.Logger) {
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			logger.Warn("Unknown environment variable (typo?)", "name", name)
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; CLI flags are merged later
// by mergeFlags, giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.InputDir != "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Student != "" {
		cfg.Report.Student = env.Student
	}
	if env.Assignment != "" {
		cfg.Report.Assignment = env.Assignment
	}
	if env.Engine != "" {
		cfg.Render.Engine = env.Engine
	}
	if env.PageSize != "" {
		cfg.Page.Size = env.PageSize
	}
	if env.Kernel != "" {
		cfg.Execution.Kernel = env.Kernel
	}
}
