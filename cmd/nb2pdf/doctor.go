package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/goccy/go-yaml"

	nb2pdf "github.com/alnah/go-nb2pdf"
	"github.com/alnah/go-nb2pdf/internal/hints"
)

// versionProbeTimeout bounds each `--version` call.
const versionProbeTimeout = 10 * time.Second

// Doctor status values.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status" yaml:"status"`
	Jupyter  jupyterInfo `json:"jupyter" yaml:"jupyter"`
	Chrome   chromeInfo  `json:"chrome" yaml:"chrome"`
	Env      envInfo     `json:"environment" yaml:"environment"`
	System   systemInfo  `json:"system" yaml:"system"`
	Warnings []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// jupyterInfo holds Jupyter detection results.
type jupyterInfo struct {
	Found   bool   `json:"found" yaml:"found"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found" yaml:"found"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Sandbox bool   `json:"sandbox" yaml:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os" yaml:"os"`
	Arch          string `json:"arch" yaml:"arch"`
	Container     bool   `json:"container" yaml:"container"`
	ContainerHint string `json:"container_hint,omitempty" yaml:"container_hint,omitempty"`
	CI            bool   `json:"ci" yaml:"ci"`
	NoSandbox     string `json:"rod_no_sandbox" yaml:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin" yaml:"rod_browser_bin"`
	JupyterBin    string `json:"nb2pdf_jupyter_bin" yaml:"nb2pdf_jupyter_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable" yaml:"temp_writable"`
}

// doctorChecks holds the lookups doctor depends on.
type doctorChecks struct {
	lookPath   func(string) (string, error)
	findChrome func() (string, bool)
	version    func(bin string) (string, error)
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
// Missing Jupyter is a warning; the native engine only needs Go.
func runDoctorCmd(args []string, env *Environment) int {
	format := ""
	for _, arg := range args {
		switch arg {
		case "--json":
			format = "json"
		case "--yaml":
			format = "yaml"
		}
	}

	result := runDoctor(doctorChecks{
		lookPath:   env.LookPath,
		findChrome: launcher.LookPath,
		version:    probeVersion,
	})

	switch format {
	case "json":
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	case "yaml":
		out, err := yaml.Marshal(result)
		if err != nil {
			fmt.Fprintln(env.Stderr, err)
			return ExitGeneral
		}
		fmt.Fprint(env.Stdout, string(out))
	default:
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(checks doctorChecks) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
			JupyterBin: os.Getenv(nb2pdf.JupyterBinEnv),
		},
	}

	checkJupyter(result, checks)
	checkChrome(result, checks)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkJupyter detects the jupyter binary used for execution.
func checkJupyter(result *doctorResult, checks doctorChecks) {
	bin := nb2pdf.JupyterBin()
	path, err := checks.lookPath(bin)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Jupyter not found (%s): notebooks are rendered with saved outputs", bin))
		return
	}

	result.Jupyter.Found = true
	result.Jupyter.Path = path
	if v, err := checks.version(path); err == nil {
		result.Jupyter.Version = v
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Jupyter version: %v", err))
	}
}

// checkChrome detects Chrome/Chromium installation. The browser is
// optional: only the chrome engine needs it.
func checkChrome(result *doctorResult, checks doctorChecks) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = checks.findChrome()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found: --engine chrome unavailable. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	if v, err := checks.version(chromePath); err == nil {
		result.Chrome.Version = v
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Chrome.Found && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used by the chrome engine
// and by notebook execution is writable.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "nb2pdf-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// probeVersion runs `bin --version` and returns its first output line.
func probeVersion(bin string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, bin, "--version").Output() // #nosec G204 -- detected binary
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line, nil
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "nb2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Jupyter")
	if r.Jupyter.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Jupyter.Path)
		if r.Jupyter.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Jupyter.Version)
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found (execution disabled)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found (native engine only)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
