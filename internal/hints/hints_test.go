package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel() because they:
//   1. Use t.Setenv() which modifies process environment
//   2. Modify the package-level IsInContainer variable
// These are acceptable gaps: we test observable behavior through environment manipulation.

import (
	"strings"
	"testing"
)

func TestForBrowserConnect_InCI(t *testing.T) {
	// Save and restore IsInContainer (not parallel-safe, see package notes)
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "true")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserConnect()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Error("expected ROD_NO_SANDBOX suggestion in CI")
	}
	if !strings.Contains(hint, "ROD_BROWSER_BIN") {
		t.Error("expected ROD_BROWSER_BIN suggestion")
	}
}

func TestForBrowserConnect_InDocker(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("CI", "")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserConnect()

	if !strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Error("expected ROD_NO_SANDBOX suggestion in Docker")
	}
}

func TestForBrowserConnect_SandboxAlreadySet(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("CI", "")
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserConnect()

	if strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Error("should not suggest ROD_NO_SANDBOX when already set")
	}
}

func TestForBrowserConnect_BrowserBinAlreadySet(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chrome")

	hint := ForBrowserConnect()

	if strings.Contains(hint, "ROD_BROWSER_BIN") {
		t.Error("should not suggest ROD_BROWSER_BIN when already set")
	}
}

func TestForBrowserConnect_NoHintsNeeded(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chrome")

	hint := ForBrowserConnect()

	// Should have no sandbox hint (not in CI/Docker) but no browser hint
	if strings.Contains(hint, "ROD_BROWSER_BIN") {
		t.Error("should not suggest ROD_BROWSER_BIN when set")
	}
}

func TestForBrowserConnect_AllConfigured(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true } // In Docker

	t.Setenv("CI", "true")
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chrome")

	hint := ForBrowserConnect()

	// Both env vars set, should return empty hint
	if hint != "" {
		t.Errorf("expected empty hint when all configured, got %q", hint)
	}
}

func TestForTimeout(t *testing.T) {
	hint := ForTimeout()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "--timeout") {
		t.Error("expected --timeout flag mention")
	}
}

func TestForConfigNotFound(t *testing.T) {
	tests := []struct {
		name     string
		paths    []string
		wantHint bool
		contains string
	}{
		{
			name:     "empty paths",
			paths:    []string{},
			wantHint: true,
			contains: "--config",
		},
		{
			name:     "with paths",
			paths:    []string{"./foo.yaml", "~/.config/go-nb2pdf/foo.yaml"},
			wantHint: true,
			contains: "go-nb2pdf/foo.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := ForConfigNotFound(tt.paths)

			if tt.wantHint && !strings.Contains(hint, "hint:") {
				t.Error("expected hint prefix")
			}
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestForOutputDirectory(t *testing.T) {
	hint := ForOutputDirectory()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "parent directory") {
		t.Error("expected parent directory mention")
	}
}

func TestForJupyterNotFound(t *testing.T) {
	t.Run("binary override unset", func(t *testing.T) {
		t.Setenv("NB2PDF_JUPYTER_BIN", "")

		hint := ForJupyterNotFound()
		for _, want := range []string{"hint:", "nbconvert", "NB2PDF_JUPYTER_BIN", "--no-exec"} {
			if !strings.Contains(hint, want) {
				t.Errorf("expected hint to contain %q, got %q", want, hint)
			}
		}
	})

	t.Run("binary override set", func(t *testing.T) {
		t.Setenv("NB2PDF_JUPYTER_BIN", "/opt/conda/bin/jupyter")

		if hint := ForJupyterNotFound(); strings.Contains(hint, "NB2PDF_JUPYTER_BIN") {
			t.Errorf("should not suggest NB2PDF_JUPYTER_BIN when set, got %q", hint)
		}
	})
}

func TestForExecutionTimeout(t *testing.T) {
	if hint := ForExecutionTimeout(); !strings.Contains(hint, "--exec-timeout") {
		t.Errorf("expected --exec-timeout mention, got %q", hint)
	}
}

func TestForKernelNotFound(t *testing.T) {
	if hint := ForKernelNotFound(); !strings.Contains(hint, "--kernel") {
		t.Errorf("expected --kernel mention, got %q", hint)
	}
}

func TestForExecutionFailure(t *testing.T) {
	hint := ForExecutionFailure()
	if strings.Contains(hint, "--exec-timeout") {
		t.Errorf("generic failure hint should not blame the timeout, got %q", hint)
	}
	if !strings.Contains(hint, "--no-exec") {
		t.Errorf("expected --no-exec mention, got %q", hint)
	}
}

func TestFormat_Consistency(t *testing.T) {
	// All hints should start with newline, spaces, and "hint:"
	hints := []string{
		ForTimeout(),
		ForOutputDirectory(),
		ForExecutionTimeout(),
		ForKernelNotFound(),
		ForExecutionFailure(),
		ForInvalidNotebook(),
	}

	for _, h := range hints {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
