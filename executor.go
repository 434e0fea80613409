package nb2pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-nb2pdf/internal/process"
)

// Executor runs a notebook and returns the executed notebook JSON.
type Executor interface {
	Execute(ctx context.Context, nb []byte, workDir string) ([]byte, error)
}

// Jupyter execution defaults.
const (
	DefaultKernel      = "python3"
	DefaultCellTimeout = 600 * time.Second
	defaultJupyterBin  = "jupyter"

	// JupyterBinEnv overrides the jupyter binary.
	JupyterBinEnv = "NB2PDF_JUPYTER_BIN"

	// waitDelay bounds how long output pipes are drained after the
	// process group has been killed.
	waitDelay = 5 * time.Second

	// maxStderrTail is how much of jupyter's stderr ends up in errors.
	maxStderrTail = 512
)

// JupyterExecutor executes notebooks with `jupyter nbconvert`.
// The zero value is not usable; create with NewJupyterExecutor.
type JupyterExecutor struct {
	Bin         string        // jupyter binary
	Kernel      string        // kernel spec name
	CellTimeout time.Duration // per-cell limit enforced by nbconvert
}

// Compile-time interface check.
var _ Executor = (*JupyterExecutor)(nil)

// NewJupyterExecutor creates an executor with the default kernel and
// per-cell timeout. The binary comes from NB2PDF_JUPYTER_BIN or PATH.
func NewJupyterExecutor() *JupyterExecutor {
	return &JupyterExecutor{
		Bin:         JupyterBin(),
		Kernel:      DefaultKernel,
		CellTimeout: DefaultCellTimeout,
	}
}

// JupyterBin returns the jupyter binary to run.
func JupyterBin() string {
	if bin := os.Getenv(JupyterBinEnv); bin != "" {
		return bin
	}
	return defaultJupyterBin
}

// args builds the nbconvert command line. Input and output go through
// stdin and stdout, so no files are written next to the notebook.
func (e *JupyterExecutor) args() []string {
	kernel := e.Kernel
	if kernel == "" {
		kernel = DefaultKernel
	}
	timeout := e.CellTimeout
	if timeout <= 0 {
		timeout = DefaultCellTimeout
	}
	return []string{
		"nbconvert",
		"--to", "notebook",
		"--execute",
		"--stdin",
		"--stdout",
		"--ExecutePreprocessor.timeout=" + strconv.Itoa(int(timeout.Seconds())),
		"--ExecutePreprocessor.kernel_name=" + kernel,
	}
}

// Execute runs nb in workDir. The subprocess and every kernel it starts
// share a process group that is killed when ctx is done.
func (e *JupyterExecutor) Execute(ctx context.Context, nb []byte, workDir string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	bin := e.Bin
	if bin == "" {
		bin = JupyterBin()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(bin, e.args()...) // #nosec G204 -- binary is user configuration
	cmd.Dir = workDir
	cmd.Stdin = bytes.NewReader(nb)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	process.SetProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting %s: %w", ErrExecution, bin, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return nil, executionFailure(err, stderr.String())
		}
	case <-ctx.Done():
		process.KillProcessGroup(cmd.Process.Pid)
		_ = cmd.Process.Kill()
		<-done
		return nil, fmt.Errorf("%w: %w", ErrExecution, ctx.Err())
	}

	return stdout.Bytes(), nil
}

// executionFailure classifies a failed nbconvert run from its stderr.
func executionFailure(err error, stderr string) error {
	tail := stderrTail(stderr)
	switch {
	case strings.Contains(stderr, "CellTimeoutError"), strings.Contains(stderr, "timed out while it was being executed"):
		return fmt.Errorf("%w: %w: %v%s", ErrExecution, ErrCellTimeout, err, tail)
	case strings.Contains(stderr, "NoSuchKernel"):
		return fmt.Errorf("%w: %w: %v%s", ErrExecution, ErrKernelNotFound, err, tail)
	default:
		return fmt.Errorf("%w: %v%s", ErrExecution, err, tail)
	}
}

// stderrTail returns the end of jupyter's stderr, where the failing
// cell is reported, formatted for appending to an error.
func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) > maxStderrTail {
		s = "..." + s[len(s)-maxStderrTail:]
	}
	return ": " + s
}
