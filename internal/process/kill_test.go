package process

// Notes:
// - KillProcessGroup is only exercised with PIDs that cannot match a live
//   process. Group termination of a real subprocess tree is covered by the
//   executor integration tests.

import (
	"os/exec"
	"testing"
)

// ---------------------------------------------------------------------------
// TestKillProcessGroup - Invalid PID Handling
// ---------------------------------------------------------------------------

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	KillProcessGroup(999999999)
}

func TestKillProcessGroup_NonPositivePID(t *testing.T) {
	t.Parallel()

	// Must be a no-op: -0 would target the test's own process group.
	KillProcessGroup(0)
	KillProcessGroup(-1)
}

// ---------------------------------------------------------------------------
// TestSetProcessGroup - Command configuration
// ---------------------------------------------------------------------------

func TestSetProcessGroup(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("jupyter", "--version")
	SetProcessGroup(cmd)

	if cmd.SysProcAttr == nil {
		t.Fatal("SysProcAttr not set")
	}

	// Calling twice keeps the existing attributes.
	attr := cmd.SysProcAttr
	SetProcessGroup(cmd)
	if cmd.SysProcAttr != attr {
		t.Error("SetProcessGroup replaced existing SysProcAttr")
	}
}
