package local

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests shell out via sh")
	}
}

func TestRunCapturesOutput(t *testing.T) {
	skipWithoutShell(t)
	runner := NewLocalRunner(0)

	result, err := runner.Run(context.Background(), "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if result.Stdout != "out" {
		t.Errorf("Stdout = %q", result.Stdout)
	}
	if result.Stderr != "err" {
		t.Errorf("Stderr = %q", result.Stderr)
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	skipWithoutShell(t)
	runner := NewLocalRunner(0)

	result, err := runner.Run(context.Background(), "sh", "-c", "exit 3")
	if err != nil {
		t.Fatalf("Run returned error for a non-zero exit: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestRunMissingBinary(t *testing.T) {
	runner := NewLocalRunner(0)

	_, err := runner.Run(context.Background(), "definitely-not-a-real-binary-xyz")
	if err == nil {
		t.Fatal("expected an error for a missing binary")
	}

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("error type = %T, want *ExecError", err)
	}
	if execErr.IsTimeout {
		t.Error("spawn failure flagged as timeout")
	}
}

func TestRunTimeout(t *testing.T) {
	skipWithoutShell(t)
	runner := NewLocalRunner(50 * time.Millisecond)

	_, err := runner.Run(context.Background(), "sleep", "5")
	if err == nil {
		t.Fatal("expected a timeout error")
	}

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("error type = %T, want *ExecError", err)
	}
	if !execErr.IsTimeout {
		t.Errorf("timeout not flagged: %v", execErr)
	}
}

func TestLookPath(t *testing.T) {
	skipWithoutShell(t)
	runner := NewLocalRunner(0)

	if _, err := runner.LookPath("sh"); err != nil {
		t.Errorf("LookPath(sh) failed: %v", err)
	}
	if _, err := runner.LookPath("definitely-not-a-real-binary-xyz"); err == nil {
		t.Error("LookPath resolved a missing binary")
	}
}

func TestDefaultTimeoutFallback(t *testing.T) {
	if got := NewLocalRunner(0).timeout; got != DefaultCommandTimeout {
		t.Errorf("timeout = %v, want %v", got, DefaultCommandTimeout)
	}
	if got := NewLocalRunner(-time.Second).timeout; got != DefaultCommandTimeout {
		t.Errorf("timeout = %v, want %v", got, DefaultCommandTimeout)
	}
}
