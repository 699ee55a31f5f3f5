// Package local provides command execution on the local host.
//
// It is the only place in resilix that spawns external processes. Every
// invocation runs under a timeout so a hung package-manager process can
// never block an interactive session indefinitely.
package local

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCommandTimeout bounds a single external command invocation.
const DefaultCommandTimeout = 60 * time.Second

// CommandResult holds the outcome of one command invocation.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes commands and resolves binaries on a host.
// The production implementation shells out; tests substitute fakes.
type Runner interface {
	// LookPath reports the absolute path of a binary, or an error if it
	// cannot be found on PATH.
	LookPath(bin string) (string, error)

	// Run executes a command and captures its output. A non-zero exit
	// status is not an error: it is reported via CommandResult.ExitCode.
	// Run returns an error only when the process could not be started or
	// was cut off by the timeout.
	Run(ctx context.Context, name string, args ...string) (*CommandResult, error)
}

// LocalRunner runs commands on the local host via os/exec.
type LocalRunner struct {
	timeout time.Duration
}

// NewLocalRunner creates a runner with the given per-command timeout.
// A zero or negative timeout falls back to DefaultCommandTimeout.
func NewLocalRunner(timeout time.Duration) *LocalRunner {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &LocalRunner{timeout: timeout}
}

// LookPath resolves a binary on PATH.
func (r *LocalRunner) LookPath(bin string) (string, error) {
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", &ExecError{Op: "lookpath", Cmd: bin, Err: err}
	}
	return path, nil
}

// Run executes the command, enforcing the runner's timeout.
func (r *LocalRunner) Run(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	startTime := time.Now()

	log.Debug().
		Str("command", name).
		Strs("args", args).
		Dur("timeout", r.timeout).
		Msg("executing command")

	cmd := exec.CommandContext(ctx, name, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	runErr := cmd.Run()
	duration := time.Since(startTime)

	result := &CommandResult{
		Stdout:   strings.TrimSpace(stdoutBuf.String()),
		Stderr:   strings.TrimSpace(stderrBuf.String()),
		Duration: duration,
	}

	if runErr != nil {
		// Timeout takes precedence: exec reports a killed process as an
		// ExitError, but the context tells the real story.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, &ExecError{
				Op:        "run",
				Cmd:       name,
				Err:       ctxErr,
				IsTimeout: errors.Is(ctxErr, context.DeadlineExceeded),
			}
		}

		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			log.Debug().
				Str("command", name).
				Int("exit_code", result.ExitCode).
				Dur("duration", duration).
				Msg("command exited non-zero")
			return result, nil
		}

		return result, &ExecError{Op: "run", Cmd: name, Err: runErr}
	}

	log.Debug().
		Str("command", name).
		Int("stdout_len", len(result.Stdout)).
		Dur("duration", duration).
		Msg("command completed")

	return result, nil
}
