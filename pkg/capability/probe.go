package capability

import (
	"context"
	"errors"

	"github.com/resilix/resilix/pkg/transports/local"
)

// ProbeStatus distinguishes "the tool is not there" from "the probe itself
// broke". The public Capabilities snapshot collapses both to false, but
// keeping them apart makes detection testable.
type ProbeStatus string

const (
	ProbePresent ProbeStatus = "present"
	ProbeAbsent  ProbeStatus = "absent"
	ProbeError   ProbeStatus = "error"
)

// ProbeResult is the outcome of a single capability probe.
type ProbeResult struct {
	Status ProbeStatus
	// Detail carries probe-specific data when present (a version string,
	// a device description).
	Detail string
	// Err is set only when Status is ProbeError.
	Err error
}

// Present reports whether the probed capability exists.
func (r ProbeResult) Present() bool {
	return r.Status == ProbePresent
}

// probeBinary checks that a binary resolves on PATH.
func probeBinary(runner local.Runner, bin string) ProbeResult {
	path, err := runner.LookPath(bin)
	if err != nil {
		return ProbeResult{Status: ProbeAbsent}
	}
	return ProbeResult{Status: ProbePresent, Detail: path}
}

// probeCommand runs a command and treats exit 0 as present. A spawn failure
// (missing binary) is absent; a timeout or other runner error is an error.
func probeCommand(ctx context.Context, runner local.Runner, name string, args ...string) ProbeResult {
	result, err := runner.Run(ctx, name, args...)
	if err != nil {
		var execErr *local.ExecError
		if errors.As(err, &execErr) && !execErr.IsTimeout {
			return ProbeResult{Status: ProbeAbsent}
		}
		return ProbeResult{Status: ProbeError, Err: err}
	}
	if result.ExitCode != 0 {
		return ProbeResult{Status: ProbeAbsent, Detail: result.Stderr}
	}
	return ProbeResult{Status: ProbePresent, Detail: result.Stdout}
}
