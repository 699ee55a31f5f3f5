// Package executor implements tiered, fall-back execution of NixOS
// operations.
//
// Four tiers are known: the native rebuild tooling, the modern nix CLI,
// the legacy nix-env CLI, and a textual instructions tier that always
// works. The ResilientExecutor ranks them by capability score, gates
// mutating tiers behind confirmation, and retries a failed operation
// against the next capable tier in rank order.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/resilix/resilix/pkg/intent"
)

// TierID identifies one of the fixed execution tiers.
type TierID string

const (
	TierNativeAPI    TierID = "native_api"
	TierModernCLI    TierID = "modern_cli"
	TierLegacyCLI    TierID = "legacy_cli"
	TierInstructions TierID = "instructions"
)

// Valid reports whether the tier ID is a known value.
func (t TierID) Valid() bool {
	switch t {
	case TierNativeAPI, TierModernCLI, TierLegacyCLI, TierInstructions:
		return true
	default:
		return false
	}
}

// ParseTierID validates a user-supplied tier name at the boundary.
func ParseTierID(s string) (TierID, error) {
	id := TierID(s)
	if !id.Valid() {
		return "", fmt.Errorf("unknown tier %q (expected one of: native_api, modern_cli, legacy_cli, instructions)", s)
	}
	return id, nil
}

// Result is the outcome of one execution attempt. Failure is always
// represented here, never as a Go error crossing the executor boundary.
type Result struct {
	Success  bool          `json:"success"`
	Output   string        `json:"output"`
	Error    string        `json:"error,omitempty"`
	TierUsed TierID        `json:"tier_used"`
	Duration time.Duration `json:"duration"`

	// NeedsConfirmation marks a two-phase outcome: the operation was not
	// executed and is awaiting explicit user acceptance. Success is true
	// in that case because nothing has failed yet.
	NeedsConfirmation   bool   `json:"needs_confirmation"`
	ConfirmationMessage string `json:"confirmation_message,omitempty"`
}

// Tier is one strategy for executing an intent. The set of implementations
// is closed: NativeAPITier, ModernCLITier, LegacyCLITier, InstructionsTier.
type Tier interface {
	// Name is the human label shown in status reports.
	Name() string

	// ID is the tier's stable identifier.
	ID() TierID

	// Available reports whether this tier can run on the current host.
	Available() bool

	// CapabilityScore is the preference weight in [0,1]. Higher scores are
	// tried first. Unavailable tiers score 0.
	CapabilityScore() float64

	// Description is a one-line summary of what the tier offers, shown in
	// the status report.
	Description() string

	// CanHandle reports whether the tier knows how to execute the intent.
	CanHandle(in intent.Intent) bool

	// Execute performs the intent. With dryRun set, CLI tiers report the
	// command they would run without spawning it.
	Execute(ctx context.Context, in intent.Intent, dryRun bool) *Result

	// ConfirmationMessage describes the operation for the confirmation
	// gate.
	ConfirmationMessage(in intent.Intent) string
}

// failureResult builds a failed Result attributed to the given tier.
func failureResult(tier TierID, duration time.Duration, format string, args ...any) *Result {
	return &Result{
		Success:  false,
		TierUsed: tier,
		Duration: duration,
		Error:    fmt.Sprintf(format, args...),
	}
}

// defaultConfirmation phrases a generic confirmation prompt.
func defaultConfirmation(name string, in intent.Intent) string {
	if in.Target != "" {
		return fmt.Sprintf("Execute %q on %q using %s?", in.Action, in.Target, name)
	}
	return fmt.Sprintf("Execute %q using %s?", in.Action, name)
}
