package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/resilix/resilix/pkg/capability"
	"github.com/resilix/resilix/pkg/intent"
	"github.com/resilix/resilix/pkg/transports/local"
)

// RebuildBinding is a handle onto the host's system rebuild tooling. The
// tier only needs to invoke whole-system operations on it; how the binding
// reaches the tooling is the locator's business.
type RebuildBinding interface {
	// Apply runs a system-level operation (switch, boot, test, rollback,
	// upgrade) and returns its output.
	Apply(ctx context.Context, op string) (string, error)

	// Describe reports what Apply would do for the operation, for dry
	// runs.
	Describe(op string) string
}

// BindingLocator finds a usable rebuild binding on the host, or reports
// that none exists. It runs once, at tier construction.
type BindingLocator func(caps *capability.Capabilities, runner local.Runner) (RebuildBinding, bool)

// DefaultBindingLocator returns a binding backed by the nixos-rebuild
// entry points when the capability snapshot says they are functional.
func DefaultBindingLocator(caps *capability.Capabilities, runner local.Runner) (RebuildBinding, bool) {
	if !caps.HasNativeAPI {
		return nil, false
	}
	if _, err := runner.LookPath("nixos-rebuild"); err != nil {
		// Snapshot may be stale (loaded from cache on a changed host).
		log.Debug().Err(err).Msg("nixos-rebuild vanished since detection")
		return nil, false
	}
	return &rebuildBinding{runner: runner}, true
}

// rebuildBinding shells out to nixos-rebuild for system operations.
type rebuildBinding struct {
	runner local.Runner
}

// opArgs maps a native operation onto nixos-rebuild arguments.
func opArgs(op string) ([]string, error) {
	switch op {
	case "switch", "boot", "test":
		return []string{op}, nil
	case "update":
		return []string{"switch", "--upgrade"}, nil
	case "rollback":
		return []string{"switch", "--rollback"}, nil
	default:
		return nil, fmt.Errorf("unsupported system operation %q", op)
	}
}

func (b *rebuildBinding) Apply(ctx context.Context, op string) (string, error) {
	args, err := opArgs(op)
	if err != nil {
		return "", err
	}

	result, err := b.runner.Run(ctx, "nixos-rebuild", args...)
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return result.Stdout, fmt.Errorf("nixos-rebuild %s failed: %s", strings.Join(args, " "), result.Stderr)
	}
	return result.Stdout, nil
}

func (b *rebuildBinding) Describe(op string) string {
	args, err := opArgs(op)
	if err != nil {
		return "Unsupported system operation: " + op
	}
	return "Would run: nixos-rebuild " + strings.Join(args, " ")
}

// NativeAPITier executes system-generation operations through the rebuild
// binding. It deliberately does not claim package-level install/remove:
// the binding's first-class operations are whole-system ones.
type NativeAPITier struct {
	caps    *capability.Capabilities
	binding RebuildBinding
}

// NewNativeAPITier creates the native tier, locating the binding once.
func NewNativeAPITier(caps *capability.Capabilities, runner local.Runner, locate BindingLocator) *NativeAPITier {
	if locate == nil {
		locate = DefaultBindingLocator
	}
	binding, ok := locate(caps, runner)
	if !ok {
		binding = nil
	}
	return &NativeAPITier{caps: caps, binding: binding}
}

func (t *NativeAPITier) Name() string { return "Native API (Fastest)" }
func (t *NativeAPITier) ID() TierID   { return TierNativeAPI }

func (t *NativeAPITier) Available() bool {
	return t.binding != nil && t.caps.HasNativeAPI
}

func (t *NativeAPITier) CapabilityScore() float64 {
	if t.Available() {
		return 1.0
	}
	return 0.0
}

func (t *NativeAPITier) Description() string {
	if t.Available() {
		return "Direct rebuild tooling access - fastest execution"
	}
	return "Native rebuild tooling not available on this system"
}

func (t *NativeAPITier) CanHandle(in intent.Intent) bool {
	if !t.Available() {
		return false
	}
	switch in.Action {
	case "update", "rollback", "switch", "boot", "test":
		return true
	default:
		return false
	}
}

func (t *NativeAPITier) Execute(ctx context.Context, in intent.Intent, dryRun bool) *Result {
	startTime := time.Now()

	if !t.Available() {
		return failureResult(TierNativeAPI, 0, "native rebuild tooling not available")
	}
	if !t.CanHandle(in) {
		return failureResult(TierNativeAPI, 0, "action %q not supported by %s", in.Action, t.Name())
	}

	if dryRun {
		return &Result{
			Success:  true,
			Output:   t.binding.Describe(in.Action),
			TierUsed: TierNativeAPI,
			Duration: time.Since(startTime),
		}
	}

	output, err := t.binding.Apply(ctx, in.Action)
	if err != nil {
		return &Result{
			Success:  false,
			Output:   output,
			Error:    err.Error(),
			TierUsed: TierNativeAPI,
			Duration: time.Since(startTime),
		}
	}

	return &Result{
		Success:  true,
		Output:   output,
		TierUsed: TierNativeAPI,
		Duration: time.Since(startTime),
	}
}

func (t *NativeAPITier) ConfirmationMessage(in intent.Intent) string {
	if args, err := opArgs(in.Action); err == nil {
		return fmt.Sprintf("This will run: nixos-rebuild %s. Continue?", strings.Join(args, " "))
	}
	return defaultConfirmation(t.Name(), in)
}

var _ Tier = (*NativeAPITier)(nil)
