package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/resilix/resilix/pkg/capability"
	"github.com/resilix/resilix/pkg/intent"
	"github.com/resilix/resilix/pkg/transports/local"
)

// LegacyCLITier drives nix-env, available on effectively every Nix install.
// It covers a strict subset of the modern tier's actions (no search).
type LegacyCLITier struct {
	caps   *capability.Capabilities
	runner local.Runner
}

// NewLegacyCLITier creates the legacy CLI tier.
func NewLegacyCLITier(caps *capability.Capabilities, runner local.Runner) *LegacyCLITier {
	return &LegacyCLITier{caps: caps, runner: runner}
}

func (t *LegacyCLITier) Name() string { return "Nix-env (Legacy)" }
func (t *LegacyCLITier) ID() TierID   { return TierLegacyCLI }

func (t *LegacyCLITier) Available() bool {
	return t.caps.HasLegacyCLI
}

func (t *LegacyCLITier) CapabilityScore() float64 {
	if t.Available() {
		return 0.6
	}
	return 0.0
}

func (t *LegacyCLITier) Description() string {
	if t.Available() {
		return "Legacy commands - universal compatibility"
	}
	return "Nix-env not available"
}

func (t *LegacyCLITier) CanHandle(in intent.Intent) bool {
	if !t.Available() {
		return false
	}
	switch in.Action {
	case "install", "remove", "list":
		return true
	default:
		return false
	}
}

func (t *LegacyCLITier) Execute(ctx context.Context, in intent.Intent, dryRun bool) *Result {
	argv, err := t.command(in)
	if err != nil {
		return failureResult(TierLegacyCLI, 0, "%s", err.Error())
	}
	return runCLI(ctx, t.runner, TierLegacyCLI, argv, dryRun)
}

func (t *LegacyCLITier) command(in intent.Intent) ([]string, error) {
	switch in.Action {
	case "install":
		if in.Target == "" {
			return nil, fmt.Errorf("install requires a package name")
		}
		return []string{"nix-env", "-iA", "nixpkgs." + in.Target}, nil
	case "remove":
		if in.Target == "" {
			return nil, fmt.Errorf("remove requires a package name")
		}
		return []string{"nix-env", "-e", in.Target}, nil
	case "list":
		return []string{"nix-env", "-q"}, nil
	default:
		return nil, fmt.Errorf("action %q not supported by %s", in.Action, t.Name())
	}
}

func (t *LegacyCLITier) ConfirmationMessage(in intent.Intent) string {
	if argv, err := t.command(in); err == nil {
		return fmt.Sprintf("This will run: %s. Continue?", strings.Join(argv, " "))
	}
	return defaultConfirmation(t.Name(), in)
}

var _ Tier = (*LegacyCLITier)(nil)
