package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/resilix/resilix/pkg/capability"
	"github.com/resilix/resilix/pkg/intent"
	"github.com/resilix/resilix/pkg/transports/local"
)

// ModernCLITier drives the modern `nix` CLI (profile subcommands). It is
// the preferred path for package-level operations.
type ModernCLITier struct {
	caps   *capability.Capabilities
	runner local.Runner
}

// NewModernCLITier creates the modern CLI tier.
func NewModernCLITier(caps *capability.Capabilities, runner local.Runner) *ModernCLITier {
	return &ModernCLITier{caps: caps, runner: runner}
}

func (t *ModernCLITier) Name() string { return "Nix Profile (Modern)" }
func (t *ModernCLITier) ID() TierID   { return TierModernCLI }

func (t *ModernCLITier) Available() bool {
	return t.caps.HasModernCLI
}

func (t *ModernCLITier) CapabilityScore() float64 {
	if t.Available() {
		return 0.8
	}
	return 0.0
}

func (t *ModernCLITier) Description() string {
	if t.Available() {
		return "Modern nix commands - reliable and current"
	}
	return "Nix profile commands not available"
}

func (t *ModernCLITier) CanHandle(in intent.Intent) bool {
	if !t.Available() {
		return false
	}
	switch in.Action {
	case "install", "remove", "list", "search":
		return true
	default:
		return false
	}
}

func (t *ModernCLITier) Execute(ctx context.Context, in intent.Intent, dryRun bool) *Result {
	argv, err := t.command(in)
	if err != nil {
		return failureResult(TierModernCLI, 0, "%s", err.Error())
	}
	return runCLI(ctx, t.runner, TierModernCLI, argv, dryRun)
}

func (t *ModernCLITier) command(in intent.Intent) ([]string, error) {
	switch in.Action {
	case "install":
		if in.Target == "" {
			return nil, fmt.Errorf("install requires a package name")
		}
		return []string{"nix", "profile", "install", "nixpkgs#" + in.Target}, nil
	case "remove":
		if in.Target == "" {
			return nil, fmt.Errorf("remove requires a package name")
		}
		return []string{"nix", "profile", "remove", in.Target}, nil
	case "list":
		return []string{"nix", "profile", "list"}, nil
	case "search":
		if in.Target == "" {
			return nil, fmt.Errorf("search requires a query")
		}
		return []string{"nix", "search", "nixpkgs", in.Target}, nil
	default:
		return nil, fmt.Errorf("action %q not supported by %s", in.Action, t.Name())
	}
}

func (t *ModernCLITier) ConfirmationMessage(in intent.Intent) string {
	if argv, err := t.command(in); err == nil {
		return fmt.Sprintf("This will run: %s. Continue?", strings.Join(argv, " "))
	}
	return defaultConfirmation(t.Name(), in)
}

var _ Tier = (*ModernCLITier)(nil)
