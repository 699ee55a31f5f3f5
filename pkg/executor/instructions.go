package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/resilix/resilix/pkg/intent"
)

// InstructionsTier never executes anything. It answers every intent with
// step-by-step instructions the user can run themselves, which makes it
// the universal fallback: always available, always capable, never failing.
type InstructionsTier struct{}

// NewInstructionsTier creates the instructions tier.
func NewInstructionsTier() *InstructionsTier {
	return &InstructionsTier{}
}

func (t *InstructionsTier) Name() string { return "Instructions (Always Works)" }
func (t *InstructionsTier) ID() TierID   { return TierInstructions }

func (t *InstructionsTier) Available() bool { return true }

// CapabilityScore is deliberately below every executing tier so that
// instructions are never preferred over something that can actually run
// the operation.
func (t *InstructionsTier) CapabilityScore() float64 { return 0.3 }

func (t *InstructionsTier) Description() string {
	return "Clear instructions for you to execute manually"
}

func (t *InstructionsTier) CanHandle(in intent.Intent) bool { return true }

func (t *InstructionsTier) Execute(_ context.Context, in intent.Intent, _ bool) *Result {
	startTime := time.Now()
	return &Result{
		Success:  true,
		Output:   generateInstructions(in),
		TierUsed: TierInstructions,
		Duration: time.Since(startTime),
		// Instructions carry no risk, so no confirmation gate applies.
		NeedsConfirmation: false,
	}
}

func (t *InstructionsTier) ConfirmationMessage(in intent.Intent) string {
	return fmt.Sprintf("Show instructions for %q?", in.Action)
}

func generateInstructions(in intent.Intent) string {
	switch {
	case in.Action == "install" && in.Target != "":
		return fmt.Sprintf(`To install %[1]s, you can use one of these methods:

1. Declarative (recommended)
   Edit /etc/nixos/configuration.nix and add:
     environment.systemPackages = with pkgs; [ %[1]s ];
   Then run: sudo nixos-rebuild switch

2. User-level with Home Manager
   Edit ~/.config/home-manager/home.nix and add:
     home.packages = with pkgs; [ %[1]s ];
   Then run: home-manager switch

3. Imperative (quick)
   Run: nix-env -iA nixpkgs.%[1]s

4. Temporary shell
   Try it first: nix-shell -p %[1]s`, in.Target)

	case in.Action == "remove" && in.Target != "":
		return fmt.Sprintf(`To remove %[1]s:

1. If declared in /etc/nixos/configuration.nix, delete it from
   environment.systemPackages and run: sudo nixos-rebuild switch
2. If installed imperatively: nix-env -e %[1]s
3. With the modern CLI: nix profile remove %[1]s`, in.Target)

	case in.Action == "update":
		return `To update your system:

1. Update channel: sudo nix-channel --update
2. Rebuild system: sudo nixos-rebuild switch

For a safer approach:
- Test first: sudo nixos-rebuild test
- If good, apply: sudo nixos-rebuild switch`

	case in.Action == "rollback":
		return `To rollback your system:

1. List generations: sudo nix-env --list-generations --profile /nix/var/nix/profiles/system
2. Rollback to previous: sudo nixos-rebuild switch --rollback
3. Or boot a specific generation from the boot menu`

	case in.Action == "search":
		target := in.Target
		if target == "" {
			target = "<name>"
		}
		return fmt.Sprintf(`To search for packages:

1. Modern CLI: nix search nixpkgs %[1]s
2. Web: https://search.nixos.org/packages?query=%[1]s`, target)

	case in.Action == "list":
		return `To list installed packages:

1. Modern CLI: nix profile list
2. Legacy: nix-env -q
3. System packages: nixos-option environment.systemPackages`

	default:
		if in.Target != "" {
			return fmt.Sprintf("No runbook for %q %s yet. Try `man nix` or https://nixos.org/manual for guidance.", in.Action, in.Target)
		}
		return fmt.Sprintf("No runbook for %q yet. Try `man nix` or https://nixos.org/manual for guidance.", in.Action)
	}
}

var _ Tier = (*InstructionsTier)(nil)
