package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/resilix/resilix/pkg/capability"
	"github.com/resilix/resilix/pkg/intent"
	"github.com/resilix/resilix/pkg/transports/local"
)

func TestModernTierCommands(t *testing.T) {
	tier := NewModernCLITier(fullCaps(), newFakeRunner())

	tests := []struct {
		in   intent.Intent
		want string
	}{
		{intent.Intent{Action: "install", Target: "firefox"}, "nix profile install nixpkgs#firefox"},
		{intent.Intent{Action: "remove", Target: "firefox"}, "nix profile remove firefox"},
		{intent.Intent{Action: "list"}, "nix profile list"},
		{intent.Intent{Action: "search", Target: "editor"}, "nix search nixpkgs editor"},
	}
	for _, tt := range tests {
		argv, err := tier.command(tt.in)
		if err != nil {
			t.Errorf("command(%v) error: %v", tt.in, err)
			continue
		}
		if got := strings.Join(argv, " "); got != tt.want {
			t.Errorf("command(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModernTierRequiresTarget(t *testing.T) {
	tier := NewModernCLITier(fullCaps(), newFakeRunner())

	for _, action := range []string{"install", "remove", "search"} {
		res := tier.Execute(context.Background(), intent.Intent{Action: action}, false)
		if res.Success {
			t.Errorf("%s without a target succeeded", action)
		}
	}
}

func TestModernTierDryRunSpawnsNothing(t *testing.T) {
	runner := newFakeRunner()
	tier := NewModernCLITier(fullCaps(), runner)

	res := tier.Execute(context.Background(), intent.Intent{Action: "install", Target: "firefox"}, true)

	if !res.Success {
		t.Fatalf("dry run failed: %s", res.Error)
	}
	if res.Output != "Would run: nix profile install nixpkgs#firefox" {
		t.Errorf("Output = %q", res.Output)
	}

	res = tier.Execute(context.Background(), intent.Intent{Action: "search", Target: "python"}, true)
	if !strings.Contains(res.Output, "nix search nixpkgs python") {
		t.Errorf("Output = %q", res.Output)
	}

	if runner.callCount() != 0 {
		t.Errorf("dry run spawned %d commands", runner.callCount())
	}
}

func TestModernTierNonZeroExitIsFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.results["nix profile install nixpkgs#ghost"] = &local.CommandResult{
		ExitCode: 1,
		Stderr:   "error: package 'ghost' not found",
	}
	tier := NewModernCLITier(fullCaps(), runner)

	res := tier.Execute(context.Background(), intent.Intent{Action: "install", Target: "ghost"}, false)

	if res.Success {
		t.Fatal("expected failure on non-zero exit")
	}
	if !strings.Contains(res.Error, "not found") {
		t.Errorf("Error = %q, want stderr content", res.Error)
	}
}

func TestModernTierExitWithoutStderr(t *testing.T) {
	runner := newFakeRunner()
	runner.results["nix profile list"] = &local.CommandResult{ExitCode: 2}
	tier := NewModernCLITier(fullCaps(), runner)

	res := tier.Execute(context.Background(), intent.Intent{Action: "list"}, false)

	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Error, "exited with status 2") {
		t.Errorf("Error = %q, want synthesized status message", res.Error)
	}
}

func TestModernTierSpawnErrorIsFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.errors["nix profile list"] = &local.ExecError{Op: "run", Cmd: "nix", Err: context.DeadlineExceeded, IsTimeout: true}
	tier := NewModernCLITier(fullCaps(), runner)

	res := tier.Execute(context.Background(), intent.Intent{Action: "list"}, false)

	if res.Success {
		t.Fatal("expected failure when the process cannot run")
	}
	if res.Error == "" {
		t.Error("expected an error message")
	}
}

func TestModernTierUnavailableWithoutCLI(t *testing.T) {
	caps := fullCaps()
	caps.HasModernCLI = false
	tier := NewModernCLITier(caps, newFakeRunner())

	if tier.Available() {
		t.Error("tier available without the modern CLI")
	}
	if tier.CapabilityScore() != 0 {
		t.Errorf("score = %v, want 0", tier.CapabilityScore())
	}
	if tier.CanHandle(intent.Intent{Action: "install", Target: "x"}) {
		t.Error("unavailable tier claims to handle intents")
	}
}

func TestLegacyTierCommands(t *testing.T) {
	tier := NewLegacyCLITier(fullCaps(), newFakeRunner())

	tests := []struct {
		in   intent.Intent
		want string
	}{
		{intent.Intent{Action: "install", Target: "htop"}, "nix-env -iA nixpkgs.htop"},
		{intent.Intent{Action: "remove", Target: "htop"}, "nix-env -e htop"},
		{intent.Intent{Action: "list"}, "nix-env -q"},
	}
	for _, tt := range tests {
		argv, err := tier.command(tt.in)
		if err != nil {
			t.Errorf("command(%v) error: %v", tt.in, err)
			continue
		}
		if got := strings.Join(argv, " "); got != tt.want {
			t.Errorf("command(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLegacyTierDoesNotSearch(t *testing.T) {
	tier := NewLegacyCLITier(fullCaps(), newFakeRunner())

	if tier.CanHandle(intent.Intent{Action: "search", Target: "vim"}) {
		t.Error("legacy tier claims search support")
	}
}

func TestNativeTierOperations(t *testing.T) {
	runner := newFakeRunner()
	runner.binaries["nixos-rebuild"] = true
	tier := NewNativeAPITier(fullCaps(), runner, nil)

	if !tier.Available() {
		t.Fatal("native tier unavailable despite tooling")
	}
	if tier.CapabilityScore() != 1.0 {
		t.Errorf("score = %v, want 1.0", tier.CapabilityScore())
	}

	for _, action := range []string{"update", "rollback", "switch", "boot", "test"} {
		if !tier.CanHandle(intent.Intent{Action: action}) {
			t.Errorf("native tier rejects %q", action)
		}
	}
	if tier.CanHandle(intent.Intent{Action: "install", Target: "htop"}) {
		t.Error("native tier claims package installs")
	}
}

func TestNativeTierDryRunDescribes(t *testing.T) {
	runner := newFakeRunner()
	runner.binaries["nixos-rebuild"] = true
	tier := NewNativeAPITier(fullCaps(), runner, nil)

	res := tier.Execute(context.Background(), intent.Intent{Action: "update"}, true)

	if !res.Success {
		t.Fatalf("dry run failed: %s", res.Error)
	}
	if res.Output != "Would run: nixos-rebuild switch --upgrade" {
		t.Errorf("Output = %q", res.Output)
	}
	if runner.callCount() != 0 {
		t.Errorf("dry run spawned %d commands", runner.callCount())
	}
}

func TestNativeTierRollbackArgs(t *testing.T) {
	runner := newFakeRunner()
	runner.binaries["nixos-rebuild"] = true
	runner.results["nixos-rebuild switch --rollback"] = &local.CommandResult{Stdout: "activating previous generation"}
	tier := NewNativeAPITier(fullCaps(), runner, nil)

	res := tier.Execute(context.Background(), intent.Intent{Action: "rollback"}, false)

	if !res.Success {
		t.Fatalf("rollback failed: %s", res.Error)
	}
	if !strings.Contains(res.Output, "previous generation") {
		t.Errorf("Output = %q", res.Output)
	}
}

func TestNativeTierMissingBinaryMeansUnavailable(t *testing.T) {
	// Capability snapshot says yes but the binary is gone, as after a
	// stale cache load.
	runner := newFakeRunner()
	tier := NewNativeAPITier(fullCaps(), runner, nil)

	if tier.Available() {
		t.Error("tier available without nixos-rebuild on PATH")
	}
}

func TestNativeTierCustomLocator(t *testing.T) {
	located := false
	locator := func(caps *capability.Capabilities, runner local.Runner) (RebuildBinding, bool) {
		located = true
		return nil, false
	}

	tier := NewNativeAPITier(fullCaps(), newFakeRunner(), locator)

	if !located {
		t.Error("custom locator was not consulted")
	}
	if tier.Available() {
		t.Error("tier available after locator declined")
	}
}

func TestInstructionsTierAlwaysSucceeds(t *testing.T) {
	tier := NewInstructionsTier()

	if !tier.Available() {
		t.Fatal("instructions tier must always be available")
	}

	actions := []intent.Intent{
		{Action: "install", Target: "firefox"},
		{Action: "remove", Target: "firefox"},
		{Action: "update"},
		{Action: "rollback"},
		{Action: "search", Target: "vim"},
		{Action: "list"},
		{Action: "unknown"},
	}
	for _, in := range actions {
		if !tier.CanHandle(in) {
			t.Errorf("instructions tier rejects %q", in.Action)
		}
		res := tier.Execute(context.Background(), in, false)
		if !res.Success {
			t.Errorf("Execute(%q) failed: %s", in.Action, res.Error)
		}
		if res.Output == "" {
			t.Errorf("Execute(%q) produced no instructions", in.Action)
		}
		if res.NeedsConfirmation {
			t.Errorf("Execute(%q) asked for confirmation", in.Action)
		}
	}
}

func TestInstructionsMentionTarget(t *testing.T) {
	tier := NewInstructionsTier()

	res := tier.Execute(context.Background(), intent.Intent{Action: "install", Target: "ripgrep"}, false)

	if !strings.Contains(res.Output, "ripgrep") {
		t.Errorf("instructions omit the target: %q", res.Output)
	}
}

func TestConfirmationMessagesNameTheCommand(t *testing.T) {
	caps := fullCaps()
	runner := newFakeRunner()
	runner.binaries["nixos-rebuild"] = true

	modern := NewModernCLITier(caps, runner)
	msg := modern.ConfirmationMessage(intent.Intent{Action: "install", Target: "firefox"})
	if !strings.Contains(msg, "nix profile install nixpkgs#firefox") {
		t.Errorf("modern confirmation = %q", msg)
	}

	native := NewNativeAPITier(caps, runner, nil)
	msg = native.ConfirmationMessage(intent.Intent{Action: "update"})
	if !strings.Contains(msg, "nixos-rebuild switch --upgrade") {
		t.Errorf("native confirmation = %q", msg)
	}
}
