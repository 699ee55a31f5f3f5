package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/resilix/resilix/pkg/capability"
	"github.com/resilix/resilix/pkg/intent"
	"github.com/resilix/resilix/pkg/telemetry"
	"github.com/resilix/resilix/pkg/transports/local"
)

// Options configures a ResilientExecutor.
type Options struct {
	// RequireConfirmation gates execution of any tier that can mutate the
	// system behind an explicit accept.
	RequireConfirmation bool

	// BindingLocator overrides how the native tier finds its rebuild
	// binding. Nil selects the default locator.
	BindingLocator BindingLocator

	// Metrics receives execution counters. Nil disables recording.
	Metrics *telemetry.Metrics
}

// ResilientExecutor owns the ranked tier list and drives selection,
// confirmation, execution, and fallback.
//
// It is not safe for concurrent use: execution is deliberately sequential
// so that two tiers never attempt the same mutation at once.
type ResilientExecutor struct {
	caps  *capability.Capabilities
	tiers []Tier

	// RequireConfirmation may be toggled between calls by the
	// single-threaded caller (the CLI does this after a y/N accept).
	RequireConfirmation bool

	metrics *telemetry.Metrics
}

// ExecOptions are per-call execution options.
type ExecOptions struct {
	// DryRun asks the selected tier to describe rather than perform.
	DryRun bool

	// TierOverride forces a specific tier. Empty means ranked selection.
	// Callers must validate the value with ParseTierID first.
	TierOverride TierID
}

// New builds an executor over the fixed tier set, ranked by capability
// score. The Capabilities snapshot is shared read-only with every tier.
func New(caps *capability.Capabilities, runner local.Runner, opts Options) *ResilientExecutor {
	tiers := []Tier{
		NewNativeAPITier(caps, runner, opts.BindingLocator),
		NewModernCLITier(caps, runner),
		NewLegacyCLITier(caps, runner),
		NewInstructionsTier(),
	}

	// Rank once. Stable sort keeps declaration order for equal scores.
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].CapabilityScore() > tiers[j].CapabilityScore()
	})

	e := &ResilientExecutor{
		caps:                caps,
		tiers:               tiers,
		RequireConfirmation: opts.RequireConfirmation,
		metrics:             opts.Metrics,
	}

	for _, tier := range tiers {
		log.Debug().
			Str("tier", string(tier.ID())).
			Bool("available", tier.Available()).
			Float64("score", tier.CapabilityScore()).
			Msg("tier initialized")
		if e.metrics != nil {
			e.metrics.SetTierAvailable(string(tier.ID()), tier.Available())
		}
	}

	return e
}

// Execute runs the intent through the tier machinery. It never returns a
// Go error: every failure mode is represented in the Result.
func (e *ResilientExecutor) Execute(ctx context.Context, in intent.Intent, opts ExecOptions) *Result {
	var tier Tier
	if opts.TierOverride != "" {
		tier = e.tierByID(opts.TierOverride)
		if tier == nil || !tier.Available() {
			// Nothing ran, so the synthetic result is attributed to the
			// instructions tier, the one tier that always exists.
			return failureResult(TierInstructions, 0, "requested tier %s not available", opts.TierOverride)
		}
	} else {
		tier = e.selectBestTier(in)
	}

	if tier == nil {
		return failureResult(TierInstructions, 0, "no execution tier available")
	}

	log.Debug().
		Str("tier", string(tier.ID())).
		Str("action", in.Action).
		Str("target", in.Target).
		Msg("tier selected")

	// Confirmation gate: any tier that can actually touch the system must
	// be accepted first. Instructions carry no risk and bypass the gate.
	if e.RequireConfirmation && tier.ID() != TierInstructions {
		if e.metrics != nil {
			e.metrics.RecordConfirmationRequested(string(tier.ID()))
		}
		return &Result{
			Success:             true,
			TierUsed:            tier.ID(),
			NeedsConfirmation:   true,
			ConfirmationMessage: tier.ConfirmationMessage(in),
		}
	}

	result := tier.Execute(ctx, in, opts.DryRun)
	if e.metrics != nil {
		e.metrics.RecordExecution(string(tier.ID()), result.Success, result.Duration)
	}

	// Fallback: retry against lower-ranked capable tiers, without
	// re-prompting for confirmation.
	if !result.Success && tier.ID() != TierInstructions {
		log.Warn().
			Str("tier", string(tier.ID())).
			Str("error", result.Error).
			Msg("tier failed, trying fallback")
		result = e.fallback(ctx, in, opts.DryRun, tier, result)
	}

	return result
}

// fallback walks the tiers ranked below the failed one and returns the
// first success, or the last failure if nothing below succeeds.
func (e *ResilientExecutor) fallback(ctx context.Context, in intent.Intent, dryRun bool, failed Tier, lastResult *Result) *Result {
	startIdx := -1
	for i, tier := range e.tiers {
		if tier == failed {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return lastResult
	}

	for _, tier := range e.tiers[startIdx+1:] {
		if !tier.Available() || !tier.CanHandle(in) {
			continue
		}

		log.Info().
			Str("from_tier", string(failed.ID())).
			Str("to_tier", string(tier.ID())).
			Msg("falling back")
		if e.metrics != nil {
			e.metrics.RecordFallback(string(failed.ID()), string(tier.ID()))
		}

		lastResult = tier.Execute(ctx, in, dryRun)
		if e.metrics != nil {
			e.metrics.RecordExecution(string(tier.ID()), lastResult.Success, lastResult.Duration)
		}
		if lastResult.Success {
			break
		}
	}

	return lastResult
}

// selectBestTier returns the highest-ranked tier that is available and can
// handle the intent. The instructions tier matches everything, so under
// normal construction this never returns nil; an empty tier list is the
// only case with no answer.
func (e *ResilientExecutor) selectBestTier(in intent.Intent) Tier {
	for _, tier := range e.tiers {
		if tier.Available() && tier.CanHandle(in) {
			return tier
		}
	}
	if len(e.tiers) == 0 {
		return nil
	}
	return e.tiers[len(e.tiers)-1]
}

// tierByID finds a tier by its identifier.
func (e *ResilientExecutor) tierByID(id TierID) Tier {
	for _, tier := range e.tiers {
		if tier.ID() == id {
			return tier
		}
	}
	return nil
}

// TierStatus describes one tier for diagnostics.
type TierStatus struct {
	Name        string  `json:"name"`
	ID          TierID  `json:"id"`
	Available   bool    `json:"available"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// TierStatuses reports every tier in ranked order.
func (e *ResilientExecutor) TierStatuses() []TierStatus {
	statuses := make([]TierStatus, 0, len(e.tiers))
	for _, tier := range e.tiers {
		statuses = append(statuses, TierStatus{
			Name:        tier.Name(),
			ID:          tier.ID(),
			Available:   tier.Available(),
			Score:       tier.CapabilityScore(),
			Description: tier.Description(),
		})
	}
	return statuses
}

// StatusReport renders a human-readable health view of all tiers.
func (e *ResilientExecutor) StatusReport() string {
	var b strings.Builder
	b.WriteString("Resilient Executor status:\n\n")
	for _, s := range e.TierStatuses() {
		marker := "[--]"
		if s.Available {
			marker = "[ok]"
		}
		fmt.Fprintf(&b, "%s %s (score: %.1f)\n", marker, s.Name, s.Score)
		fmt.Fprintf(&b, "     %s\n\n", s.Description)
	}
	return b.String()
}
