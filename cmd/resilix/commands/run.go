package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/resilix/resilix/pkg/executor"
	"github.com/resilix/resilix/pkg/intent"
	"github.com/resilix/resilix/pkg/stores"
	"github.com/resilix/resilix/pkg/telemetry"
	"github.com/resilix/resilix/pkg/transports/local"
)

// Sentinels bracketing machine-readable output so wrappers can extract
// the payload from a stream that may also carry log lines.
const (
	jsonStartMarker = "__JSON_START__"
	jsonEndMarker   = "__JSON_END__"
)

// ErrExecutionFailed signals a failed execution whose details were already
// printed. Callers map it to a non-zero exit status without re-reporting.
var ErrExecutionFailed = errors.New("execution failed")

// resultPayload is the wire shape of an execution result. Durations are
// emitted as float seconds for script consumers.
type resultPayload struct {
	Success             bool    `json:"success"`
	Output              string  `json:"output"`
	Error               *string `json:"error"`
	TierUsed            string  `json:"tier_used"`
	Duration            float64 `json:"duration"`
	NeedsConfirmation   bool    `json:"needs_confirmation"`
	ConfirmationMessage *string `json:"confirmation_message"`
}

func newResultPayload(res *executor.Result) resultPayload {
	p := resultPayload{
		Success:           res.Success,
		Output:            res.Output,
		TierUsed:          string(res.TierUsed),
		Duration:          res.Duration.Seconds(),
		NeedsConfirmation: res.NeedsConfirmation,
	}
	if res.Error != "" {
		p.Error = &res.Error
	}
	if res.ConfirmationMessage != "" {
		p.ConfirmationMessage = &res.ConfirmationMessage
	}
	return p
}

func newRunCommand() *cobra.Command {
	var (
		dryRun    bool
		tierName  string
		noConfirm bool
	)

	cmd := &cobra.Command{
		Use:   "run <command>...",
		Short: "Execute a command through the tier chain",
		Long: `Run parses a plain command like "install firefox" or "update" and
executes it through the highest-capability tier the host supports,
falling back to lower tiers on failure.`,
		Example: `  resilix run install firefox
  resilix run update --dry-run
  resilix run search vim --tier modern_cli
  resilix run remove htop --no-confirm --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), args, dryRun, tierName, noConfirm)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "describe what would run without executing")
	cmd.Flags().StringVar(&tierName, "tier", "", "force a specific tier (native_api, modern_cli, legacy_cli, instructions)")
	cmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "skip the confirmation prompt")

	return cmd
}

func runRun(ctx context.Context, args []string, dryRun bool, tierName string, noConfirm bool) error {
	var tierOverride executor.TierID
	if tierName != "" {
		id, err := executor.ParseTierID(tierName)
		if err != nil {
			return err
		}
		tierOverride = id
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Execution.PreferredTier != "" && tierOverride == "" {
		tierOverride = executor.TierID(cfg.Execution.PreferredTier)
	}

	tel, err := buildTelemetry(cfg, rootVersion)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Debug().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	runner := local.NewLocalRunner(cfg.Execution.CommandTimeout())
	caps, err := loadCapabilities(ctx, cfg, runner, tel, false)
	if err != nil {
		return err
	}

	store, err := openHistoryStore(ctx, cfg)
	if err != nil {
		// History is an audit trail, not a precondition for executing.
		log.Warn().Err(err).Msg("history store unavailable, continuing without it")
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	exec := newExecutor(caps, runner, cfg, tel, noConfirm)

	in := intent.Parse(strings.Join(args, " "))
	opts := executor.ExecOptions{DryRun: dryRun, TierOverride: tierOverride}

	ctx, span := tel.Tracer.StartExecuteSpan(ctx, in.Action, in.Target)
	result := exec.Execute(ctx, in, opts)

	// Interactive confirmation loop. JSON mode never prompts: the
	// needs_confirmation result is the caller's signal to re-invoke.
	if result.NeedsConfirmation && !jsonOutput {
		fmt.Println(result.ConfirmationMessage)
		fmt.Print("Continue? (y/N): ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer == "y" || answer == "yes" {
			exec.RequireConfirmation = false
			result = exec.Execute(ctx, in, opts)
		} else {
			fmt.Println("Cancelled")
			telemetry.RecordSuccess(span)
			span.End()
			return nil
		}
	}

	if result.Success {
		telemetry.RecordSuccess(span)
	} else {
		telemetry.RecordError(span, fmt.Errorf("%s", result.Error))
	}
	span.End()

	if store != nil && !result.NeedsConfirmation {
		record := &stores.Execution{
			ID:        uuid.New().String(),
			Action:    in.Action,
			Target:    in.Target,
			TierUsed:  string(result.TierUsed),
			Success:   result.Success,
			DryRun:    dryRun,
			Error:     result.Error,
			Duration:  result.Duration,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.RecordExecution(ctx, record); err != nil {
			log.Warn().Err(err).Msg("failed to record execution history")
		}
	}

	if jsonOutput {
		if err := printResultJSON(result); err != nil {
			return err
		}
	} else {
		printResultText(result)
	}

	if !result.Success {
		return ErrExecutionFailed
	}
	return nil
}

func printResultJSON(result *executor.Result) error {
	data, err := json.MarshalIndent(newResultPayload(result), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(jsonStartMarker)
	fmt.Println(string(data))
	fmt.Println(jsonEndMarker)
	return nil
}

func printResultText(result *executor.Result) {
	if result.Success {
		fmt.Printf("✓ done via %s (%.2fs)\n", result.TierUsed, result.Duration.Seconds())
	} else {
		fmt.Printf("✗ failed via %s: %s\n", result.TierUsed, result.Error)
	}
	if result.Output != "" {
		fmt.Println(result.Output)
	}
}
