package executor

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/resilix/resilix/pkg/transports/local"
)

// runCLI executes a command line on behalf of a CLI-backed tier, mapping
// process outcomes onto the Result contract shared by both nix CLIs.
func runCLI(ctx context.Context, runner local.Runner, tier TierID, argv []string, dryRun bool) *Result {
	startTime := time.Now()
	command := strings.Join(argv, " ")

	if dryRun {
		return &Result{
			Success:  true,
			Output:   "Would run: " + command,
			TierUsed: tier,
			Duration: time.Since(startTime),
		}
	}

	log.Info().
		Str("tier", string(tier)).
		Str("command", command).
		Msg("executing")

	result, err := runner.Run(ctx, argv[0], argv[1:]...)
	if err != nil {
		return failureResult(tier, time.Since(startTime), "%s", err.Error())
	}

	if result.ExitCode != 0 {
		errMsg := result.Stderr
		if errMsg == "" {
			errMsg = command + " exited with status " + strconv.Itoa(result.ExitCode)
		}
		return &Result{
			Success:  false,
			Output:   result.Stdout,
			Error:    errMsg,
			TierUsed: tier,
			Duration: time.Since(startTime),
		}
	}

	return &Result{
		Success:  true,
		Output:   result.Stdout,
		TierUsed: tier,
		Duration: time.Since(startTime),
	}
}
