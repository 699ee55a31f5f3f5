package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool

	// rootVersion is stamped from the build for telemetry.
	rootVersion string
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootVersion = version
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resilix",
		Short: "Resilix - resilient tiered executor for NixOS operations",
		Long: `Resilix turns plain commands like "install firefox" into NixOS
operations, executed through the best tooling the host actually has.

Execution tiers, tried in order of capability:
  1. native_api    - direct rebuild tooling (system operations)
  2. modern_cli    - nix profile / nix search
  3. legacy_cli    - nix-env
  4. instructions  - step-by-step text, always available

If a tier fails, the next capable one is tried automatically. Any tier
that can mutate the system asks for confirmation first.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		// Errors surface through main's logger; usage dumps on runtime
		// failures are just noise.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyLogging(cfg)
			return nil
		},
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newCapabilitiesCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}
