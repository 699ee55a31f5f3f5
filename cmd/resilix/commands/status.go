package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resilix/resilix/pkg/transports/local"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show execution tier availability",
		Long:  `Status lists every execution tier with its capability score and whether the host currently supports it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			runner := local.NewLocalRunner(cfg.Execution.CommandTimeout())
			caps, err := loadCapabilities(ctx, cfg, runner, nil, false)
			if err != nil {
				return err
			}

			exec := newExecutor(caps, runner, cfg, nil, true)

			if jsonOutput {
				data, err := json.MarshalIndent(exec.TierStatuses(), "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal tier statuses: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Print(exec.StatusReport())
			return nil
		},
	}
}
