package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent executions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("execution history is disabled in configuration")
			}

			store, err := openHistoryStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			executions, err := store.ListExecutions(ctx, limit, 0)
			if err != nil {
				return err
			}

			if jsonOutput {
				data, err := json.MarshalIndent(executions, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal history: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			if len(executions) == 0 {
				fmt.Println("No executions recorded.")
				return nil
			}

			for _, exec := range executions {
				status := "ok"
				if !exec.Success {
					status = "failed"
				}
				line := fmt.Sprintf("%s  %-6s  %s", exec.CreatedAt.Local().Format("2006-01-02 15:04"), status, exec.Action)
				if exec.Target != "" {
					line += " " + exec.Target
				}
				line += fmt.Sprintf("  [%s]", exec.TierUsed)
				if exec.DryRun {
					line += " (dry-run)"
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries to show")

	return cmd
}
