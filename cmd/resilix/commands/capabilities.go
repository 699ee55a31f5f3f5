package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resilix/resilix/pkg/capability"
	"github.com/resilix/resilix/pkg/transports/local"
)

func newCapabilitiesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "Inspect detected host capabilities",
	}

	cmd.AddCommand(newCapabilitiesShowCommand())
	cmd.AddCommand(newCapabilitiesDetectCommand())

	return cmd
}

func newCapabilitiesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the capability snapshot (cached if fresh)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCapabilities(cmd.Context(), false)
		},
	}
}

func newCapabilitiesDetectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Re-probe the host and refresh the capability cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCapabilities(cmd.Context(), true)
		},
	}
}

func showCapabilities(ctx context.Context, forceDetect bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runner := local.NewLocalRunner(cfg.Execution.CommandTimeout())
	caps, err := loadCapabilities(ctx, cfg, runner, nil, forceDetect)
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := json.MarshalIndent(caps, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal capabilities: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printCapabilities(caps)
	return nil
}

func printCapabilities(caps *capability.Capabilities) {
	fmt.Println("System Capabilities")
	fmt.Println("===================")
	fmt.Printf("OS:              %s", caps.OSType)
	if caps.NixOSVersion != "" {
		fmt.Printf(" (%s)", caps.NixOSVersion)
	}
	fmt.Println()
	fmt.Printf("CPU cores:       %d\n", caps.CPUCores)
	fmt.Printf("RAM:             %.1f GB\n", caps.RAMGB)
	fmt.Printf("GPU:             %s\n", yesNoDetail(caps.HasGPU, caps.GPUInfo))
	fmt.Println()
	fmt.Printf("Native rebuild:  %s\n", yesNo(caps.HasNativeAPI))
	fmt.Printf("Modern nix CLI:  %s\n", yesNo(caps.HasModernCLI))
	fmt.Printf("Legacy nix-env:  %s\n", yesNo(caps.HasLegacyCLI))
	fmt.Println()
	fmt.Printf("Piper TTS:       %s\n", yesNo(caps.HasPiper))
	fmt.Printf("espeak:          %s\n", yesNo(caps.HasEspeak))
	fmt.Printf("Ollama:          %s\n", yesNo(caps.HasOllama))
	fmt.Println()
	fmt.Printf("Terminal color:  %s\n", yesNo(caps.TerminalSupportsColor))
	fmt.Printf("Unicode:         %s\n", yesNo(caps.TerminalSupportsUnicode))
	fmt.Printf("Internet:        %s\n", yesNo(caps.InternetAvailable))
	fmt.Println()
	fmt.Printf("Overall rating:  %s\n", caps.OverallRating())
	fmt.Printf("Detected at:     %s\n", caps.DetectedAt.Format("2006-01-02 15:04:05 MST"))
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func yesNoDetail(v bool, detail string) string {
	if !v {
		return "no"
	}
	if detail == "" {
		return "yes"
	}
	return "yes (" + detail + ")"
}
