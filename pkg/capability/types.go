// Package capability detects what the host can do.
//
// Detection runs once at startup and produces an immutable Capabilities
// snapshot. Individual probes may fail; the snapshot cannot. A failed or
// inconclusive probe is recorded as the capability being absent.
package capability

import "time"

// Capabilities is a single snapshot of what the host can do.
// It is never mutated after construction; re-detecting means building a
// new snapshot.
type Capabilities struct {
	// System info
	OSType       string `json:"os_type"`
	NixOSVersion string `json:"nixos_version,omitempty"`

	// Hardware
	CPUCores int     `json:"cpu_cores"`
	RAMGB    float64 `json:"ram_gb"`
	HasGPU   bool    `json:"has_gpu"`
	GPUInfo  string  `json:"gpu_info,omitempty"`

	// NixOS tooling. These three flags drive execution tier availability.
	HasNativeAPI bool `json:"has_native_api"`
	HasModernCLI bool `json:"has_modern_cli"`
	HasLegacyCLI bool `json:"has_legacy_cli"`

	// Voice engines
	HasPiper  bool `json:"has_piper"`
	HasEspeak bool `json:"has_espeak"`

	// LLM
	HasOllama bool `json:"has_ollama"`

	// Terminal
	TerminalSupportsColor   bool `json:"terminal_supports_color"`
	TerminalSupportsUnicode bool `json:"terminal_supports_unicode"`

	// Network
	InternetAvailable bool `json:"internet_available"`

	DetectedAt time.Time `json:"detected_at"`
}

// Rating buckets the snapshot into an overall system tier for display.
type Rating string

const (
	RatingPremium  Rating = "Premium"
	RatingStandard Rating = "Standard"
	RatingBasic    Rating = "Basic"
	RatingMinimal  Rating = "Minimal"
)

// OverallRating summarizes how much of the optional stack is present.
func (c *Capabilities) OverallRating() Rating {
	switch {
	case c.HasOllama && c.HasPiper:
		return RatingPremium
	case c.HasOllama || c.HasPiper:
		return RatingStandard
	case c.HasEspeak:
		return RatingBasic
	default:
		return RatingMinimal
	}
}
