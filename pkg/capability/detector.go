package capability

import (
	"context"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/resilix/resilix/pkg/transports/local"
)

// Detector probes the host and assembles a Capabilities snapshot.
type Detector struct {
	runner local.Runner

	// Seams for tests. Production values are set by NewDetector.
	fileExists func(path string) bool
	readFile   func(path string) ([]byte, error)
	getenv     func(key string) string
	numCPU     func() int
	dial       func(network, address string, timeout time.Duration) error
}

// NewDetector creates a detector that probes via the given runner.
func NewDetector(runner local.Runner) *Detector {
	return &Detector{
		runner: runner,
		fileExists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
		readFile: os.ReadFile,
		getenv:   os.Getenv,
		numCPU:   runtime.NumCPU,
		dial: func(network, address string, timeout time.Duration) error {
			conn, err := net.DialTimeout(network, address, timeout)
			if err != nil {
				return err
			}
			return conn.Close()
		},
	}
}

// DetectAll runs every probe family and returns the snapshot. It cannot
// fail: a broken probe is logged and recorded as the capability being
// absent.
func (d *Detector) DetectAll(ctx context.Context) *Capabilities {
	startTime := time.Now()

	log.Info().Msg("Detecting system capabilities")

	caps := &Capabilities{DetectedAt: startTime}

	d.detectSystemInfo(ctx, caps)
	d.detectHardware(ctx, caps)
	d.detectNixTools(ctx, caps)
	d.detectVoiceEngines(caps)
	d.detectLLM(caps)
	d.detectTerminal(caps)
	d.detectNetwork(caps)

	log.Info().
		Str("os", caps.OSType).
		Bool("native_api", caps.HasNativeAPI).
		Bool("modern_cli", caps.HasModernCLI).
		Bool("legacy_cli", caps.HasLegacyCLI).
		Dur("duration", time.Since(startTime)).
		Msg("Capability detection completed")

	return caps
}

func (d *Detector) detectSystemInfo(ctx context.Context, caps *Capabilities) {
	caps.OSType = runtime.GOOS

	// nixos-version only means something on a host that actually carries
	// a NixOS configuration.
	if !d.fileExists("/etc/nixos/configuration.nix") {
		return
	}

	result := probeCommand(ctx, d.runner, "nixos-version")
	if result.Status == ProbeError {
		log.Debug().Err(result.Err).Msg("nixos-version probe failed")
		return
	}
	if result.Present() {
		caps.NixOSVersion = strings.TrimSpace(result.Detail)
	}
}

func (d *Detector) detectHardware(ctx context.Context, caps *Capabilities) {
	caps.CPUCores = d.numCPU()
	caps.RAMGB = d.readMemTotalGB()

	// GPU via lspci; anything advertising a VGA or 3D controller counts.
	result, err := d.runner.Run(ctx, "lspci")
	if err != nil || result.ExitCode != 0 {
		log.Debug().Err(err).Msg("lspci probe failed, assuming no GPU")
		return
	}
	for _, line := range strings.Split(result.Stdout, "\n") {
		if strings.Contains(line, "VGA") || strings.Contains(line, "3D") {
			caps.HasGPU = true
			caps.GPUInfo = strings.TrimSpace(line)
			return
		}
	}
}

func (d *Detector) readMemTotalGB() float64 {
	data, err := d.readFile("/proc/meminfo")
	if err != nil {
		log.Debug().Err(err).Msg("failed to read /proc/meminfo")
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "MemTotal:" {
			continue
		}
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		// Round to one decimal, matching the cached JSON format.
		return float64(int64(float64(kb)/1024/1024*10+0.5)) / 10
	}
	return 0
}

func (d *Detector) detectNixTools(ctx context.Context, caps *Capabilities) {
	// Native rebuild tooling: the binary must resolve and respond. Tier
	// construction separately verifies the binding's own preconditions.
	if probeBinary(d.runner, "nixos-rebuild").Present() {
		result := probeCommand(ctx, d.runner, "nixos-rebuild", "--version")
		if result.Status == ProbeError {
			log.Debug().Err(result.Err).Msg("nixos-rebuild probe failed")
		}
		caps.HasNativeAPI = result.Present()
	}

	// Modern CLI: the profile subcommand must actually answer, not just
	// the nix binary exist.
	result := probeCommand(ctx, d.runner, "nix", "profile", "--version")
	if result.Status == ProbeError {
		log.Debug().Err(result.Err).Msg("nix profile probe failed")
	}
	caps.HasModernCLI = result.Present()

	caps.HasLegacyCLI = probeBinary(d.runner, "nix-env").Present()
}

func (d *Detector) detectVoiceEngines(caps *Capabilities) {
	caps.HasPiper = probeBinary(d.runner, "piper").Present()
	caps.HasEspeak = probeBinary(d.runner, "espeak-ng").Present() ||
		probeBinary(d.runner, "espeak").Present()
}

func (d *Detector) detectLLM(caps *Capabilities) {
	caps.HasOllama = probeBinary(d.runner, "ollama").Present()
}

func (d *Detector) detectTerminal(caps *Capabilities) {
	term := d.getenv("TERM")
	caps.TerminalSupportsColor = term != "" && term != "dumb" &&
		(strings.Contains(term, "color") || term == "xterm" || term == "screen")

	lang := d.getenv("LC_ALL")
	if lang == "" {
		lang = d.getenv("LANG")
	}
	caps.TerminalSupportsUnicode = strings.Contains(strings.ToUpper(lang), "UTF-8") ||
		strings.Contains(strings.ToUpper(lang), "UTF8")
}

func (d *Detector) detectNetwork(caps *Capabilities) {
	err := d.dial("tcp", "8.8.8.8:53", 3*time.Second)
	if err != nil {
		log.Debug().Err(err).Msg("internet reachability probe failed")
	}
	caps.InternetAvailable = err == nil
}
