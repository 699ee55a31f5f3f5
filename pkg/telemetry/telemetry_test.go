package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing service name", func(c *Config) { c.ServiceName = "" }},
		{"missing version", func(c *Config) { c.ServiceVersion = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad exporter", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "carrier_pigeon"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestDisabledMetricsAreNoOps(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	// None of these may panic or register anything.
	m.RecordExecution("modern_cli", true, time.Second)
	m.RecordFallback("modern_cli", "legacy_cli")
	m.RecordConfirmationRequested("native_api")
	m.SetTierAvailable("legacy_cli", false)
	m.RecordDetection(time.Second)

	if m.Handler() != nil {
		t.Error("disabled metrics expose a handler")
	}
	if err := m.ListenAndServe(); err != nil {
		t.Errorf("disabled ListenAndServe returned %v", err)
	}
}

func TestEnabledMetricsServeHandler(t *testing.T) {
	cfg := DefaultConfig().Metrics
	cfg.Enabled = true

	m, err := NewMetrics(cfg)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	m.RecordExecution("modern_cli", false, 250*time.Millisecond)
	m.SetTierAvailable("modern_cli", true)

	if m.Handler() == nil {
		t.Error("enabled metrics have no handler")
	}
}

func TestNewTelemetryDisabledEverything(t *testing.T) {
	tel, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer tel.Shutdown(context.Background())

	if tel.Logger == nil || tel.Tracer == nil || tel.Metrics == nil {
		t.Fatal("telemetry bundle incomplete")
	}

	// Tracing disabled still hands out usable no-op spans.
	_, span := tel.Tracer.StartExecuteSpan(context.Background(), "install", "firefox")
	span.End()
}

func TestParseLogLevel(t *testing.T) {
	if got := parseLogLevel("warn"); got.String() != "warn" {
		t.Errorf("parseLogLevel(warn) = %s", got)
	}
	if got := parseLogLevel("nonsense"); got.String() != "info" {
		t.Errorf("parseLogLevel(nonsense) = %s, want info fallback", got)
	}
}

func TestComponentLoggerCarriesFields(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "debug", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	child := logger.NewComponentLogger("executor").WithTier("modern_cli")
	if child == logger {
		t.Error("child logger aliases the parent")
	}

	ctx := child.WithContext(context.Background())
	if FromContext(ctx) != child {
		t.Error("logger not recoverable from context")
	}
	if FromContext(context.Background()) == nil {
		t.Error("FromContext without logger returned nil")
	}
}

func TestNewLoggerFileOutput(t *testing.T) {
	// Unknown output strings are file paths; a creatable path must work.
	path := filepath.Join(t.TempDir(), "resilix.log")
	logger, err := NewLogger(LoggingConfig{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("NewLogger with file output failed: %v", err)
	}
	logger.Info("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file content = %q", data)
	}
}
