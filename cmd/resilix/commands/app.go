package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/resilix/resilix/pkg/capability"
	"github.com/resilix/resilix/pkg/config"
	"github.com/resilix/resilix/pkg/executor"
	"github.com/resilix/resilix/pkg/stores"
	"github.com/resilix/resilix/pkg/telemetry"
	"github.com/resilix/resilix/pkg/transports/local"
)

// applyLogging installs the config file's logging settings on the global
// logger every package logs through. LOG_LEVEL env and --verbose outrank
// the file.
func applyLogging(cfg *config.Config) {
	lcfg := telemetry.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stderr",
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		lcfg.Level = env
	}
	if verbose {
		lcfg.Level = "debug"
	}

	logger, err := telemetry.NewLogger(lcfg)
	if err != nil {
		log.Warn().Err(err).Msg("failed to build configured logger")
		return
	}

	log.Logger = logger.Zerolog()
	zerolog.SetGlobalLevel(logger.Zerolog().GetLevel())
}

// loadConfig resolves the effective configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	return config.Load(path)
}

// capabilitiesCachePath resolves the snapshot cache location.
func capabilitiesCachePath(cfg *config.Config) (string, error) {
	if cfg.Capabilities.CachePath != "" {
		return cfg.Capabilities.CachePath, nil
	}
	return capability.DefaultCachePath()
}

// loadCapabilities returns the host snapshot, from cache when fresh,
// probing otherwise. forceDetect bypasses the cache entirely. tel, when
// non-nil, receives detection spans and metrics.
func loadCapabilities(ctx context.Context, cfg *config.Config, runner local.Runner, tel *telemetry.Telemetry, forceDetect bool) (*capability.Capabilities, error) {
	cachePath, err := capabilitiesCachePath(cfg)
	if err != nil {
		return nil, err
	}

	if !forceDetect {
		if caps := capability.Load(cachePath); caps != nil {
			ttl := cfg.Capabilities.CacheTTL()
			if ttl == 0 || time.Since(caps.DetectedAt) < ttl {
				log.Debug().Str("path", cachePath).Msg("using cached capabilities")
				return caps, nil
			}
			log.Debug().Msg("capabilities cache expired, re-detecting")
		}
	}

	detectCtx := ctx
	startTime := time.Now()
	if tel != nil {
		var span trace.Span
		detectCtx, span = tel.Tracer.StartDetectSpan(ctx)
		defer span.End()
	}

	caps := capability.NewDetector(runner).DetectAll(detectCtx)

	if tel != nil {
		tel.Metrics.RecordDetection(time.Since(startTime))
	}

	// Cache failures are not fatal; worst case we probe again next run.
	if err := capability.Save(caps, cachePath); err != nil {
		log.Warn().Err(err).Msg("failed to save capabilities cache")
	}

	return caps, nil
}

// openHistoryStore opens the execution-history database if history is
// enabled. Returns nil when disabled.
func openHistoryStore(ctx context.Context, cfg *config.Config) (stores.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}

	path := cfg.History.Path
	if path == "" {
		dataDir, err := config.DataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dataDir, "history.db")
	}

	store, err := stores.NewSQLiteStore(stores.Config{Path: path})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate history store: %w", err)
	}

	return store, nil
}

// buildTelemetry assembles the telemetry stack from the app config. The
// metrics endpoint, when enabled, is served in the background.
func buildTelemetry(cfg *config.Config, version string) (*telemetry.Telemetry, error) {
	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = version
	tcfg.Logging.Level = cfg.Logging.Level
	tcfg.Logging.Format = cfg.Logging.Format
	tcfg.Tracing.Enabled = cfg.Tracing.Enabled
	if cfg.Tracing.Exporter != "" {
		tcfg.Tracing.Exporter = cfg.Tracing.Exporter
	}
	tcfg.Tracing.Endpoint = cfg.Tracing.Endpoint
	tcfg.Metrics.Enabled = cfg.Metrics.Enabled
	tcfg.Metrics.ListenAddress = cfg.Metrics.ListenAddress

	tel, err := telemetry.New(tcfg)
	if err != nil {
		return nil, err
	}

	if cfg.Metrics.Enabled {
		go func() {
			if err := tel.Metrics.ListenAndServe(); err != nil {
				log.Error().Err(err).Msg("metrics endpoint failed")
			}
		}()
	}

	return tel, nil
}

// newExecutor wires the executor from the loaded pieces.
func newExecutor(caps *capability.Capabilities, runner local.Runner, cfg *config.Config, tel *telemetry.Telemetry, noConfirm bool) *executor.ResilientExecutor {
	var metrics *telemetry.Metrics
	if tel != nil {
		metrics = tel.Metrics
	}
	return executor.New(caps, runner, executor.Options{
		RequireConfirmation: cfg.Execution.RequireConfirmation && !noConfirm,
		Metrics:             metrics,
	})
}
