// Package telemetry provides observability instrumentation for resilix.
//
// It integrates structured logging (zerolog), distributed tracing
// (OpenTelemetry), and metrics (Prometheus) behind one configuration
// surface. All three are optional at runtime: an interactive CLI session
// typically runs with console logging only, while long-lived or scripted
// use can enable the metrics endpoint and trace export.
//
// Initialize at startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceVersion = version
//
//	tel, err := telemetry.New(cfg)
//	if err != nil {
//	    log.Fatal().Err(err).Msg("telemetry init failed")
//	}
//	defer tel.Shutdown(context.Background())
package telemetry
