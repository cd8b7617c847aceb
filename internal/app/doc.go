// Package app wires the option chain analyzer together and manages its
// lifecycle.
//
// NewApplication loads the configuration, initializes logging and
// OpenTelemetry, builds the analysis and health services and mounts the HTTP
// handlers behind the middleware chain:
//
//	RequestID → RealIP → OTel → StructuredLogger → Recoverer → Timeout →
//	Compress → CORS → SecurityHeaders → RateLimiter
//
// /metrics is mounted ahead of the chain when the Prometheus exporter is
// enabled.
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run blocks until SIGINT or SIGTERM and then drains in-flight requests
// within Server.ShutdownTimeout. Errors are returned to the caller; the
// package never calls os.Exit.
package app
