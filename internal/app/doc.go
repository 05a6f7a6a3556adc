// Package app wires the QuantDesk service together and manages its
// lifecycle. It is the only package that knows about every other layer:
// configuration, logging and telemetry, the market data client, the
// analysis services, and the HTTP transport.
//
// # Initialization Flow
//
// NewApplication builds the whole object graph before anything listens:
//
//	1. Load configuration (defaults, YAML file, QD_* environment)
//	2. Initialize the structured logger and OpenTelemetry providers
//	3. Create the market data client and optional Redis cache
//	4. Create the HRP, stat-arb, options, and health services
//	5. Assemble the chi router and middleware chain
//	6. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    ...
//	}
//	if err := application.Run(); err != nil {
//	    ...
//	}
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests
// within the configured shutdown timeout before closing the cache and
// flushing telemetry. Initialization errors are returned, never fatal
// inside the package, so main controls the exit path.
package app
