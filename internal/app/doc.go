// Package app wires the report service together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, REPORTD_* environment)
//	2. Initialize logging and OpenTelemetry
//	3. Open the record store and load fixtures when configured
//	4. Build the aggregator, formatter registry and export service
//	5. Set up HTTP handlers and middleware
//	6. Start the HTTP server
//
// # Usage
//
//	cfg, err := config.Load("")
//	application, err := app.NewApplication(ctx, cfg)
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests,
// closes the store and flushes telemetry. Initialization errors are
// returned to the caller; the package never calls os.Exit.
package app
