// Package app wires the player stats service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Configuration is loaded by the caller (config.Load)
//	2. OpenTelemetry providers and business metrics are created
//	3. The pipeline variant and the data source are built from config
//	4. The loader, services and live session hub are created
//	5. The chi router is assembled with the middleware chain
//	6. The HTTP server is created; Run serves until SIGINT or SIGTERM
//
// # Usage
//
//	cfg, err := config.Load()
//	...
//	application, err := app.NewApplication(cfg, logger)
//	...
//	if err := application.Run(); err != nil {
//	    os.Exit(1)
//	}
//
// NewSource and NewPipeline are exported so command-line tools can run the
// same pipeline without starting a server.
package app
