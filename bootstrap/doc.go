// Package bootstrap runs the gateway's lifecycle.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(backends)
//	app.RegisterComponent(httpServer)
//	app.OnStop(flushTelemetry)
//	return app.Run(ctx)
//
// Run starts components in registration order, runs hooks and configure
// callbacks, prints the startup summary, waits for SIGINT or SIGTERM and
// then shuts down within the graceful timeout.
package bootstrap
