// Package component defines the lifecycle contract shared by the gateway's
// long-lived parts: the HTTP server, the backend pool and telemetry.
//
// A Registry starts components in registration order, stops them in
// reverse order and aggregates their health for /health and /ready.
// Components may also implement Describable or RouteProvider to show up
// in the startup summary.
package component
