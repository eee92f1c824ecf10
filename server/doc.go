// Package server is the HTTP front of the gateway: gin on a root
// ServeMux with h2c, so HTTP/1.1 and cleartext HTTP/2 clients share one
// port.
//
// Every request passes the server-level stack in server/middleware:
// panic recovery, request IDs, tracing, CORS and request logging. Routes
// created with APIGroup also get the body size limit and the optional
// per-client rate limiter.
//
// RegisterDefaultEndpoints adds the operational endpoints:
//
//   - /health: component health aggregation
//   - /alive: liveness probe
//   - /ready: readiness probe
//   - /info and /version: build information
//   - /metrics: Prometheus exposition, or runtime stats without an exporter
package server
