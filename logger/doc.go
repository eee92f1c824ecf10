// Package logger provides structured logging for the gateway using zerolog.
//
// Output is JSON or console. Loggers can be scoped to a component or a
// backend and pick up request and trace IDs from a context.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg, "whisper-gateway").WithComponent("dispatch")
//	log.Info("failover", logger.Fields(logger.FieldBackend, "cpu"))
package logger
