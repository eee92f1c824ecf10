// Package backend turns inference workers into the two handles the
// dispatcher fails over between.
//
// A Transport speaks to one worker (HTTP in transcription/whisper, NATS
// request-reply in backend/natsworker). A Gate puts a bulkhead in front
// of it so that probes register load and calls beyond capacity fail fast
// with OVERLOADED. Build wires a transport, its gate and the logging,
// metrics and tracing middlewares; a Pool indexes the results by Role.
//
//	reg := backend.NewRegistry()
//	reg.RegisterFactory(backend.KindWhisper, whisper.Factory)
//	reg.RegisterFactory(backend.KindNATS, natsworker.Factory)
//
//	comp, err := backend.NewComponent(reg, cfg.Backends.Preferred, cfg.Backends.Backup, opts)
//	d := dispatch.New(dispatchCfg, comp.Pool())
package backend
