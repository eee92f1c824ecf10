package main

import (
	"context"
	"fmt"

	"github.com/kbukum/whisper-gateway/api"
	"github.com/kbukum/whisper-gateway/backend"
	"github.com/kbukum/whisper-gateway/backend/natsworker"
	"github.com/kbukum/whisper-gateway/bootstrap"
	"github.com/kbukum/whisper-gateway/component"
	"github.com/kbukum/whisper-gateway/dispatch"
	"github.com/kbukum/whisper-gateway/server"
	"github.com/kbukum/whisper-gateway/transcription/whisper"
)

// newRegistry knows every transport kind a backend can be configured with.
func newRegistry() *backend.Registry {
	reg := backend.NewRegistry()
	reg.RegisterFactory(backend.KindWhisper, whisper.Factory)
	reg.RegisterFactory(backend.KindNATS, natsworker.Factory)
	return reg
}

// newGateway wires telemetry, the backends, the dispatcher and the HTTP
// server into an App. Components stop in reverse order: the server
// drains first and telemetry flushes last.
func newGateway(ctx context.Context, cfg *Config, opts ...bootstrap.Option) (*bootstrap.App[*Config], *server.Server, error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	log := app.Logger

	tel, err := newTelemetry(ctx, *cfg)
	if err != nil {
		return nil, nil, err
	}

	backends, err := backend.NewComponent(newRegistry(), cfg.Backends.Preferred, cfg.Backends.Backup, backend.Options{
		Logger:  log.WithComponent("backend"),
		Metrics: tel.Metrics(),
		Tracing: tel.Tracing(),
	})
	if err != nil {
		_ = tel.Stop(ctx)
		return nil, nil, err
	}

	dispatcher := dispatch.New(cfg.Dispatch, backends.Pool(),
		dispatch.WithLogger(log.WithComponent("dispatch")),
		dispatch.WithMetrics(tel.Metrics()),
		dispatch.WithServiceName(cfg.Name),
	)

	srv := server.New(cfg.Server, log)
	api.NewHandler(dispatcher, log).Register(srv.APIGroup("/v1"))
	srv.RegisterDefaultEndpoints(cfg.Name, app.Components.HealthAll, tel.Handler())

	for _, c := range []component.Component{tel, backends, server.NewComponent(srv)} {
		if err := app.RegisterComponent(c); err != nil {
			return nil, nil, err
		}
	}

	app.OnReady(func(context.Context) error {
		log.Info("Gateway ready", map[string]interface{}{
			"addr":      srv.Addr(),
			"model":     cfg.Dispatch.Model,
			"preferred": cfg.Backends.Preferred.Name,
			"backup":    cfg.Backends.Backup.Name,
		})
		return nil
	})
	return app, srv, nil
}

// serve runs the gateway until a signal arrives or ctx is done.
func serve(ctx context.Context, cfg *Config) error {
	app, _, err := newGateway(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build gateway: %w", err)
	}
	return app.Run(ctx)
}
