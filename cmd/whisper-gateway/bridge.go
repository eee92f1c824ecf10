package main

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/kbukum/whisper-gateway/backend/natsworker"
	"github.com/kbukum/whisper-gateway/bootstrap"
	"github.com/kbukum/whisper-gateway/component"
	"github.com/kbukum/whisper-gateway/logger"
	"github.com/kbukum/whisper-gateway/transcription/whisper"
	"github.com/kbukum/whisper-gateway/util"
)

// bridge answers NATS worker subjects with an HTTP whisper worker, so a
// gateway configured with a nats backend can reach workers that only
// speak HTTP.
type bridge struct {
	cfg    BridgeConfig
	worker *whisper.Transport
	conn   *nats.Conn
	srv    *natsworker.Server
	log    *logger.Logger
}

var (
	_ component.Component   = (*bridge)(nil)
	_ component.Describable = (*bridge)(nil)
)

func newBridge(cfg BridgeConfig, log *logger.Logger) (*bridge, error) {
	worker, err := whisper.New(cfg.Worker)
	if err != nil {
		return nil, fmt.Errorf("bridge worker: %w", err)
	}
	return &bridge{cfg: cfg, worker: worker, log: log.WithComponent("bridge")}, nil
}

func (b *bridge) Name() string { return "nats-bridge" }

func (b *bridge) Start(ctx context.Context) error {
	conn, err := nats.Connect(b.cfg.URL,
		nats.Name(serviceName+"/bridge"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				b.log.Warn("NATS disconnected", logger.Fields("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			b.log.Info("NATS reconnected", logger.Fields("url", c.ConnectedUrlRedacted()))
		}),
	)
	if err != nil {
		return fmt.Errorf("bridge: connect %s: %w", util.RedactURL(b.cfg.URL), err)
	}
	// Handlers outlive Start's context; Stop ends them.
	srv, err := natsworker.Serve(context.WithoutCancel(ctx), conn, b.cfg.Subject, b.cfg.Queue, b.worker)
	if err != nil {
		conn.Close()
		return err
	}
	b.conn, b.srv = conn, srv
	b.log.Info("Bridge subscribed", logger.Fields(
		"subject", b.cfg.Subject,
		"queue", b.cfg.Queue,
		"worker", b.cfg.Worker.URL,
	))
	return nil
}

func (b *bridge) Stop(context.Context) error {
	var errs []error
	if b.srv != nil {
		errs = append(errs, b.srv.Close())
	}
	if b.conn != nil {
		if err := b.conn.Drain(); err != nil {
			b.conn.Close()
		}
	}
	errs = append(errs, b.worker.Close())
	return stderrors.Join(errs...)
}

// Health follows the NATS connection and the HTTP worker.
func (b *bridge) Health(ctx context.Context) component.Health {
	h := component.Health{Name: b.Name(), Status: component.StatusHealthy}
	switch {
	case b.conn == nil || !b.conn.IsConnected():
		h.Status, h.Message = component.StatusUnhealthy, "not connected to NATS"
	case !b.worker.IsAvailable(ctx):
		h.Status, h.Message = component.StatusDegraded, "worker "+b.cfg.Worker.Name+" unreachable"
	}
	return h
}

func (b *bridge) Describe() component.Description {
	return component.Description{
		Name:    "NATS Bridge",
		Type:    "backend",
		Details: fmt.Sprintf("%s.* (queue %s) -> %s", b.cfg.Subject, b.cfg.Queue, b.cfg.Worker.URL),
	}
}

// bridgeConfig validates only what the bridge command uses.
type bridgeConfig struct {
	*Config
}

func (c bridgeConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return c.ValidateBridge()
}

// runBridge runs the bridge until a signal arrives or ctx is done.
func runBridge(ctx context.Context, cfg *Config) error {
	app, err := bootstrap.NewApp(bridgeConfig{cfg})
	if err != nil {
		return err
	}
	b, err := newBridge(cfg.Bridge, app.Logger)
	if err != nil {
		return err
	}
	if err := app.RegisterComponent(b); err != nil {
		return err
	}
	return app.Run(ctx)
}
