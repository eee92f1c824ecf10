package backend

import (
	"context"
	"fmt"

	"github.com/kbukum/whisper-gateway/logger"
	"github.com/kbukum/whisper-gateway/observability"
	"github.com/kbukum/whisper-gateway/provider"
)

// Factory builds a Transport from backend config.
type Factory = provider.Factory[Transport, Config]

// Registry maps transport kinds to factories.
type Registry = provider.Registry[Transport, Config]

// NewRegistry creates an empty transport registry.
func NewRegistry() *Registry {
	return provider.NewRegistry[Transport, Config]()
}

// Options are the shared dependencies of every built handle.
type Options struct {
	Logger  *logger.Logger
	Metrics *observability.Metrics
	Tracing bool
}

// Build creates the transport for cfg, puts a Gate in front of it and
// applies the logging, metrics and tracing middlewares.
func Build(reg *Registry, cfg Config, role Role, opts Options) (*Gate, Handle, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("backend %s: %w", role, err)
	}

	transport, err := reg.Create(cfg.Kind, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("backend %s: %w", role, err)
	}

	gateCfg := GateConfig{
		MaxConcurrent: cfg.MaxConcurrent,
		MaxWait:       cfg.MaxWait,
		ProbeTimeout:  cfg.ProbeTimeout,
	}
	if opts.Metrics != nil {
		m := opts.Metrics
		gateCfg.OnProbe = func(name string, admitted bool) {
			m.RecordProbe(context.Background(), name, admitted)
		}
	}
	gate := NewGate(transport, gateCfg)

	var mws []Middleware
	if opts.Tracing {
		mws = append(mws, WithTracing(role))
	}
	if opts.Metrics != nil {
		mws = append(mws, WithMetrics(opts.Metrics, role))
	}
	if opts.Logger != nil {
		mws = append(mws, WithLogging(opts.Logger, role))
	}
	return gate, Chain(mws...)(gate), nil
}
