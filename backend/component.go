package backend

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/kbukum/whisper-gateway/component"
	"github.com/kbukum/whisper-gateway/logger"
	"github.com/kbukum/whisper-gateway/util"
)

const componentName = "backends"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component owns the preferred and backup handles for the lifetime of
// the process.
type Component struct {
	configs [len(roleNames)]Config
	gates   [len(roleNames)]*Gate
	pool    *Pool
	log     *logger.Logger
}

// NewComponent builds both handles from config. Transports connect
// lazily; a worker that is down at startup only fails its own calls.
func NewComponent(reg *Registry, preferred, backup Config, opts Options) (*Component, error) {
	if opts.Logger == nil {
		opts.Logger = logger.WithComponent(componentName)
	}
	c := &Component{log: opts.Logger}
	c.configs[RolePreferred] = preferred
	c.configs[RoleBackup] = backup

	var handles [len(roleNames)]Handle
	for _, role := range Roles {
		gate, handle, err := Build(reg, c.configs[role], role, opts)
		if err != nil {
			c.closeGates()
			return nil, err
		}
		c.configs[role].ApplyDefaults()
		c.gates[role] = gate
		handles[role] = handle
	}
	c.pool = NewPool(handles[RolePreferred], handles[RoleBackup])
	return c, nil
}

// Pool returns the handles in failover order.
func (c *Component) Pool() *Pool { return c.pool }

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start checks that each worker is reachable. An unreachable worker is
// logged, not fatal.
func (c *Component) Start(ctx context.Context) error {
	for _, role := range Roles {
		h := c.pool.Get(role)
		fields := logger.Fields(logger.FieldBackend, h.Name(), logger.FieldRole, role.String(), "kind", c.configs[role].Kind)
		if h.IsAvailable(ctx) {
			c.log.Info("backend reachable", fields)
		} else {
			c.log.Warn("backend not reachable at startup", fields)
		}
	}
	return nil
}

// Stop waits for in-flight probes and closes both transports.
func (c *Component) Stop(_ context.Context) error {
	return c.closeGates()
}

// Health is healthy when both workers answer, degraded when one does and
// unhealthy when neither does.
func (c *Component) Health(ctx context.Context) component.Health {
	var down []string
	for _, role := range Roles {
		if h := c.pool.Get(role); !h.IsAvailable(ctx) {
			down = append(down, fmt.Sprintf("%s %s unreachable", role, h.Name()))
		}
	}

	h := component.Health{Name: componentName, Status: component.StatusHealthy}
	switch len(down) {
	case 0:
	case len(Roles):
		h.Status = component.StatusUnhealthy
	default:
		h.Status = component.StatusDegraded
	}
	if len(down) > 0 {
		h.Message = fmt.Sprint(down)
	}
	return h
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	p, b := c.configs[RolePreferred], c.configs[RoleBackup]
	return component.Description{
		Name: "Inference Backends",
		Type: "backend",
		Details: fmt.Sprintf("preferred=%s(%s %s) backup=%s(%s %s) model=%s",
			p.Name, p.Kind, util.RedactURL(p.URL), b.Name, b.Kind, util.RedactURL(b.URL), p.Model),
	}
}

func (c *Component) closeGates() error {
	var errs []error
	for _, g := range c.gates {
		if g == nil {
			continue
		}
		if err := g.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", g.Name(), err))
		}
	}
	return stderrors.Join(errs...)
}
