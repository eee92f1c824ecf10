package backend

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/kbukum/whisper-gateway/errors"
	"github.com/kbukum/whisper-gateway/logger"
	"github.com/kbukum/whisper-gateway/resilience"
	"github.com/kbukum/whisper-gateway/transcription"
)

// GateConfig configures admission control in front of a transport.
type GateConfig struct {
	MaxConcurrent int
	MaxWait       time.Duration
	ProbeTimeout  time.Duration
	// OnProbe is called after each probe attempt with whether it got a slot.
	OnProbe func(backend string, admitted bool)
}

// Gate turns a Transport into a Handle. Probes and real calls share one
// bulkhead: a probe holds a slot until its ping returns, and a real call
// that cannot get a slot fails with OVERLOADED.
type Gate struct {
	transport Transport
	bulkhead  *resilience.Bulkhead
	cfg       GateConfig
	log       *logger.Logger

	probes sync.WaitGroup
}

// NewGate wraps t with a bulkhead sized by cfg.
func NewGate(t Transport, cfg GateConfig) *Gate {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	return &Gate{
		transport: t,
		bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          t.Name(),
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.MaxWait,
		}),
		cfg: cfg,
		log: logger.WithComponent("backend.gate").WithFields(logger.Fields(logger.FieldBackend, t.Name())),
	}
}

// Name returns the backend name.
func (g *Gate) Name() string { return g.transport.Name() }

// IsAvailable reports whether the transport can reach its worker.
func (g *Gate) IsAvailable(ctx context.Context) bool {
	return g.transport.IsAvailable(ctx)
}

// Probe takes a slot and pings the worker in the background. The slot is
// held from the moment Probe returns until the ping completes, so a call
// issued after Probe competes with it. A full gate returns OVERLOADED.
func (g *Gate) Probe(ctx context.Context) error {
	release, ok := g.bulkhead.TryAcquire()
	if g.cfg.OnProbe != nil {
		g.cfg.OnProbe(g.Name(), ok)
	}
	if !ok {
		return errors.Overloaded(g.Name())
	}

	g.probes.Add(1)
	go func() {
		defer g.probes.Done()
		defer release()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.cfg.ProbeTimeout)
		defer cancel()
		if err := g.transport.Ping(pctx); err != nil {
			g.log.Debug("probe failed", logger.ErrorFields("ping", err))
		}
	}()
	return nil
}

// Transcribe runs a transcription on the worker.
func (g *Gate) Transcribe(ctx context.Context, req *transcription.TranscriptionRequest) (*transcription.Result, error) {
	return admit(ctx, g, func(ctx context.Context) (*transcription.Result, error) {
		return g.transport.Transcribe(ctx, req)
	})
}

// Translate runs a translation on the worker.
func (g *Gate) Translate(ctx context.Context, req *transcription.TranslationRequest) (*transcription.Result, error) {
	return admit(ctx, g, func(ctx context.Context) (*transcription.Result, error) {
		return g.transport.Translate(ctx, req)
	})
}

// InUse returns the number of occupied slots.
func (g *Gate) InUse() int { return g.bulkhead.InUse() }

// Capacity returns the total number of slots.
func (g *Gate) Capacity() int { return g.bulkhead.MaxConcurrent() }

// Close waits for in-flight probes and closes the transport.
func (g *Gate) Close() error {
	g.probes.Wait()
	return g.transport.Close()
}

func admit(ctx context.Context, g *Gate, call func(context.Context) (*transcription.Result, error)) (*transcription.Result, error) {
	release, err := g.bulkhead.Acquire(ctx)
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Unavailable(g.Name(), err)
		}
		return nil, errors.Overloaded(g.Name()).WithCause(err)
	}
	defer release()

	res, err := call(ctx)
	if err != nil {
		return nil, errors.Classify(g.Name(), err)
	}
	return res, nil
}
