package dispatch

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/kbukum/whisper-gateway/backend"
	"github.com/kbukum/whisper-gateway/errors"
	"github.com/kbukum/whisper-gateway/logger"
	"github.com/kbukum/whisper-gateway/observability"
	"github.com/kbukum/whisper-gateway/transcription"
)

// invokeFunc runs one task against a handle.
type invokeFunc func(ctx context.Context, h backend.Handle, req transcription.Request) (*transcription.Result, error)

var tasks = map[transcription.Task]invokeFunc{
	transcription.TaskTranscribe: func(ctx context.Context, h backend.Handle, req transcription.Request) (*transcription.Result, error) {
		r, ok := req.(*transcription.TranscriptionRequest)
		if !ok {
			return nil, errors.Internal(fmt.Errorf("transcribe task with %T", req))
		}
		return h.Transcribe(ctx, r)
	},
	transcription.TaskTranslate: func(ctx context.Context, h backend.Handle, req transcription.Request) (*transcription.Result, error) {
		r, ok := req.(*transcription.TranslationRequest)
		if !ok {
			return nil, errors.Internal(fmt.Errorf("translate task with %T", req))
		}
		return h.Translate(ctx, r)
	},
}

// Dispatcher routes requests to the preferred backend and fails over to
// the backup once. It keeps no state between requests.
type Dispatcher struct {
	cfg     Config
	pool    *backend.Pool
	log     *logger.Logger
	metrics *observability.Metrics
	service string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. Defaults to the "dispatch" component logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithMetrics enables request and failover metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithServiceName sets the service name recorded on spans and metrics.
func WithServiceName(name string) Option {
	return func(d *Dispatcher) { d.service = name }
}

// New creates a Dispatcher over pool.
func New(cfg Config, pool *backend.Pool, opts ...Option) *Dispatcher {
	cfg.ApplyDefaults()
	d := &Dispatcher{cfg: cfg, pool: pool, service: "whisper-gateway"}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.WithComponent("dispatch")
	}
	return d
}

// Model returns the model name requests must ask for.
func (d *Dispatcher) Model() string { return d.cfg.Model }

// Dispatch validates req, runs it on a backend and renders the result in
// the requested format.
func (d *Dispatcher) Dispatch(ctx context.Context, req transcription.Request) (*transcription.Output, error) {
	oc := observability.NewOperationContext(d.service, string(req.Task()), logger.RequestIDFromContext(ctx), d.metrics)
	ctx, span := oc.Start(ctx, observability.SpanDispatch)
	observability.SetSpanAttribute(ctx, observability.AttrTask, string(req.Task()))
	observability.SetSpanAttribute(ctx, observability.AttrResponseFormat, string(req.Common().ResponseFormat))

	out, err := d.dispatch(ctx, req)
	oc.End(ctx, span, status(err), err)
	return out, err
}

func (d *Dispatcher) dispatch(ctx context.Context, req transcription.Request) (*transcription.Output, error) {
	if err := transcription.Validate(req, d.cfg.Model); err != nil {
		d.log.WithContext(ctx).Debug("request rejected", logger.Fields(
			"task", string(req.Task()),
			"response_format", string(req.Common().ResponseFormat),
			"error", err.Error(),
		))
		return nil, err
	}
	invoke, ok := tasks[req.Task()]
	if !ok {
		return nil, errors.InvalidInput("task", fmt.Sprintf("Unsupported task %s", req.Task()))
	}

	preferred := d.pool.Preferred()
	for i := 0; i < d.cfg.ProbeCount; i++ {
		// Probe outcomes are not used for routing.
		_ = preferred.Probe(ctx)
	}

	res, err := d.call(ctx, invoke, preferred, req)
	if err == nil {
		observability.SetSpanAttribute(ctx, observability.AttrFailover, false)
		observability.SetSpanAttribute(ctx, observability.AttrBackend, preferred.Name())
		return transcription.FormatRequest(req, res)
	}
	if !errors.IsFailoverEligible(err) {
		return nil, err
	}

	backup := d.pool.Backup()
	if backup == nil {
		return nil, err
	}
	d.failover(ctx, req.Task(), preferred, backup, err)

	res, err = d.call(ctx, invoke, backup, req)
	if err != nil {
		return nil, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrBackend, backup.Name())
	return transcription.FormatRequest(req, res)
}

// call invokes the task on h and normalizes its error into one of the
// three backend error kinds.
func (d *Dispatcher) call(ctx context.Context, invoke invokeFunc, h backend.Handle, req transcription.Request) (*transcription.Result, error) {
	res, err := invoke(ctx, h, req)
	if err == nil && res == nil {
		err = errors.Unavailable(h.Name(), stderrors.New("backend returned no result"))
	}
	return res, errors.Classify(h.Name(), err)
}

func (d *Dispatcher) failover(ctx context.Context, task transcription.Task, from, to backend.Handle, cause error) {
	reason := status(cause)
	d.log.WithContext(ctx).Warn("preferred backend failed, using backup", logger.Fields(
		"task", string(task),
		"backend", from.Name(),
		"backup", to.Name(),
		"reason", reason,
		"error", cause.Error(),
	))
	observability.SetSpanAttribute(ctx, observability.AttrFailover, true)
	if d.metrics != nil {
		d.metrics.RecordFailover(ctx, string(task), reason)
	}
}

func status(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return "error"
}
