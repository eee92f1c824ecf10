package backend

import (
	"context"
	"time"

	"github.com/kbukum/whisper-gateway/errors"
	"github.com/kbukum/whisper-gateway/logger"
	"github.com/kbukum/whisper-gateway/observability"
	"github.com/kbukum/whisper-gateway/transcription"
)

// Middleware wraps a Handle with cross-cutting behavior.
type Middleware func(Handle) Handle

// Chain composes middlewares. The first one is outermost:
// Chain(a, b, c)(h) is a(b(c(h))).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner Handle) Handle {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// callFunc is the shape shared by Transcribe and Translate once the
// request is bound.
type callFunc func(ctx context.Context) (*transcription.Result, error)

// around adapts a per-call hook into a Middleware. Probe and the
// provider methods pass straight through.
func around(hook func(ctx context.Context, inner Handle, task transcription.Task, call callFunc) (*transcription.Result, error)) Middleware {
	return func(inner Handle) Handle {
		return &hooked{Handle: inner, hook: hook}
	}
}

type hooked struct {
	Handle
	hook func(ctx context.Context, inner Handle, task transcription.Task, call callFunc) (*transcription.Result, error)
}

func (h *hooked) Transcribe(ctx context.Context, req *transcription.TranscriptionRequest) (*transcription.Result, error) {
	return h.hook(ctx, h.Handle, transcription.TaskTranscribe, func(ctx context.Context) (*transcription.Result, error) {
		return h.Handle.Transcribe(ctx, req)
	})
}

func (h *hooked) Translate(ctx context.Context, req *transcription.TranslationRequest) (*transcription.Result, error) {
	return h.hook(ctx, h.Handle, transcription.TaskTranslate, func(ctx context.Context) (*transcription.Result, error) {
		return h.Handle.Translate(ctx, req)
	})
}

// WithLogging logs every backend call with its duration and outcome.
func WithLogging(log *logger.Logger, role Role) Middleware {
	return around(func(ctx context.Context, inner Handle, task transcription.Task, call callFunc) (*transcription.Result, error) {
		start := time.Now()
		res, err := call(ctx)

		fields := logger.Fields(
			logger.FieldTask, string(task),
			logger.FieldDuration, time.Since(start).Milliseconds(),
		)
		l := log.WithBackend(inner.Name(), role.String()).WithContext(ctx)
		switch {
		case err == nil:
			fields[logger.FieldSegments] = len(res.Segments)
			l.Debug("backend call ok", fields)
		case errors.IsInvalidInput(err):
			l.Info("backend rejected input", logger.MergeWithError(fields, err))
		default:
			l.Warn("backend call failed", logger.MergeWithError(fields, err))
		}
		return res, err
	})
}

// WithMetrics records call counts and durations per backend and role.
func WithMetrics(metrics *observability.Metrics, role Role) Middleware {
	return around(func(ctx context.Context, inner Handle, task transcription.Task, call callFunc) (*transcription.Result, error) {
		start := time.Now()
		res, err := call(ctx)
		metrics.RecordBackendCall(ctx, inner.Name(), role.String(), string(task), outcome(err), time.Since(start))
		return res, err
	})
}

// WithTracing wraps every call in a backend.call span.
func WithTracing(role Role) Middleware {
	return around(func(ctx context.Context, inner Handle, task transcription.Task, call callFunc) (*transcription.Result, error) {
		ctx, span := observability.StartSpan(ctx, observability.SpanBackendCall)
		defer span.End()

		observability.SetSpanAttribute(ctx, observability.AttrBackend, inner.Name())
		observability.SetSpanAttribute(ctx, observability.AttrRole, role.String())
		observability.SetSpanAttribute(ctx, observability.AttrTask, string(task))

		res, err := call(ctx)
		observability.SetSpanAttribute(ctx, observability.AttrStatus, outcome(err))
		if err != nil {
			observability.SetSpanError(ctx, err)
		}
		return res, err
	})
}

// outcome is the status label for a call result: "ok" or the error code.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return "error"
}
