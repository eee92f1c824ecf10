// Package natsworker reaches inference workers over NATS request-reply.
//
// A worker subscribes to three subjects under a prefix:
//
//	<prefix>.ping        empty request, empty reply
//	<prefix>.transcribe  JSON Request, JSON Reply
//	<prefix>.translate   JSON Request, JSON Reply
//
// Workers should join a queue group so that a pool of them shares the load.
package natsworker

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kbukum/whisper-gateway/backend"
	"github.com/kbukum/whisper-gateway/errors"
	"github.com/kbukum/whisper-gateway/logger"
	"github.com/kbukum/whisper-gateway/transcription"
)

// Subject suffixes.
const (
	SubjectPing       = "ping"
	SubjectTranscribe = "transcribe"
	SubjectTranslate  = "translate"
)

// Request is the payload of a transcribe or translate request.
type Request struct {
	Model    string                        `json:"model"`
	Device   string                        `json:"device"`
	Filename string                        `json:"filename,omitempty"`
	Audio    []byte                        `json:"audio"`
	Options  transcription.DecodingOptions `json:"options"`
}

// ReplyError is the error half of a Reply. Code is one of INVALID_INPUT,
// OVERLOADED or BACKEND_UNAVAILABLE; anything else is treated as unavailable.
type ReplyError struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Reply carries either a result or an error.
type Reply struct {
	Result *transcription.Result `json:"result,omitempty"`
	Error  *ReplyError           `json:"error,omitempty"`
}

// Transport calls workers listening under one subject prefix.
type Transport struct {
	name    string
	model   string
	device  string
	subject string
	timeout time.Duration
	conn    *nats.Conn
}

var _ backend.Transport = (*Transport)(nil)

// New connects to cfg.URL. The connection is retried in the background,
// so a broker that is not up yet only makes the backend unavailable.
func New(cfg backend.Config) (*Transport, error) {
	log := logger.WithComponent("natsworker").WithFields(logger.Fields("backend", cfg.Name))

	opts := []nats.Option{
		nats.Name("whisper-gateway/" + cfg.Name),
		nats.Timeout(cfg.ProbeTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("disconnected from NATS", logger.Fields("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("reconnected to NATS", logger.Fields("url", nc.ConnectedUrlRedacted()))
		}),
	}
	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, fmt.Errorf("natsworker %s: %w", cfg.Name, err)
	}
	if tlsCfg != nil {
		opts = append(opts, nats.Secure(tlsCfg))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("natsworker %s: connect: %w", cfg.Name, err)
	}
	return &Transport{
		name:    cfg.Name,
		model:   cfg.Model,
		device:  cfg.Device,
		subject: cfg.Subject,
		timeout: cfg.Timeout,
		conn:    conn,
	}, nil
}

// Factory is the backend.Factory for KindNATS.
func Factory(cfg backend.Config) (backend.Transport, error) {
	return New(cfg)
}

// Name returns the backend name.
func (t *Transport) Name() string { return t.name }

// IsAvailable reports whether the broker connection is up.
func (t *Transport) IsAvailable(_ context.Context) bool {
	return t.conn.Status() == nats.CONNECTED
}

// Ping sends an empty request to <prefix>.ping. An empty reply is healthy.
func (t *Transport) Ping(ctx context.Context) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	msg, err := t.conn.RequestWithContext(ctx, t.subjectFor(SubjectPing), nil)
	if err != nil {
		return t.classify(err)
	}
	if len(msg.Data) == 0 {
		return nil
	}
	var reply Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil || reply.Error == nil {
		return nil
	}
	return t.replyError(reply.Error)
}

// Transcribe sends req to <prefix>.transcribe.
func (t *Transport) Transcribe(ctx context.Context, req *transcription.TranscriptionRequest) (*transcription.Result, error) {
	return t.call(ctx, SubjectTranscribe, req)
}

// Translate sends req to <prefix>.translate.
func (t *Transport) Translate(ctx context.Context, req *transcription.TranslationRequest) (*transcription.Result, error) {
	return t.call(ctx, SubjectTranslate, req)
}

// Close drains in-flight requests and closes the connection.
func (t *Transport) Close() error {
	if err := t.conn.Drain(); err != nil {
		t.conn.Close()
	}
	return nil
}

func (t *Transport) call(ctx context.Context, suffix string, req transcription.Request) (*transcription.Result, error) {
	in := req.Common()
	data, err := json.Marshal(Request{
		Model:    t.model,
		Device:   t.device,
		Filename: in.Filename,
		Audio:    in.Audio,
		Options:  req.Options(),
	})
	if err != nil {
		return nil, errors.Internal(err)
	}

	ctx, cancel := t.bound(ctx)
	defer cancel()
	msg, err := t.conn.RequestWithContext(ctx, t.subjectFor(suffix), data)
	if err != nil {
		return nil, t.classify(err)
	}

	var reply Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, errors.Unavailable(t.name, fmt.Errorf("decode worker reply: %w", err))
	}
	if reply.Error != nil {
		return nil, t.replyError(reply.Error)
	}
	if reply.Result == nil {
		return nil, errors.Unavailable(t.name, stderrors.New("worker reply has no result"))
	}
	return reply.Result, nil
}

// bound applies the call timeout unless ctx already has a deadline.
func (t *Transport) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

func (t *Transport) subjectFor(suffix string) string {
	return t.subject + "." + suffix
}

func (t *Transport) classify(err error) error {
	switch {
	case stderrors.Is(err, nats.ErrNoResponders):
		return errors.Unavailable(t.name, fmt.Errorf("no worker subscribed to %s: %w", t.subject, err))
	case stderrors.Is(err, nats.ErrMaxPayload):
		return errors.Unavailable(t.name, fmt.Errorf("audio exceeds broker max payload: %w", err))
	default:
		return errors.Unavailable(t.name, err)
	}
}

func (t *Transport) replyError(re *ReplyError) error {
	switch re.Code {
	case errors.ErrCodeInvalidInput:
		return errors.InvalidInput("request", re.Message).WithDetail("backend", t.name)
	case errors.ErrCodeOverloaded:
		return errors.Overloaded(t.name).WithCause(stderrors.New(re.Message))
	default:
		return errors.Unavailable(t.name, fmt.Errorf("%s: %s", re.Code, re.Message))
	}
}
