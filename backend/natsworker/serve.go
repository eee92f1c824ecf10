package natsworker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/kbukum/whisper-gateway/errors"
	"github.com/kbukum/whisper-gateway/logger"
	"github.com/kbukum/whisper-gateway/transcription"
)

// Worker is what Serve answers requests with. Any backend.Transport
// satisfies it, which lets a gateway expose an HTTP worker on NATS.
type Worker interface {
	Ping(ctx context.Context) error
	Transcribe(ctx context.Context, req *transcription.TranscriptionRequest) (*transcription.Result, error)
	Translate(ctx context.Context, req *transcription.TranslationRequest) (*transcription.Result, error)
}

// Server answers worker subjects on a connection.
type Server struct {
	conn   *nats.Conn
	worker Worker
	log    *logger.Logger
	subs   []*nats.Subscription
}

// Serve subscribes worker to <subject>.ping, .transcribe and .translate in
// queue group queue. Handlers run on the subscription goroutines with ctx
// as their parent context.
func Serve(ctx context.Context, conn *nats.Conn, subject, queue string, worker Worker) (*Server, error) {
	s := &Server{
		conn:   conn,
		worker: worker,
		log:    logger.WithComponent("natsworker").WithFields(logger.Fields("subject", subject)),
	}
	handlers := map[string]nats.MsgHandler{
		SubjectPing:       func(m *nats.Msg) { s.ping(ctx, m) },
		SubjectTranscribe: func(m *nats.Msg) { s.run(ctx, m, transcription.TaskTranscribe) },
		SubjectTranslate:  func(m *nats.Msg) { s.run(ctx, m, transcription.TaskTranslate) },
	}
	for suffix, h := range handlers {
		sub, err := conn.QueueSubscribe(subject+"."+suffix, queue, h)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("natsworker: subscribe %s.%s: %w", subject, suffix, err)
		}
		s.subs = append(s.subs, sub)
	}
	// Subscriptions are registered once the server has seen them.
	if err := conn.Flush(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("natsworker: flush: %w", err)
	}
	return s, nil
}

// Close drains the subscriptions.
func (s *Server) Close() error {
	var first error
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *Server) ping(ctx context.Context, m *nats.Msg) {
	if err := s.worker.Ping(ctx); err != nil {
		s.respond(m, Reply{Error: toReplyError(err)})
		return
	}
	if err := m.Respond(nil); err != nil {
		s.log.Warn("failed to answer ping", logger.Fields("error", err.Error()))
	}
}

func (s *Server) run(ctx context.Context, m *nats.Msg, task transcription.Task) {
	var req Request
	if err := json.Unmarshal(m.Data, &req); err != nil {
		s.respond(m, Reply{Error: &ReplyError{Code: errors.ErrCodeInvalidInput, Message: "malformed request: " + err.Error()}})
		return
	}

	in := transcription.Input{
		Audio:       req.Audio,
		Filename:    req.Filename,
		Model:       req.Model,
		Prompt:      req.Options.Prompt,
		Temperature: req.Options.Temperature,
	}
	var (
		res *transcription.Result
		err error
	)
	switch task {
	case transcription.TaskTranscribe:
		granularities := []transcription.Granularity{transcription.GranularitySegment}
		if req.Options.WordTimestamps {
			granularities = append(granularities, transcription.GranularityWord)
		}
		res, err = s.worker.Transcribe(ctx, transcription.NewTranscriptionRequest(in, req.Options.Language, granularities))
	default:
		res, err = s.worker.Translate(ctx, transcription.NewTranslationRequest(in))
	}
	if err != nil {
		s.log.Debug("worker call failed", logger.Fields("task", string(task), "error", err.Error()))
		s.respond(m, Reply{Error: toReplyError(err)})
		return
	}
	s.respond(m, Reply{Result: res})
}

func (s *Server) respond(m *nats.Msg, r Reply) {
	data, err := json.Marshal(r)
	if err != nil {
		s.log.Error("failed to encode reply", logger.Fields("error", err.Error()))
		return
	}
	if err := m.Respond(data); err != nil {
		s.log.Warn("failed to send reply", logger.Fields("error", err.Error()))
	}
}

func toReplyError(err error) *ReplyError {
	if appErr, ok := errors.AsAppError(err); ok {
		return &ReplyError{Code: appErr.Code, Message: appErr.Message}
	}
	return &ReplyError{Code: errors.ErrCodeBackendUnavailable, Message: err.Error()}
}
