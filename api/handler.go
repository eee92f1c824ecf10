package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisper-gateway/logger"
	"github.com/kbukum/whisper-gateway/server"
	"github.com/kbukum/whisper-gateway/transcription"
)

// Dispatcher runs a validated request against the backends.
type Dispatcher interface {
	Dispatch(ctx context.Context, req transcription.Request) (*transcription.Output, error)
}

// Handler serves the audio endpoints.
type Handler struct {
	dispatcher Dispatcher
	log        *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(d Dispatcher, log *logger.Logger) *Handler {
	return &Handler{dispatcher: d, log: log.WithComponent("api")}
}

// Register mounts the endpoints on r, usually the /v1 API group.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/audio/transcriptions", h.Transcriptions)
	r.POST("/audio/translations", h.Translations)
}

// Transcriptions handles POST /v1/audio/transcriptions.
func (h *Handler) Transcriptions(c *gin.Context) {
	req, err := readTranscription(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.dispatch(c, req)
}

// Translations handles POST /v1/audio/translations.
func (h *Handler) Translations(c *gin.Context) {
	req, err := readTranslation(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.dispatch(c, req)
}

func (h *Handler) dispatch(c *gin.Context, req transcription.Request) {
	ctx := c.Request.Context()
	out, err := h.dispatcher.Dispatch(ctx, req)
	if err != nil {
		h.log.WithContext(ctx).Debug("Request failed", logger.Fields(
			"task", string(req.Task()),
			"response_format", string(req.Common().ResponseFormat),
			"error", err.Error(),
		))
		server.RespondWithError(c, err)
		return
	}
	if out.Format.IsText() {
		c.Data(http.StatusOK, out.ContentType(), []byte(out.Text))
		return
	}
	c.JSON(http.StatusOK, out.JSON)
}
