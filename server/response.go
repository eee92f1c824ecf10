package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/whisper-gateway/errors"
)

// RespondWithError writes err as the JSON error envelope. AppErrors keep
// their status; an oversized body is reported as 413; anything else is a
// generic 500.
func RespondWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusAndBody(err))
}

func statusAndBody(err error) (int, apperrors.ErrorResponse) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus, appErr.ToResponse()
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		tooLarge := apperrors.New(apperrors.ErrCodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge).
			WithDetail("limit_bytes", maxErr.Limit)
		return tooLarge.HTTPStatus, tooLarge.ToResponse()
	}
	return http.StatusInternalServerError, apperrors.Internal(err).ToResponse()
}
