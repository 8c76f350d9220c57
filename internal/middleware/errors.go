package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jfcardenasg/corredash/internal/apperrors"
	"github.com/jfcardenasg/corredash/internal/domain/dto"
	"github.com/jfcardenasg/corredash/internal/logger"
)

// ErrorHandler is a Gin middleware that converts errors attached to the
// context (via c.Error) into a standardized JSON response after the
// handlers run.
//
// Status mapping follows the service error taxonomy:
//   - apperrors.ErrInvalidParameter    → 400
//   - apperrors.ErrUnauthorized        → 401
//   - apperrors.ErrUpstreamUnavailable → 503
//   - anything else                    → 500
//
// Handlers that already wrote a response are left alone.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}

	// Only the last error drives the response; all are logged.
	for _, e := range c.Errors {
		logger.L().Error().
			Str("path", c.Request.URL.Path).
			Err(e.Err).
			Msg("request error")
	}

	if c.Writer.Written() {
		return
	}

	err := c.Errors.Last().Err
	switch {
	case errors.Is(err, apperrors.ErrInvalidParameter):
		c.AbortWithStatusJSON(http.StatusBadRequest,
			dto.NewErrorResponseWithCode("invalid_parameter", "invalid request parameters", err))
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			dto.NewErrorResponseWithCode("unauthorized", "authentication required", err))
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable,
			dto.NewErrorResponseWithCode("upstream_unavailable", "data store unreachable", err))
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			dto.NewErrorResponse("Internal server error", err))
	}
}

// AbortWithError is a handler helper: it logs err, writes a JSON
// ErrorResponse with the given status, and aborts the chain.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		logger.L().Error().
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Err(err).
			Msg(message)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
