package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/colisso/internal/common"
	"github.com/gin-gonic/gin"
)

// fail writes the error envelope shared by every endpoint.
func fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"status":  "error",
		"message": message,
	})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden),
		errors.Is(err, common.ErrorPaymentRequired):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorConflict),
		errors.Is(err, common.ErrTrackingIDCollision):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// failErr logs unexpected errors and hides their details from the caller.
func (s *HTTPServer) failErr(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"request_id", c.GetString(ctxRequestID),
			"path", c.FullPath(),
			"error", err)
		fail(c, code, "internal server error")
		return
	}

	msg := err.Error()
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		msg = ve.Error()
	}
	fail(c, code, msg)
}
