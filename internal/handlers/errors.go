package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/esannidhi-api/internal/auth"
	"github.com/harentsoaR/esannidhi-api/internal/otp"
	"github.com/harentsoaR/esannidhi-api/internal/storage"
	"go.uber.org/zap"
)

var errForbidden = errors.New("not allowed to access this record")

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidID),
		errors.Is(err, storage.ErrInvalidInput),
		errors.Is(err, otp.ErrUnknownPurpose),
		errors.Is(err, auth.ErrOTPRequired):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrPhoneTaken),
		errors.Is(err, storage.ErrAlreadyExists),
		errors.Is(err, storage.ErrInvalidTransition),
		errors.Is(err, storage.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotOwner), errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNoSession),
		errors.Is(err, otp.ErrInvalid),
		errors.Is(err, otp.ErrExpired):
		return http.StatusUnauthorized
	case errors.Is(err, otp.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Unexpected errors are logged
// and hidden behind a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
