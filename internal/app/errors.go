package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"printer-scheduler/internal/schedule"
)

var (
	ErrNotFound        = errors.New("reservation not found")
	ErrForbidden       = errors.New("reservation belongs to another user")
	ErrUnauthenticated = errors.New("sign in to change reservations")
)

// statusFor maps domain and store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case schedule.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusServiceUnavailable
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}
