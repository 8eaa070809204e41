package xclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy for the X API. Callers distinguish these so a loop can log
// a clear diagnosis without stopping.
var (
	ErrUnauthorized = errors.New("x api: unauthorized")
	ErrForbidden    = errors.New("x api: forbidden")
	ErrRateLimited  = errors.New("x api: rate limited")
	ErrValidation   = errors.New("invalid tweet")
)

// classify maps an HTTP status to the error taxonomy.
func classify(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("x api status %d", status)
	}
}

// ErrorClass names the taxonomy bucket for logs and metrics.
func ErrorClass(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "generic"
	}
}
