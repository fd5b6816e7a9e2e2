package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sanjay-gangishetty/VideoGen/pkg/payment"
	"github.com/sanjay-gangishetty/VideoGen/pkg/videogen"
)

var (
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrVideoNotFound   = errors.New("video not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
)

// ValidationError reports every offending input field at once.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// InsufficientCreditsError is a definitive business outcome, never retried.
type InsufficientCreditsError struct {
	Required  int64
	Available int64
	Shortage  int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, available %d (short %d)",
		e.Required, e.Available, e.Shortage)
}

// UpstreamError wraps an external call that failed after retries were exhausted.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// HTTPStatus maps an error to the response status the handlers should use.
func HTTPStatus(err error) int {
	var ve *ValidationError
	var ice *InsufficientCreditsError
	var ue *UpstreamError
	var vve *videogen.ValidationError
	var vue *videogen.UnsupportedError
	var vpe *videogen.ProviderError
	var pve *payment.ValidationError
	var pue *payment.UnsupportedError
	switch {
	case errors.As(err, &ve), errors.As(err, &vve), errors.As(err, &pve),
		errors.As(err, &vue), errors.As(err, &pue):
		return http.StatusBadRequest
	case errors.Is(err, payment.ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.As(err, &ice):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrWalletNotFound), errors.Is(err, ErrPaymentNotFound),
		errors.Is(err, ErrVideoNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.As(err, &ue), errors.As(err, &vpe):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Code returns the stable machine-readable error string for a response body.
func Code(err error) string {
	var ve *ValidationError
	var ice *InsufficientCreditsError
	var ue *UpstreamError
	var vve *videogen.ValidationError
	var vue *videogen.UnsupportedError
	var vpe *videogen.ProviderError
	var pve *payment.ValidationError
	var pue *payment.UnsupportedError
	switch {
	case errors.As(err, &ve), errors.As(err, &vve), errors.As(err, &pve):
		return "validation_error"
	case errors.As(err, &vue), errors.As(err, &pue):
		return "provider_unsupported"
	case errors.Is(err, payment.ErrInvalidSignature):
		return "webhook_signature"
	case errors.As(err, &ice):
		return "insufficient_credits"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrWalletNotFound), errors.Is(err, ErrPaymentNotFound),
		errors.Is(err, ErrVideoNotFound), errors.Is(err, ErrUserNotFound):
		return "not_found"
	case errors.As(err, &ue), errors.As(err, &vpe):
		return "upstream_error"
	}
	return "internal_error"
}
