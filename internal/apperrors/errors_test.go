package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sanjay-gangishetty/VideoGen/pkg/payment"
	"github.com/sanjay-gangishetty/VideoGen/pkg/videogen"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusAndCode(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &ValidationError{Fields: []string{"amount"}}, http.StatusBadRequest, "validation_error"},
		{"provider validation", &videogen.ValidationError{Provider: "heygen", Fields: []string{"prompt"}}, http.StatusBadRequest, "validation_error"},
		{"gateway validation", &payment.ValidationError{Provider: "stripe", Fields: []string{"currency"}}, http.StatusBadRequest, "validation_error"},
		{"unsupported video provider", &videogen.UnsupportedError{Name: "paypal"}, http.StatusBadRequest, "provider_unsupported"},
		{"unsupported gateway", &payment.UnsupportedError{Name: "braintree"}, http.StatusBadRequest, "provider_unsupported"},
		{"bad signature", fmt.Errorf("%w: detail", payment.ErrInvalidSignature), http.StatusBadRequest, "webhook_signature"},
		{"insufficient credits", &InsufficientCreditsError{Required: 200, Available: 120, Shortage: 80}, http.StatusPaymentRequired, "insufficient_credits"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "forbidden"},
		{"wallet missing", ErrWalletNotFound, http.StatusNotFound, "not_found"},
		{"payment missing", ErrPaymentNotFound, http.StatusNotFound, "not_found"},
		{"video missing", ErrVideoNotFound, http.StatusNotFound, "not_found"},
		{"upstream", &UpstreamError{Op: "create checkout session", Err: errors.New("boom")}, http.StatusBadGateway, "upstream_error"},
		{"provider failure", &videogen.ProviderError{Provider: "kie", Message: "down"}, http.StatusBadGateway, "upstream_error"},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, HTTPStatus(tc.err))
			assert.Equal(t, tc.code, Code(tc.err))
		})
	}
}

func TestInsufficientCreditsErrorMessage(t *testing.T) {
	err := &InsufficientCreditsError{Required: 200, Available: 120, Shortage: 80}
	assert.Equal(t, "insufficient credits: required 200, available 120 (short 80)", err.Error())
}

func TestUpstreamErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &UpstreamError{Op: "heygen generate", Err: inner}
	assert.ErrorIs(t, err, inner)
}
