package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Normalized webhook event types dispatched to the settlement layer.
const (
	EventCheckoutCompleted = "checkout.completed"
	EventPaymentFailed     = "payment.failed"
	EventRefunded          = "payment.refunded"
	EventIgnored           = "ignored"
)

// ErrInvalidSignature means the webhook payload failed signature
// verification; the caller must reject with no state change.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// CheckoutParams is the provider-neutral checkout request. Amounts are in
// the currency's minor unit (cents).
type CheckoutParams struct {
	UserID      uint
	AmountCents int64
	Currency    string
	Credits     int64
	SuccessURL  string
	CancelURL   string
	Reference   string
}

// CheckoutSession is the gateway's handle for a checkout attempt. SessionID
// is the idempotency key for the eventual settlement.
type CheckoutSession struct {
	SessionID string
	URL       string
	ExpiresAt time.Time
}

// WebhookEvent is a verified gateway event mapped to provider-neutral
// fields. Callers never branch on gateway-specific payload shapes.
type WebhookEvent struct {
	Type             string
	SessionID        string
	GatewayPaymentID string
	AmountCents      int64
	Currency         string
	ErrorCode        string
	ErrorMessage     string
	RefundedCents    int64
	FullRefund       bool
	Raw              json.RawMessage
}

// ValidationError names every missing or invalid checkout field at once.
type ValidationError struct {
	Provider string
	Fields   []string
}

func (e *ValidationError) Error() string {
	return e.Provider + ": invalid checkout params: " + strings.Join(e.Fields, "; ")
}

// Provider is the capability contract for a payment gateway.
type Provider interface {
	Name() string
	ValidateCheckoutParams(p CheckoutParams) error
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error)
	// VerifyWebhook checks the signature against the exact raw bytes the
	// gateway signed and maps the event into a WebhookEvent. Parsing then
	// re-serializing the body before verification invalidates the signature.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
