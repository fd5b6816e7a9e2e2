package payment

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

func signedHeader(payload []byte, secret string) string {
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func eventPayload(eventType, object string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","object":"event","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, object))
}

func newTestStripe() Provider {
	return NewStripe(StripeConfig{APIKey: "sk_test_123", WebhookSecret: testWebhookSecret})
}

func TestStripeValidateCheckoutParamsCollectsAllFields(t *testing.T) {
	p := newTestStripe()
	err := p.ValidateCheckoutParams(CheckoutParams{Currency: "US"})
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "stripe", ve.Provider)
	assert.Len(t, ve.Fields, 6)
	assert.Contains(t, err.Error(), "amount_cents must be a positive integer")
	assert.Contains(t, err.Error(), "currency must be a 3-letter code")
}

func TestStripeValidateCheckoutParamsOK(t *testing.T) {
	p := newTestStripe()
	err := p.ValidateCheckoutParams(CheckoutParams{
		UserID:      1,
		AmountCents: 1000,
		Credits:     100,
		Currency:    "USD",
		SuccessURL:  "https://app.example.com/success",
		CancelURL:   "https://app.example.com/cancel",
	})
	assert.NoError(t, err)
}

func TestStripeVerifyWebhookCheckoutCompleted(t *testing.T) {
	p := newTestStripe()
	payload := eventPayload("checkout.session.completed",
		`{"id":"cs_test_123","object":"checkout.session","amount_total":5000,"currency":"usd","payment_intent":"pi_123"}`)

	ev, err := p.VerifyWebhook(payload, signedHeader(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	assert.Equal(t, "cs_test_123", ev.SessionID)
	assert.Equal(t, "pi_123", ev.GatewayPaymentID)
	assert.Equal(t, int64(5000), ev.AmountCents)
	assert.Equal(t, "USD", ev.Currency)
}

func TestStripeVerifyWebhookPaymentFailed(t *testing.T) {
	p := newTestStripe()
	payload := eventPayload("payment_intent.payment_failed",
		`{"id":"pi_123","object":"payment_intent","last_payment_error":{"code":"card_declined","message":"Your card was declined."}}`)

	ev, err := p.VerifyWebhook(payload, signedHeader(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, EventPaymentFailed, ev.Type)
	assert.Equal(t, "pi_123", ev.GatewayPaymentID)
	assert.Equal(t, "card_declined", ev.ErrorCode)
}

func TestStripeVerifyWebhookRefunded(t *testing.T) {
	p := newTestStripe()
	payload := eventPayload("charge.refunded",
		`{"id":"ch_123","object":"charge","amount":5000,"amount_refunded":5000,"payment_intent":"pi_123"}`)

	ev, err := p.VerifyWebhook(payload, signedHeader(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, EventRefunded, ev.Type)
	assert.Equal(t, "pi_123", ev.GatewayPaymentID)
	assert.Equal(t, int64(5000), ev.RefundedCents)
	assert.True(t, ev.FullRefund)
}

func TestStripeVerifyWebhookUnknownTypeIgnored(t *testing.T) {
	p := newTestStripe()
	payload := eventPayload("customer.created", `{"id":"cus_123","object":"customer"}`)

	ev, err := p.VerifyWebhook(payload, signedHeader(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, ev.Type)
}

func TestStripeVerifyWebhookBadSignature(t *testing.T) {
	p := newTestStripe()
	payload := eventPayload("checkout.session.completed",
		`{"id":"cs_test_123","object":"checkout.session"}`)

	_, err := p.VerifyWebhook(payload, signedHeader(payload, "whsec_wrong_secret"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSignature))

	// tampered payload invalidates the original signature
	header := signedHeader(payload, testWebhookSecret)
	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = 'X'
	_, err = p.VerifyWebhook(tampered, header)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSignature))
}
