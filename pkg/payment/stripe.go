package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/webhook"
)

// StripeConfig configures the Stripe gateway.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
}

// StripeProvider sells credits through Stripe Checkout and settles from
// signed webhook events.
type StripeProvider struct {
	cfg StripeConfig
}

func NewStripe(cfg StripeConfig) Provider {
	stripe.Key = cfg.APIKey
	return &StripeProvider{cfg: cfg}
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) ValidateCheckoutParams(params CheckoutParams) error {
	var fields []string
	if params.UserID == 0 {
		fields = append(fields, "user_id is required")
	}
	if params.AmountCents <= 0 {
		fields = append(fields, "amount_cents must be a positive integer")
	}
	if params.Credits <= 0 {
		fields = append(fields, "credits must be a positive integer")
	}
	if len(params.Currency) != 3 {
		fields = append(fields, "currency must be a 3-letter code")
	}
	if params.SuccessURL == "" {
		fields = append(fields, "success_url is required")
	}
	if params.CancelURL == "" {
		fields = append(fields, "cancel_url is required")
	}
	if len(fields) > 0 {
		return &ValidationError{Provider: p.Name(), Fields: fields}
	}
	return nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if err := p.ValidateCheckoutParams(params); err != nil {
		return nil, err
	}
	sessParams := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(params.SuccessURL),
		CancelURL:         stripe.String(params.CancelURL),
		ClientReferenceID: stripe.String(params.Reference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(params.Currency)),
				UnitAmount: stripe.Int64(params.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%d video credits", params.Credits)),
				},
			},
		}},
	}
	sessParams.Context = ctx
	sessParams.AddMetadata("user_id", fmt.Sprintf("%d", params.UserID))
	sessParams.AddMetadata("credits", fmt.Sprintf("%d", params.Credits))
	sess, err := session.New(sessParams)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &CheckoutSession{
		SessionID: sess.ID,
		URL:       sess.URL,
		ExpiresAt: time.Unix(sess.ExpiresAt, 0),
	}, nil
}

// VerifyWebhook verifies the Stripe-Signature header over the raw payload
// and maps the event to a normalized WebhookEvent. Unrecognized event types
// come back as EventIgnored so the caller can acknowledge without erroring.
func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("stripe checkout.session.completed payload: %w", err)
		}
		ev := &WebhookEvent{
			Type:        EventCheckoutCompleted,
			SessionID:   sess.ID,
			AmountCents: sess.AmountTotal,
			Currency:    strings.ToUpper(string(sess.Currency)),
			Raw:         event.Data.Raw,
		}
		if sess.PaymentIntent != nil {
			ev.GatewayPaymentID = sess.PaymentIntent.ID
		}
		return ev, nil
	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("stripe payment_intent.payment_failed payload: %w", err)
		}
		ev := &WebhookEvent{
			Type:             EventPaymentFailed,
			GatewayPaymentID: pi.ID,
			Raw:              event.Data.Raw,
		}
		if pi.LastPaymentError != nil {
			ev.ErrorCode = string(pi.LastPaymentError.Code)
			ev.ErrorMessage = pi.LastPaymentError.Msg
		}
		return ev, nil
	case "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("stripe charge.refunded payload: %w", err)
		}
		ev := &WebhookEvent{
			Type:          EventRefunded,
			RefundedCents: ch.AmountRefunded,
			FullRefund:    ch.AmountRefunded >= ch.Amount,
			Raw:           event.Data.Raw,
		}
		if ch.PaymentIntent != nil {
			ev.GatewayPaymentID = ch.PaymentIntent.ID
		}
		return ev, nil
	}
	return &WebhookEvent{Type: EventIgnored, Raw: event.Data.Raw}, nil
}
