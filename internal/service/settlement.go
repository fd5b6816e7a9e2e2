package service

import (
	"context"
	"fmt"
	"log"

	"github.com/sanjay-gangishetty/VideoGen/config"
	"github.com/sanjay-gangishetty/VideoGen/internal/apperrors"
	"github.com/sanjay-gangishetty/VideoGen/internal/domain"
	"github.com/sanjay-gangishetty/VideoGen/internal/models"
	"github.com/sanjay-gangishetty/VideoGen/internal/repository"
	"github.com/sanjay-gangishetty/VideoGen/pkg/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStore is the persistence surface the settlement service needs.
type PaymentStore interface {
	Create(p *models.Payment) error
	GetBySessionID(sessionID string) (*models.Payment, error)
	SettleCompleted(sessionID, gatewayPaymentID string) (*repository.SettleResult, error)
	MarkFailed(gatewayPaymentID, code, message string) (*models.Payment, error)
	MarkRefunded(gatewayPaymentID string, refundedCents int64, full bool) (*models.Payment, error)
	ListByUser(userID uint, status string, limit, offset int) ([]models.Payment, error)
	StatsForUser(userID uint) (*repository.PaymentStats, error)
}

// CheckoutResult is returned to the buyer after a checkout session is opened.
type CheckoutResult struct {
	PaymentID   uint   `json:"payment_id"`
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
	Credits     int64  `json:"credits"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"` // major units, for display
	Currency    string `json:"currency"`
}

// EventOutcome reports what a webhook delivery did.
type EventOutcome struct {
	Handled   bool   `json:"handled"`
	Duplicate bool   `json:"duplicate"`
	Status    string `json:"status,omitempty"`
	PaymentID uint   `json:"payment_id,omitempty"`
}

type SettlementService struct {
	cfg       *config.Config
	payments  PaymentStore
	providers *payment.Factory
}

func NewSettlementService(cfg *config.Config, payments PaymentStore, providers *payment.Factory) *SettlementService {
	return &SettlementService{cfg: cfg, payments: payments, providers: providers}
}

// InitiateCheckout prices the requested credits, opens a gateway checkout
// session and records a PENDING payment keyed by the session id. The
// amount and credit count are fixed here and never recomputed at
// settlement time.
func (s *SettlementService) InitiateCheckout(ctx context.Context, userID uint, credits int64) (*CheckoutResult, error) {
	cc := s.cfg.Credits
	if credits < cc.MinPurchase || credits > cc.MaxPurchase {
		return nil, &apperrors.ValidationError{Fields: []string{
			fmt.Sprintf("credits must be between %d and %d", cc.MinPurchase, cc.MaxPurchase),
		}}
	}
	amountCents := credits * cc.PricePerCreditCents
	if cc.MaxPaymentCents > 0 && amountCents > cc.MaxPaymentCents {
		return nil, &apperrors.ValidationError{Fields: []string{
			fmt.Sprintf("amount %d exceeds the per-payment maximum of %d cents", amountCents, cc.MaxPaymentCents),
		}}
	}

	gateway, err := s.providers.New(s.cfg.Payment.Gateway)
	if err != nil {
		return nil, err
	}

	params := payment.CheckoutParams{
		UserID:      userID,
		AmountCents: amountCents,
		Currency:    s.cfg.Payment.Currency,
		Credits:     credits,
		SuccessURL:  s.cfg.Payment.SuccessURL,
		CancelURL:   s.cfg.Payment.CancelURL,
		Reference:   uuid.NewString(),
	}
	if err := gateway.ValidateCheckoutParams(params); err != nil {
		return nil, err
	}
	sess, err := gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, &apperrors.UpstreamError{Op: "create checkout session", Err: err}
	}

	p := &models.Payment{
		UserID:           userID,
		AmountCents:      amountCents,
		Currency:         s.cfg.Payment.Currency,
		CreditsAwarded:   credits,
		Gateway:          gateway.Name(),
		GatewaySessionID: sess.SessionID,
		Status:           domain.PaymentStatusPending,
	}
	if err := s.payments.Create(p); err != nil {
		return nil, err
	}
	log.Printf("[settlement] checkout opened user=%d payment=%d session=%s credits=%d amount=%d",
		userID, p.ID, sess.SessionID, credits, amountCents)

	return &CheckoutResult{
		PaymentID:   p.ID,
		SessionID:   sess.SessionID,
		CheckoutURL: sess.URL,
		Credits:     credits,
		AmountCents: amountCents,
		Amount:      formatCents(amountCents),
		Currency:    s.cfg.Payment.Currency,
	}, nil
}

// HandleEvent applies one verified webhook event. Re-delivery of a
// completed checkout is acknowledged without a second wallet credit.
// Failure and refund events for payments the gateway knows but we do not
// are acknowledged as no-ops so the gateway stops retrying them.
func (s *SettlementService) HandleEvent(ctx context.Context, ev *payment.WebhookEvent) (*EventOutcome, error) {
	switch ev.Type {
	case payment.EventCheckoutCompleted:
		res, err := s.payments.SettleCompleted(ev.SessionID, ev.GatewayPaymentID)
		if err != nil {
			return nil, err
		}
		if res.AlreadyCompleted {
			log.Printf("[settlement] duplicate completion session=%s payment=%d", ev.SessionID, res.Payment.ID)
			return &EventOutcome{Handled: true, Duplicate: true, Status: res.Payment.Status, PaymentID: res.Payment.ID}, nil
		}
		log.Printf("[settlement] completed session=%s payment=%d credits=%d balance=%d",
			ev.SessionID, res.Payment.ID, res.Payment.CreditsAwarded, res.Balance.Current)
		return &EventOutcome{Handled: true, Status: res.Payment.Status, PaymentID: res.Payment.ID}, nil

	case payment.EventPaymentFailed:
		p, err := s.payments.MarkFailed(ev.GatewayPaymentID, ev.ErrorCode, ev.ErrorMessage)
		if err != nil {
			if err == apperrors.ErrPaymentNotFound {
				log.Printf("[settlement] failure event for unknown payment id=%s, ignoring", ev.GatewayPaymentID)
				return &EventOutcome{Handled: false}, nil
			}
			return nil, err
		}
		log.Printf("[settlement] payment failed id=%d code=%s", p.ID, ev.ErrorCode)
		return &EventOutcome{Handled: true, Status: p.Status, PaymentID: p.ID}, nil

	case payment.EventRefunded:
		p, err := s.payments.MarkRefunded(ev.GatewayPaymentID, ev.RefundedCents, ev.FullRefund)
		if err != nil {
			if err == apperrors.ErrPaymentNotFound {
				log.Printf("[settlement] refund event for unknown payment id=%s, ignoring", ev.GatewayPaymentID)
				return &EventOutcome{Handled: false}, nil
			}
			return nil, err
		}
		log.Printf("[settlement] refunded id=%d cents=%d full=%v", p.ID, ev.RefundedCents, ev.FullRefund)
		return &EventOutcome{Handled: true, Status: p.Status, PaymentID: p.ID}, nil
	}
	return &EventOutcome{Handled: false}, nil
}

// ConfirmSuccess is the buyer landing back from the gateway. It only
// reads state; the source of truth for settlement is the webhook.
func (s *SettlementService) ConfirmSuccess(userID uint, sessionID string) (*models.Payment, error) {
	p, err := s.payments.GetBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return p, nil
}

// History lists the user's payments with aggregate stats.
func (s *SettlementService) History(userID uint, status string, limit, offset int) ([]models.Payment, *repository.PaymentStats, error) {
	if status != "" && !domain.IsValidPaymentStatus(status) {
		return nil, nil, &apperrors.ValidationError{Fields: []string{"status must be one of PENDING, COMPLETED, FAILED, REFUNDED"}}
	}
	payments, err := s.payments.ListByUser(userID, status, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.payments.StatsForUser(userID)
	if err != nil {
		return nil, nil, err
	}
	return payments, stats, nil
}

// formatCents renders minor units as a major-unit decimal string ("1050" -> "10.50").
func formatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
