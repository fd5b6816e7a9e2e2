package service

import (
	"context"
	"testing"

	"github.com/sanjay-gangishetty/VideoGen/config"
	"github.com/sanjay-gangishetty/VideoGen/internal/apperrors"
	"github.com/sanjay-gangishetty/VideoGen/internal/domain"
	"github.com/sanjay-gangishetty/VideoGen/internal/models"
	"github.com/sanjay-gangishetty/VideoGen/internal/repository"
	"github.com/sanjay-gangishetty/VideoGen/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePaymentStore keeps payments in memory and mimics the repository's
// settlement semantics, including the duplicate-delivery short circuit.
type fakePaymentStore struct {
	nextID   uint
	bySess   map[string]*models.Payment
	balances map[uint]int64
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{
		nextID:   1,
		bySess:   make(map[string]*models.Payment),
		balances: make(map[uint]int64),
	}
}

func (f *fakePaymentStore) Create(p *models.Payment) error {
	p.ID = f.nextID
	f.nextID++
	f.bySess[p.GatewaySessionID] = p
	return nil
}

func (f *fakePaymentStore) GetBySessionID(sessionID string) (*models.Payment, error) {
	p, ok := f.bySess[sessionID]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakePaymentStore) SettleCompleted(sessionID, gatewayPaymentID string) (*repository.SettleResult, error) {
	p, ok := f.bySess[sessionID]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	if p.Status == domain.PaymentStatusCompleted {
		return &repository.SettleResult{AlreadyCompleted: true, Payment: p}, nil
	}
	p.Status = domain.PaymentStatusCompleted
	if gatewayPaymentID != "" {
		p.GatewayPaymentID = &gatewayPaymentID
	}
	prev := f.balances[p.UserID]
	f.balances[p.UserID] = prev + p.CreditsAwarded
	return &repository.SettleResult{
		Payment: p,
		Balance: &repository.BalanceChange{Previous: prev, Current: f.balances[p.UserID]},
	}, nil
}

func (f *fakePaymentStore) findByGatewayID(id string) *models.Payment {
	for _, p := range f.bySess {
		if p.GatewayPaymentID != nil && *p.GatewayPaymentID == id {
			return p
		}
	}
	return nil
}

func (f *fakePaymentStore) MarkFailed(gatewayPaymentID, code, message string) (*models.Payment, error) {
	p := f.findByGatewayID(gatewayPaymentID)
	if p == nil {
		return nil, apperrors.ErrPaymentNotFound
	}
	if p.Status == domain.PaymentStatusPending {
		p.Status = domain.PaymentStatusFailed
	}
	return p, nil
}

func (f *fakePaymentStore) MarkRefunded(gatewayPaymentID string, refundedCents int64, full bool) (*models.Payment, error) {
	p := f.findByGatewayID(gatewayPaymentID)
	if p == nil {
		return nil, apperrors.ErrPaymentNotFound
	}
	if p.Status == domain.PaymentStatusCompleted {
		p.Status = domain.PaymentStatusRefunded
	}
	return p, nil
}

func (f *fakePaymentStore) ListByUser(userID uint, status string, limit, offset int) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.bySess {
		if p.UserID == userID && (status == "" || p.Status == status) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentStore) StatsForUser(userID uint) (*repository.PaymentStats, error) {
	stats := &repository.PaymentStats{}
	for _, p := range f.bySess {
		if p.UserID == userID && p.Status == domain.PaymentStatusCompleted {
			stats.Count++
			stats.TotalAmountCents += p.AmountCents
			stats.TotalCredits += p.CreditsAwarded
		}
	}
	return stats, nil
}

// fakeGateway returns a deterministic session and verifies nothing.
type fakeGateway struct {
	sessionID string
}

func (g *fakeGateway) Name() string                                          { return "fake" }
func (g *fakeGateway) ValidateCheckoutParams(p payment.CheckoutParams) error { return nil }
func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, p payment.CheckoutParams) (*payment.CheckoutSession, error) {
	return &payment.CheckoutSession{SessionID: g.sessionID, URL: "https://pay.example.com/" + g.sessionID}, nil
}
func (g *fakeGateway) VerifyWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	return &payment.WebhookEvent{Type: payment.EventIgnored}, nil
}

func settlementTestConfig() *config.Config {
	return &config.Config{
		Payment: config.PaymentConfig{
			Gateway:    "fake",
			Currency:   "USD",
			SuccessURL: "https://app.example.com/success",
			CancelURL:  "https://app.example.com/cancel",
		},
		Credits: config.CreditsConfig{
			PricePerCreditCents: 10,
			MinPurchase:         10,
			MaxPurchase:         10000,
			MaxPaymentCents:     50000,
		},
	}
}

func newSettlementFixture(t *testing.T) (*SettlementService, *fakePaymentStore) {
	t.Helper()
	store := newFakePaymentStore()
	factory := payment.NewFactory()
	factory.Register("fake", func() payment.Provider {
		return &fakeGateway{sessionID: "sess-abc"}
	})
	return NewSettlementService(settlementTestConfig(), store, factory), store
}

func TestInitiateCheckout(t *testing.T) {
	svc, store := newSettlementFixture(t)

	result, err := svc.InitiateCheckout(context.Background(), 7, 100)
	require.NoError(t, err)
	assert.Equal(t, "sess-abc", result.SessionID)
	assert.Equal(t, int64(1000), result.AmountCents)
	assert.Equal(t, "10.00", result.Amount)
	assert.Equal(t, int64(100), result.Credits)
	assert.Equal(t, "https://pay.example.com/sess-abc", result.CheckoutURL)

	p, err := store.GetBySessionID("sess-abc")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, p.Status)
	assert.Equal(t, uint(7), p.UserID)
	assert.Equal(t, int64(100), p.CreditsAwarded)
	assert.Equal(t, "fake", p.Gateway)
}

func TestInitiateCheckoutRejectsOutOfRangeCredits(t *testing.T) {
	svc, _ := newSettlementFixture(t)

	_, err := svc.InitiateCheckout(context.Background(), 7, 5)
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = svc.InitiateCheckout(context.Background(), 7, 20000)
	require.ErrorAs(t, err, &ve)
}

func TestInitiateCheckoutRejectsOverPaymentCap(t *testing.T) {
	svc, _ := newSettlementFixture(t)

	// 6000 credits * 10 cents = 60000 cents > 50000 cap
	_, err := svc.InitiateCheckout(context.Background(), 7, 6000)
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "per-payment maximum")
}

func TestHandleEventCompletedIsIdempotent(t *testing.T) {
	svc, store := newSettlementFixture(t)
	_, err := svc.InitiateCheckout(context.Background(), 7, 100)
	require.NoError(t, err)

	ev := &payment.WebhookEvent{
		Type:             payment.EventCheckoutCompleted,
		SessionID:        "sess-abc",
		GatewayPaymentID: "pi_123",
	}
	outcome, err := svc.HandleEvent(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, outcome.Handled)
	assert.False(t, outcome.Duplicate)
	assert.Equal(t, int64(100), store.balances[7])

	// second delivery of the same event credits nothing
	outcome, err = svc.HandleEvent(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, outcome.Duplicate)
	assert.Equal(t, int64(100), store.balances[7])
}

func TestHandleEventCompletedUnknownSession(t *testing.T) {
	svc, _ := newSettlementFixture(t)
	_, err := svc.HandleEvent(context.Background(), &payment.WebhookEvent{
		Type:      payment.EventCheckoutCompleted,
		SessionID: "sess-unknown",
	})
	require.ErrorIs(t, err, apperrors.ErrPaymentNotFound)
}

func TestHandleEventFailedUnknownPaymentIsAcked(t *testing.T) {
	svc, _ := newSettlementFixture(t)
	outcome, err := svc.HandleEvent(context.Background(), &payment.WebhookEvent{
		Type:             payment.EventPaymentFailed,
		GatewayPaymentID: "pi_unknown",
	})
	require.NoError(t, err)
	assert.False(t, outcome.Handled)
}

func TestHandleEventRefundDoesNotTouchWallet(t *testing.T) {
	svc, store := newSettlementFixture(t)
	_, err := svc.InitiateCheckout(context.Background(), 7, 100)
	require.NoError(t, err)

	_, err = svc.HandleEvent(context.Background(), &payment.WebhookEvent{
		Type:             payment.EventCheckoutCompleted,
		SessionID:        "sess-abc",
		GatewayPaymentID: "pi_123",
	})
	require.NoError(t, err)
	require.Equal(t, int64(100), store.balances[7])

	outcome, err := svc.HandleEvent(context.Background(), &payment.WebhookEvent{
		Type:             payment.EventRefunded,
		GatewayPaymentID: "pi_123",
		RefundedCents:    1000,
		FullRefund:       true,
	})
	require.NoError(t, err)
	assert.True(t, outcome.Handled)
	assert.Equal(t, domain.PaymentStatusRefunded, outcome.Status)
	// credits already granted stay granted; refunds are gateway-side only
	assert.Equal(t, int64(100), store.balances[7])
}

func TestHandleEventFailedAfterSettlementLeavesCompleted(t *testing.T) {
	svc, store := newSettlementFixture(t)
	_, err := svc.InitiateCheckout(context.Background(), 7, 100)
	require.NoError(t, err)

	_, err = svc.HandleEvent(context.Background(), &payment.WebhookEvent{
		Type:             payment.EventCheckoutCompleted,
		SessionID:        "sess-abc",
		GatewayPaymentID: "pi_123",
	})
	require.NoError(t, err)

	// a late failure delivery must not regress the settled payment
	_, err = svc.HandleEvent(context.Background(), &payment.WebhookEvent{
		Type:             payment.EventPaymentFailed,
		GatewayPaymentID: "pi_123",
		ErrorCode:        "card_declined",
	})
	require.NoError(t, err)

	p, err := store.GetBySessionID("sess-abc")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, p.Status)
	assert.Equal(t, int64(100), store.balances[7])
}

func TestConfirmSuccessForeignPayment(t *testing.T) {
	svc, _ := newSettlementFixture(t)
	_, err := svc.InitiateCheckout(context.Background(), 7, 100)
	require.NoError(t, err)

	_, err = svc.ConfirmSuccess(99, "sess-abc")
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	p, err := svc.ConfirmSuccess(7, "sess-abc")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, p.Status)
}

func TestHistoryRejectsBadStatusFilter(t *testing.T) {
	svc, _ := newSettlementFixture(t)
	_, _, err := svc.History(7, "BOGUS", 20, 0)
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)

	_, _, err = svc.History(7, domain.PaymentStatusCompleted, 20, 0)
	require.NoError(t, err)
}
