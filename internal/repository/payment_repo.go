package repository

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/sanjay-gangishetty/VideoGen/internal/apperrors"
	"github.com/sanjay-gangishetty/VideoGen/internal/domain"
	"github.com/sanjay-gangishetty/VideoGen/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettleResult reports one settlement attempt. AlreadyCompleted means the
// event was a duplicate delivery and nothing was mutated.
type SettleResult struct {
	AlreadyCompleted bool
	Payment          *models.Payment
	Balance          *BalanceChange
}

// PaymentStats aggregates a user's completed payments.
type PaymentStats struct {
	Count            int64 `json:"count"`
	TotalAmountCents int64 `json:"total_amount_cents"`
	TotalCredits     int64 `json:"total_credits"`
}

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetBySessionID(sessionID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Where("gateway_session_id = ?", sessionID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByGatewayPaymentID(gatewayPaymentID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Where("gateway_payment_id = ?", gatewayPaymentID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SettleCompleted flips the payment to COMPLETED and credits the wallet by
// CreditsAwarded in one transaction. The status flip is a conditional
// UPDATE guarded on status, so two concurrent deliveries of the same event
// cannot both credit the wallet: the loser sees zero rows affected and
// reports AlreadyCompleted.
func (r *PaymentRepository) SettleCompleted(sessionID, gatewayPaymentID string) (*SettleResult, error) {
	var out SettleResult
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var p models.Payment
		if err := tx.Where("gateway_session_id = ?", sessionID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPaymentNotFound
			}
			return err
		}
		if p.Status == domain.PaymentStatusCompleted {
			out = SettleResult{AlreadyCompleted: true, Payment: &p}
			return nil
		}
		now := time.Now()
		updates := map[string]interface{}{
			"status":       domain.PaymentStatusCompleted,
			"completed_at": now,
		}
		if gatewayPaymentID != "" {
			updates["gateway_payment_id"] = gatewayPaymentID
		}
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status <> ?", p.ID, domain.PaymentStatusCompleted).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost the race to a concurrent delivery of the same event
			out = SettleResult{AlreadyCompleted: true, Payment: &p}
			return nil
		}
		change, err := applyCredit(tx, p.UserID, p.CreditsAwarded, "payment settlement", sessionID)
		if err != nil {
			return err
		}
		p.Status = domain.PaymentStatusCompleted
		p.CompletedAt = &now
		if gatewayPaymentID != "" {
			p.GatewayPaymentID = &gatewayPaymentID
		}
		out = SettleResult{Payment: &p, Balance: change}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkFailed moves a PENDING payment to FAILED and appends the gateway's
// failure detail into the metadata bag. No wallet mutation. The read and
// the conditional update run in one transaction under a row lock so a
// concurrent delivery cannot interleave with the metadata merge.
func (r *PaymentRepository) MarkFailed(gatewayPaymentID, code, message string) (*models.Payment, error) {
	return r.transition(gatewayPaymentID, domain.PaymentStatusPending, domain.PaymentStatusFailed,
		"failure", map[string]interface{}{
			"code":    code,
			"message": message,
			"at":      time.Now().Format(time.RFC3339),
		})
}

// MarkRefunded moves a COMPLETED payment to REFUNDED and records the
// refunded amount. Wallet reversal is deliberately left to the caller's
// policy and never done here.
func (r *PaymentRepository) MarkRefunded(gatewayPaymentID string, refundedCents int64, full bool) (*models.Payment, error) {
	return r.transition(gatewayPaymentID, domain.PaymentStatusCompleted, domain.PaymentStatusRefunded,
		"refund", map[string]interface{}{
			"refunded_cents": refundedCents,
			"full":           full,
			"at":             time.Now().Format(time.RFC3339),
		})
}

// transition flips a payment from one status to another, merging detail
// into the metadata bag under key. The status guard on the UPDATE keeps
// the flip conditional even if the lock is unavailable (e.g. sqlite).
func (r *PaymentRepository) transition(gatewayPaymentID, from, to, key string, detail map[string]interface{}) (*models.Payment, error) {
	var out models.Payment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var p models.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("gateway_payment_id = ?", gatewayPaymentID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPaymentNotFound
			}
			return err
		}
		meta := decodeMetadata(p.Metadata)
		meta[key] = detail
		encoded := encodeMetadata(meta)
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", p.ID, from).
			Updates(map[string]interface{}{
				"status":   to,
				"metadata": encoded,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			p.Status = to
			p.Metadata = encoded
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByUser returns the user's payments, newest first, optionally
// filtered by status.
func (r *PaymentRepository) ListByUser(userID uint, status string, limit, offset int) ([]models.Payment, error) {
	q := r.db.Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var payments []models.Payment
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&payments).Error
	return payments, err
}

// StatsForUser aggregates the user's COMPLETED payments only.
func (r *PaymentRepository) StatsForUser(userID uint) (*PaymentStats, error) {
	var stats PaymentStats
	err := r.db.Model(&models.Payment{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount_cents), 0) AS total_amount_cents, COALESCE(SUM(credits_awarded), 0) AS total_credits").
		Where("user_id = ? AND status = ?", userID, domain.PaymentStatusCompleted).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func decodeMetadata(raw string) map[string]interface{} {
	meta := map[string]interface{}{}
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &meta)
	}
	return meta
}

func encodeMetadata(meta map[string]interface{}) string {
	b, _ := json.Marshal(meta)
	return string(b)
}
