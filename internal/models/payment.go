package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment is one row per checkout attempt. GatewaySessionID is the
// idempotency key for settlement; the unique indexes on both gateway ids
// are part of the duplicate-delivery defense. CreditsAwarded is fixed at
// creation and never recomputed.
type Payment struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	AmountCents      int64          `gorm:"not null" json:"amount_cents"` // minor units
	Currency         string         `gorm:"size:3;default:'USD'" json:"currency"`
	CreditsAwarded   int64          `gorm:"not null" json:"credits_awarded"`
	Gateway          string         `gorm:"size:50;not null" json:"gateway"`
	GatewaySessionID string         `gorm:"size:255;uniqueIndex;not null" json:"gateway_session_id"`
	GatewayPaymentID *string        `gorm:"size:255;uniqueIndex" json:"gateway_payment_id,omitempty"` // nil until the gateway confirms
	Status           string         `gorm:"size:20;not null;index" json:"status"`                     // PENDING, COMPLETED, FAILED, REFUNDED
	Metadata         string         `gorm:"type:text" json:"metadata,omitempty"`                      // JSON bag for error detail / audit
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
