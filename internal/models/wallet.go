package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet is the authoritative per-user credit balance. CurrentBalance must
// never go negative; TotalCreditsUsed only increases. Both are mutated
// exclusively through the atomic repository operations.
type Wallet struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentBalance   int64          `gorm:"not null;default:0" json:"current_balance"`
	TotalCreditsUsed int64          `gorm:"not null;default:0" json:"total_credits_used"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
