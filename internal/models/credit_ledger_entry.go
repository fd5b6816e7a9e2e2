package models

import "time"

// CreditLedgerEntry records every wallet credit/debit for audit history.
// The wallet's running counters remain the source of truth; this table is
// read-only auditing, appended inside the same transaction as the mutation.
type CreditLedgerEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Amount       int64     `gorm:"not null" json:"amount"` // positive = credit, negative = debit
	Reason       string    `gorm:"size:500" json:"reason"`
	Reference    string    `gorm:"size:128" json:"reference,omitempty"` // e.g. gateway session id, video log id
	BalanceAfter int64     `gorm:"not null" json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (CreditLedgerEntry) TableName() string {
	return "credit_ledger_entries"
}
