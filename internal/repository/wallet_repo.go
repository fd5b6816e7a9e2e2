package repository

import (
	"errors"

	"github.com/sanjay-gangishetty/VideoGen/internal/apperrors"
	"github.com/sanjay-gangishetty/VideoGen/internal/models"

	"gorm.io/gorm"
)

// BalanceChange reports a wallet mutation.
type BalanceChange struct {
	Previous int64 `json:"previous_balance"`
	Current  int64 `json:"current_balance"`
}

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	return getWallet(r.db, userID)
}

func getWallet(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := tx.Where("user_id = ?", userID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, err
	}
	return &w, nil
}

// GetOrCreate returns the user's wallet, opening an empty one for accounts
// that somehow predate wallet bootstrap.
func (r *WalletRepository) GetOrCreate(userID uint) (*models.Wallet, error) {
	w, err := getWallet(r.db, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, apperrors.ErrWalletNotFound) {
		return nil, err
	}
	return r.CreateForUser(userID, 0)
}

// CreateForUser opens a wallet with an opening balance (signup bonus).
func (r *WalletRepository) CreateForUser(userID uint, openingBalance int64) (*models.Wallet, error) {
	w := &models.Wallet{UserID: userID, CurrentBalance: openingBalance}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	if openingBalance > 0 {
		entry := &models.CreditLedgerEntry{
			UserID:       userID,
			Amount:       openingBalance,
			Reason:       "signup bonus",
			BalanceAfter: openingBalance,
		}
		if err := r.db.Create(entry).Error; err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Deduct atomically subtracts amount from the balance and adds it to
// TotalCreditsUsed. The sufficiency check and the mutation are one
// conditional UPDATE, so two concurrent deductions can never both pass
// against a stale balance and overdraw.
func (r *WalletRepository) Deduct(userID uint, amount int64, reason string) (*BalanceChange, error) {
	if amount <= 0 {
		return nil, &apperrors.ValidationError{Fields: []string{"amount must be a positive integer"}}
	}
	var change BalanceChange
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Wallet{}).
			Where("user_id = ? AND current_balance >= ?", userID, amount).
			Updates(map[string]interface{}{
				"current_balance":    gorm.Expr("current_balance - ?", amount),
				"total_credits_used": gorm.Expr("total_credits_used + ?", amount),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			w, err := getWallet(tx, userID)
			if err != nil {
				return err
			}
			return &apperrors.InsufficientCreditsError{
				Required:  amount,
				Available: w.CurrentBalance,
				Shortage:  amount - w.CurrentBalance,
			}
		}
		w, err := getWallet(tx, userID)
		if err != nil {
			return err
		}
		change = BalanceChange{Previous: w.CurrentBalance + amount, Current: w.CurrentBalance}
		entry := &models.CreditLedgerEntry{
			UserID:       userID,
			Amount:       -amount,
			Reason:       reason,
			BalanceAfter: w.CurrentBalance,
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}

// Add atomically increments the balance. No upper bound is enforced here;
// the max-per-operation sanity cap is the caller's responsibility.
func (r *WalletRepository) Add(userID uint, amount int64, reason string) (*BalanceChange, error) {
	if amount <= 0 {
		return nil, &apperrors.ValidationError{Fields: []string{"amount must be a positive integer"}}
	}
	var change *BalanceChange
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		change, txErr = applyCredit(tx, userID, amount, reason, "")
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// applyCredit is the shared atomic increment used by Add and by the
// settlement transaction in the payment repository.
func applyCredit(tx *gorm.DB, userID uint, amount int64, reason, reference string) (*BalanceChange, error) {
	res := tx.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		UpdateColumn("current_balance", gorm.Expr("current_balance + ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrWalletNotFound
	}
	w, err := getWallet(tx, userID)
	if err != nil {
		return nil, err
	}
	entry := &models.CreditLedgerEntry{
		UserID:       userID,
		Amount:       amount,
		Reason:       reason,
		Reference:    reference,
		BalanceAfter: w.CurrentBalance,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return &BalanceChange{Previous: w.CurrentBalance - amount, Current: w.CurrentBalance}, nil
}

// Reset restores the wallet to the system default (test/admin utility).
func (r *WalletRepository) Reset(userID uint, defaultBalance int64) (*models.Wallet, error) {
	res := r.db.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"current_balance":    defaultBalance,
			"total_credits_used": 0,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrWalletNotFound
	}
	return getWallet(r.db, userID)
}

// ListLedger returns the wallet's audit trail, newest first.
func (r *WalletRepository) ListLedger(userID uint, limit, offset int) ([]models.CreditLedgerEntry, error) {
	var entries []models.CreditLedgerEntry
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}
