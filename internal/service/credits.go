package service

import (
	"fmt"
	"log"

	"github.com/sanjay-gangishetty/VideoGen/config"
	"github.com/sanjay-gangishetty/VideoGen/internal/apperrors"
	"github.com/sanjay-gangishetty/VideoGen/internal/models"
	"github.com/sanjay-gangishetty/VideoGen/internal/repository"
)

const maxReasonLength = 500

type CreditsService struct {
	cfg     *config.Config
	wallets WalletStore
}

func NewCreditsService(cfg *config.Config, wallets WalletStore) *CreditsService {
	return &CreditsService{cfg: cfg, wallets: wallets}
}

func (s *CreditsService) Balance(userID uint) (*models.Wallet, error) {
	return s.wallets.GetByUserID(userID)
}

// Deduct charges the wallet directly (manual adjustment path, not tied to
// a video job).
func (s *CreditsService) Deduct(userID uint, amount int64, reason string) (*repository.BalanceChange, error) {
	if err := s.validateAdjustment(amount, reason); err != nil {
		return nil, err
	}
	change, err := s.wallets.Deduct(userID, amount, reason)
	if err != nil {
		return nil, err
	}
	log.Printf("[credits] deducted user=%d amount=%d balance=%d", userID, amount, change.Current)
	return change, nil
}

// Add grants credits directly (manual adjustment path).
func (s *CreditsService) Add(userID uint, amount int64, reason string) (*repository.BalanceChange, error) {
	if err := s.validateAdjustment(amount, reason); err != nil {
		return nil, err
	}
	change, err := s.wallets.Add(userID, amount, reason)
	if err != nil {
		return nil, err
	}
	log.Printf("[credits] added user=%d amount=%d balance=%d", userID, amount, change.Current)
	return change, nil
}

// Reset restores the wallet to the signup default and zeroes usage. A
// test/admin utility, not part of the purchase or generation flows.
func (s *CreditsService) Reset(userID uint) (*models.Wallet, error) {
	w, err := s.wallets.Reset(userID, s.cfg.Credits.SignupBonus)
	if err != nil {
		return nil, err
	}
	log.Printf("[credits] reset user=%d balance=%d", userID, w.CurrentBalance)
	return w, nil
}

func (s *CreditsService) Ledger(userID uint, limit, offset int) ([]models.CreditLedgerEntry, error) {
	return s.wallets.ListLedger(userID, limit, offset)
}

func (s *CreditsService) validateAdjustment(amount int64, reason string) error {
	var fields []string
	if amount <= 0 {
		fields = append(fields, "amount must be a positive integer")
	}
	if max := s.cfg.Credits.MaxAdjustment; max > 0 && amount > max {
		fields = append(fields, fmt.Sprintf("amount exceeds the per-operation maximum of %d", max))
	}
	if reason == "" {
		fields = append(fields, "reason is required")
	}
	if len(reason) > maxReasonLength {
		fields = append(fields, fmt.Sprintf("reason must be at most %d characters", maxReasonLength))
	}
	if len(fields) > 0 {
		return &apperrors.ValidationError{Fields: fields}
	}
	return nil
}
