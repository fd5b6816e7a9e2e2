package service

import (
	"strings"
	"testing"

	"github.com/sanjay-gangishetty/VideoGen/config"
	"github.com/sanjay-gangishetty/VideoGen/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCreditsFixture() (*CreditsService, *fakeWalletStore) {
	wallets := newFakeWalletStore()
	cfg := &config.Config{
		Credits: config.CreditsConfig{MaxAdjustment: 10000},
	}
	return NewCreditsService(cfg, wallets), wallets
}

func TestCreditsAdjustments(t *testing.T) {
	svc, wallets := newCreditsFixture()
	wallets.balances[1] = 100

	change, err := svc.Add(1, 50, "promo grant")
	require.NoError(t, err)
	assert.Equal(t, int64(150), change.Current)

	change, err = svc.Deduct(1, 30, "manual correction")
	require.NoError(t, err)
	assert.Equal(t, int64(120), change.Current)
}

func TestCreditsAdjustmentValidation(t *testing.T) {
	svc, wallets := newCreditsFixture()
	wallets.balances[1] = 100

	var ve *apperrors.ValidationError

	_, err := svc.Add(1, 0, "reason")
	require.ErrorAs(t, err, &ve)

	_, err = svc.Add(1, 20000, "reason") // over MaxAdjustment
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "per-operation maximum")

	_, err = svc.Deduct(1, 10, "")
	require.ErrorAs(t, err, &ve)

	_, err = svc.Deduct(1, 10, strings.Repeat("x", 501))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, int64(100), wallets.balances[1], "nothing applied on validation failure")
}

func TestCreditsReset(t *testing.T) {
	wallets := newFakeWalletStore()
	cfg := &config.Config{
		Credits: config.CreditsConfig{MaxAdjustment: 10000, SignupBonus: 10},
	}
	svc := NewCreditsService(cfg, wallets)
	wallets.balances[1] = 4200

	w, err := svc.Reset(1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), w.CurrentBalance)
	assert.Equal(t, int64(10), wallets.balances[1])

	_, err = svc.Reset(99)
	require.ErrorIs(t, err, apperrors.ErrWalletNotFound)
}

func TestCreditsDeductInsufficient(t *testing.T) {
	svc, wallets := newCreditsFixture()
	wallets.balances[1] = 10

	_, err := svc.Deduct(1, 50, "manual correction")
	var ice *apperrors.InsufficientCreditsError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, int64(40), ice.Shortage)
}
