package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPriceCents(t *testing.T) {
	assert.Equal(t, int64(1), priceCents("0.01"))
	assert.Equal(t, int64(10), priceCents("0.10"))
	assert.Equal(t, int64(150), priceCents("1.5"))
	assert.Equal(t, int64(100), priceCents("1"))
	// garbage falls back to the default price
	assert.Equal(t, int64(1), priceCents("not-a-number"))
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "stripe", cfg.Payment.Gateway)
	assert.Equal(t, "USD", cfg.Payment.Currency)
	assert.Equal(t, int64(10), cfg.Credits.MinPurchase)
	assert.Equal(t, int64(10000), cfg.Credits.MaxPurchase)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, float64(2), cfg.Retry.Multiplier)
	assert.Equal(t, 10*time.Second, cfg.Retry.MaxDelay)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MIN_PURCHASE_CREDITS", "50")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("PRICE_PER_CREDIT", "0.25")
	cfg := Load()
	assert.Equal(t, int64(50), cfg.Credits.MinPurchase)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, int64(25), cfg.Credits.PricePerCreditCents)
}
