package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	OAuth    OAuthConfig
	Payment  PaymentConfig
	Stripe   StripeConfig
	HeyGen   ProviderConfig
	Veo3     ProviderConfig
	Kie      ProviderConfig
	Credits  CreditsConfig
	Retry    RetryConfig
}

type ServerConfig struct {
	Port            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// PaymentConfig selects the active gateway and the URLs the gateway sends
// the buyer back to.
type PaymentConfig struct {
	Gateway    string
	Currency   string
	SuccessURL string
	CancelURL  string
}

type StripeConfig struct {
	APIKey        string
	WebhookSecret string
}

// ProviderConfig is the per-video-provider block (API key, endpoint, timeout).
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// CreditsConfig holds the credit economy knobs. All money values are in the
// currency's minor unit (cents); PRICE_PER_CREDIT is parsed from decimal
// major units at load time and converted exactly once here.
type CreditsConfig struct {
	PricePerCreditCents int64
	MinPurchase         int64
	MaxPurchase         int64
	MaxPaymentCents     int64
	SignupBonus         int64
	MaxAdjustment       int64
	CostHeyGen          int64
	CostVeo3            int64
	CostKie             int64
}

type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Env:             getEnv("APP_ENV", "development"),
			ReadTimeout:     getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "root:@tcp(localhost:3306)/videogen?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),
			Issuer:        getEnv("JWT_ISSUER", "videogen"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},
		Payment: PaymentConfig{
			Gateway:    getEnv("PAYMENT_GATEWAY", "stripe"),
			Currency:   getEnv("PAYMENT_CURRENCY", "USD"),
			SuccessURL: getEnv("PAYMENT_SUCCESS_URL", "http://localhost:3000/payment/success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:  getEnv("PAYMENT_CANCEL_URL", "http://localhost:3000/payment/cancel"),
		},
		Stripe: StripeConfig{
			APIKey:        getEnv("STRIPE_API_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		HeyGen: ProviderConfig{
			APIKey:  getEnv("HEYGEN_API_KEY", ""),
			BaseURL: getEnv("HEYGEN_BASE_URL", ""),
			Timeout: getDuration("HEYGEN_TIMEOUT", 60*time.Second),
		},
		Veo3: ProviderConfig{
			APIKey:  getEnv("VEO3_API_KEY", ""),
			BaseURL: getEnv("VEO3_BASE_URL", ""),
			Timeout: getDuration("VEO3_TIMEOUT", 60*time.Second),
		},
		Kie: ProviderConfig{
			APIKey:  getEnv("KIE_API_KEY", ""),
			BaseURL: getEnv("KIE_BASE_URL", ""),
			Timeout: getDuration("KIE_TIMEOUT", 30*time.Second),
		},
		Credits: CreditsConfig{
			PricePerCreditCents: priceCents(getEnv("PRICE_PER_CREDIT", "0.01")),
			MinPurchase:         int64(getInt("MIN_PURCHASE_CREDITS", 10)),
			MaxPurchase:         int64(getInt("MAX_PURCHASE_CREDITS", 10000)),
			MaxPaymentCents:     int64(getInt("MAX_PAYMENT_CENTS", 50000)),
			SignupBonus:         int64(getInt("SIGNUP_BONUS_CREDITS", 10)),
			MaxAdjustment:       int64(getInt("MAX_CREDIT_ADJUSTMENT", 10000)),
			CostHeyGen:          int64(getInt("CREDIT_COST_HEYGEN", 10)),
			CostVeo3:            int64(getInt("CREDIT_COST_VEO3", 25)),
			CostKie:             int64(getInt("CREDIT_COST_KIE", 5)),
		},
		Retry: RetryConfig{
			MaxAttempts:  getInt("RETRY_MAX_ATTEMPTS", 3),
			InitialDelay: getDuration("RETRY_INITIAL_DELAY", time.Second),
			Multiplier:   getFloat("RETRY_BACKOFF_MULTIPLIER", 2),
			MaxDelay:     getDuration("RETRY_MAX_DELAY", 10*time.Second),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[config] %s=%q is not an integer, using %d", key, v, def)
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("[config] %s=%q is not a number, using %v", key, v, def)
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("[config] %s=%q is not a duration, using %s", key, v, def)
	}
	return def
}

// priceCents converts a decimal major-unit price ("0.01" dollars) to minor
// units. This is the single conversion boundary; everything downstream
// works in cents.
func priceCents(price string) int64 {
	d, err := decimal.NewFromString(price)
	if err != nil {
		log.Printf("[config] PRICE_PER_CREDIT=%q is not a decimal, using 0.01", price)
		d = decimal.NewFromFloat(0.01)
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
