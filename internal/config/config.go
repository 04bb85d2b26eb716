package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Display
	Currency string

	// Bursary policy: reject boundary percentages under Partial when
	// strict, normalize them to None/Full otherwise.
	StrictBursaryBounds bool

	// Payment policy
	MaxPaymentCents int64
	PaymentMaxAge   time.Duration
	OverpayFactor   int64

	// Expense policy
	MaxExpenseCents int64
	ExpenseMaxAge   time.Duration

	// Reconciliation
	ReconcileInterval time.Duration
	ReconcileRepair   bool

	// Ledger snapshot consumed by the check tool
	SnapshotPath string
}

const (
	yearsTwo   = 2 * 365 * 24 * time.Hour
	yearsThree = 3 * 365 * 24 * time.Hour
)

func Load() *Config {
	return &Config{
		Currency:            getEnv("CURRENCY", "UGX"),
		StrictBursaryBounds: getEnvBool("BURSARY_STRICT_BOUNDS", true),

		MaxPaymentCents: getEnvInt64("MAX_PAYMENT_AMOUNT", 10_000_000),
		PaymentMaxAge:   getEnvDuration("PAYMENT_MAX_AGE", yearsTwo),
		OverpayFactor:   getEnvInt64("OVERPAY_FACTOR", 2),

		MaxExpenseCents: getEnvInt64("MAX_EXPENSE_AMOUNT", 50_000_000),
		ExpenseMaxAge:   getEnvDuration("EXPENSE_MAX_AGE", yearsThree),

		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", time.Hour),
		ReconcileRepair:   getEnvBool("RECONCILE_REPAIR", false),

		SnapshotPath: getEnv("SNAPSHOT_PATH", "./data/ledger.json"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Currency) == "" {
		errs = append(errs, "currency must not be empty")
	}
	if c.MaxPaymentCents <= 0 {
		errs = append(errs, fmt.Sprintf("invalid max payment amount %d: must be positive", c.MaxPaymentCents))
	}
	if c.MaxExpenseCents <= 0 {
		errs = append(errs, fmt.Sprintf("invalid max expense amount %d: must be positive", c.MaxExpenseCents))
	}
	if c.OverpayFactor < 1 {
		errs = append(errs, fmt.Sprintf("invalid overpay factor %d: must be at least 1", c.OverpayFactor))
	}
	if c.PaymentMaxAge <= 0 {
		errs = append(errs, "payment max age must be positive")
	}
	if c.ExpenseMaxAge <= 0 {
		errs = append(errs, "expense max age must be positive")
	}
	if c.ReconcileInterval <= 0 {
		errs = append(errs, "reconcile interval must be positive")
	}
	if strings.TrimSpace(c.SnapshotPath) == "" {
		errs = append(errs, "snapshot path must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
