// Package discount manages the "every Nth order" discount code lifecycle:
// eligibility, generation, consumption and expiry.
package discount

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/ledger"
)

// Prefix starts every generated code string.
const Prefix = "DISCOUNT-"

// maxAttempts bounds suffix regeneration on collision.
const maxAttempts = 16

// Config holds the fixed discount policy.
type Config struct {
	// NthOrder is the eligibility threshold: a code may be issued whenever
	// the number of placed orders is a positive multiple of NthOrder.
	NthOrder int
	// Rate is the fraction taken off the order total, e.g. 0.1 for 10%.
	Rate decimal.Decimal
}

// Manager issues and redeems discount codes stored in the ledger.
type Manager struct {
	ledger *ledger.Ledger
	cfg    Config
	now    func() time.Time
	suffix func() string
}

// NewManager creates a Manager. It panics on a non-positive NthOrder or a
// rate outside [0, 1], since both come from static configuration.
func NewManager(l *ledger.Ledger, cfg Config) *Manager {
	if cfg.NthOrder <= 0 {
		panic("discount: NthOrder must be positive")
	}
	if cfg.Rate.IsNegative() || cfg.Rate.GreaterThan(decimal.NewFromInt(1)) {
		panic("discount: rate must be within [0, 1]")
	}
	return &Manager{
		ledger: l,
		cfg:    cfg,
		now:    time.Now,
		suffix: randomSuffix,
	}
}

func randomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// Rate returns the configured discount rate.
func (m *Manager) Rate() decimal.Decimal {
	return m.cfg.Rate
}

// IsEligible reports whether a new code may be generated now: the order
// count is a positive multiple of NthOrder and no code issued at this order
// count is still active. An active code from an earlier window does not block
// eligibility; GenerateCode expires it when the new code is issued.
func (m *Manager) IsEligible() bool {
	eligible := false
	m.ledger.View(func(tx *ledger.Tx) {
		eligible = m.eligible(tx) && blocking(tx) == nil
	})
	return eligible
}

func (m *Manager) eligible(tx *ledger.Tx) bool {
	n := tx.OrdersPlaced()
	return n > 0 && n%m.cfg.NthOrder == 0
}

// blocking returns the active code issued in the current window, if any.
func blocking(tx *ledger.Tx) *ledger.DiscountCode {
	if c := tx.Active(); c != nil && c.Window == tx.OrdersPlaced() {
		return c
	}
	return nil
}

// GenerateCode issues a new code. Callers check IsEligible first; this
// method only enforces that at most one code is active. An active code left
// over from an earlier window is expired in favour of the new one.
func (m *Manager) GenerateCode() (*ledger.DiscountCode, error) {
	var out ledger.DiscountCode
	err := m.ledger.Update(func(tx *ledger.Tx) error {
		if c := blocking(tx); c != nil {
			return &IneligibleError{OrdersPlaced: tx.OrdersPlaced(), Active: c.Code}
		}

		code, err := m.uniqueCode(tx)
		if err != nil {
			return err
		}

		if prev := tx.Active(); prev != nil {
			tx.MarkExpired(prev)
		}

		c := &ledger.DiscountCode{
			Code:      code,
			CreatedAt: m.now(),
			Rate:      m.cfg.Rate,
			Window:    tx.OrdersPlaced(),
		}
		tx.AppendCode(c)
		out = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *Manager) uniqueCode(tx *ledger.Tx) (string, error) {
	for range maxAttempts {
		code := Prefix + m.suffix()
		if !tx.Exists(code) {
			return code, nil
		}
	}
	return "", errors.Errorf("no unique code after %d attempts", maxAttempts)
}

// ValidateAndConsume redeems code and returns its rate.
func (m *Manager) ValidateAndConsume(code string) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := m.ledger.Update(func(tx *ledger.Tx) error {
		var err error
		rate, err = m.Consume(tx, code)
		return err
	})
	return rate, err
}

// Consume redeems code within an existing ledger transaction. It returns an
// InvalidDiscountError without touching the ledger when the code is unknown,
// used or expired.
func (m *Manager) Consume(tx *ledger.Tx, code string) (decimal.Decimal, error) {
	c := tx.Find(code)
	if c == nil || !c.Active() {
		return decimal.Zero, &InvalidDiscountError{Code: code}
	}
	tx.MarkUsed(c)
	return c.Rate, nil
}

// Expire retires an active code without redeeming it.
func (m *Manager) Expire(code string) (*ledger.DiscountCode, error) {
	var out ledger.DiscountCode
	err := m.ledger.Update(func(tx *ledger.Tx) error {
		c := tx.Find(code)
		if c == nil || !c.Active() {
			return &InvalidDiscountError{Code: code}
		}
		tx.MarkExpired(c)
		out = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
