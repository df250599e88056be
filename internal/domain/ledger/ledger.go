// Package ledger holds the process-wide sales counters and the registry of
// every discount code ever issued.
//
// All mutation goes through Update, which runs the supplied function under a
// single mutex. The discount and order packages compose their operations out
// of Tx methods so that check-then-mutate sequences stay atomic.
package ledger

import (
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/shopspring/decimal"
)

// The issued-code filter is sized for about one code per NthOrder orders
// over a process lifetime. Past capacity only the false positive rate grows;
// Find still confirms every hit with a scan.
const (
	filterCapacity = 1024
	filterFPR      = 0.001
)

// DiscountCode is a single-use discount issued by the discount manager.
type DiscountCode struct {
	Code      string
	Used      bool
	Expired   bool
	CreatedAt time.Time
	Rate      decimal.Decimal
	// Window is the number of orders placed when the code was issued.
	Window int
}

// Active reports whether the code can still be redeemed.
func (c *DiscountCode) Active() bool {
	return !c.Used && !c.Expired
}

// Snapshot is a point-in-time copy of the ledger for reporting.
type Snapshot struct {
	TotalItemsSold      int
	TotalPurchaseAmount decimal.Decimal
	TotalDiscountAmount decimal.Decimal
	TotalOrdersPlaced   int
	DiscountCodes       []DiscountCode
	// ActiveDiscountCode is empty when no code is active.
	ActiveDiscountCode string
}

// Ledger is the shared sales and discount-code state. The zero value is not
// usable; create one with New.
type Ledger struct {
	mu sync.Mutex

	itemsSold      int
	purchaseAmount decimal.Decimal
	discountAmount decimal.Decimal
	ordersPlaced   int

	codes  []*DiscountCode
	issued *bloom.BloomFilter
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		purchaseAmount: decimal.Zero,
		discountAmount: decimal.Zero,
		issued:         bloom.NewWithEstimates(filterCapacity, filterFPR),
	}
}

// Update runs fn with exclusive access to the ledger. Changes made through tx
// are not rolled back when fn returns an error, so fn must finish all of its
// checks before the first mutation.
func (l *Ledger) Update(fn func(tx *Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &Tx{l: l}
	defer tx.close()
	return fn(tx)
}

// View runs fn with read access to the ledger.
func (l *Ledger) View(fn func(tx *Tx)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &Tx{l: l, readOnly: true}
	defer tx.close()
	fn(tx)
}

// Snapshot returns a deep copy of the counters and issued codes.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Snapshot{
		TotalItemsSold:      l.itemsSold,
		TotalPurchaseAmount: l.purchaseAmount,
		TotalDiscountAmount: l.discountAmount,
		TotalOrdersPlaced:   l.ordersPlaced,
		DiscountCodes:       make([]DiscountCode, len(l.codes)),
	}
	for i, c := range l.codes {
		s.DiscountCodes[i] = *c
	}
	if c := l.active(); c != nil {
		s.ActiveDiscountCode = c.Code
	}
	return s
}

// active returns the first active code in issuance order.
func (l *Ledger) active() *DiscountCode {
	for _, c := range l.codes {
		if c.Active() {
			return c
		}
	}
	return nil
}
