package ledger

import (
	"github.com/shopspring/decimal"
)

// Tx exposes the ledger state to a function running inside Update or View.
// A Tx must not be retained after that function returns.
type Tx struct {
	l        *Ledger
	readOnly bool
	done     bool
}

func (tx *Tx) close() { tx.done = true }

func (tx *Tx) mustWrite() {
	if tx.done {
		panic("ledger: use of Tx after transaction end")
	}
	if tx.readOnly {
		panic("ledger: write in read-only transaction")
	}
}

// OrdersPlaced returns the number of completed orders.
func (tx *Tx) OrdersPlaced() int {
	return tx.l.ordersPlaced
}

// Active returns the first active code in issuance order, or nil.
func (tx *Tx) Active() *DiscountCode {
	return tx.l.active()
}

// Exists reports whether code has ever been issued.
func (tx *Tx) Exists(code string) bool {
	return tx.Find(code) != nil
}

// Find returns the issued code with the exact string, or nil. Strings that
// were never issued are rejected by the bloom filter without a scan.
func (tx *Tx) Find(code string) *DiscountCode {
	if !tx.l.issued.TestString(code) {
		return nil
	}
	for _, c := range tx.l.codes {
		if c.Code == code {
			return c
		}
	}
	return nil
}

// AppendCode registers a newly issued code. The caller guarantees the code
// string is unique.
func (tx *Tx) AppendCode(c *DiscountCode) {
	tx.mustWrite()
	tx.l.codes = append(tx.l.codes, c)
	tx.l.issued.AddString(c.Code)
}

// MarkUsed flags c as consumed.
func (tx *Tx) MarkUsed(c *DiscountCode) {
	tx.mustWrite()
	c.Used = true
}

// MarkExpired flags c as expired.
func (tx *Tx) MarkExpired(c *DiscountCode) {
	tx.mustWrite()
	c.Expired = true
}

// RecordOrder adds one completed order to the running totals.
func (tx *Tx) RecordOrder(items int, paid, discount decimal.Decimal) {
	tx.mustWrite()
	tx.l.itemsSold += items
	tx.l.purchaseAmount = tx.l.purchaseAmount.Add(paid)
	tx.l.discountAmount = tx.l.discountAmount.Add(discount)
	tx.l.ordersPlaced++
}
