package discount

import "fmt"

// Error messages are part of the public contract and must not change.
const (
	msgInvalid    = "Invalid or expired discount code"
	msgIneligible = "Not eligible to generate discount code right now"
)

// InvalidDiscountError indicates a code that was never issued, is already
// used, or has expired.
type InvalidDiscountError struct {
	Code string
}

func (e *InvalidDiscountError) Error() string {
	return msgInvalid
}

// IneligibleError indicates that a code cannot be generated now.
type IneligibleError struct {
	OrdersPlaced int
	// Active is the code blocking generation, if any.
	Active string
}

func (e *IneligibleError) Error() string {
	return msgIneligible
}

// Detail describes why generation was refused, for logs.
func (e *IneligibleError) Detail() string {
	if e.Active != "" {
		return fmt.Sprintf("code %s is still active in window %d", e.Active, e.OrdersPlaced)
	}
	return fmt.Sprintf("order count %d is not eligible", e.OrdersPlaced)
}
