package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCustomer    = errors.New("invalid customer id")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrCheckoutInProgress = errors.New("another checkout is already in progress for this customer")
)

type MismatchReason string

const (
	ReasonPriceChanged MismatchReason = "price_changed"
	ReasonUnavailable  MismatchReason = "unavailable"
)

// Mismatch describes one cart line that failed price validation, with the
// old and new values so the customer can review and retry.
type Mismatch struct {
	ProductID    int            `json:"productID"`
	ProductName  string         `json:"productName,omitempty"`
	CartPrice    float64        `json:"cartPrice"`
	CurrentPrice float64        `json:"currentPrice,omitempty"`
	Reason       MismatchReason `json:"reason"`
}

// PriceMismatchError aborts checkout before any write. The cart is left
// untouched so the customer can re-add at the new price or retry.
type PriceMismatchError struct {
	Mismatches []Mismatch
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("price validation failed for %d cart line(s)", len(e.Mismatches))
}
