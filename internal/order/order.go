package order

import (
	"errors"
	"fmt"
)

const StatusPending = "Pending"

var (
	ErrInvalidCustomer = errors.New("invalid customer id")
	ErrNoLines         = errors.New("order has no lines")
	ErrInvalidAmount   = errors.New("amount must not be negative")
	// ErrInvoiceConflict reports that the invoice number is already taken.
	// The service retries generated numbers; caller-supplied ones surface
	// the conflict as-is.
	ErrInvoiceConflict = errors.New("invoice number already exists")
)

// Step names the point inside the commit transaction where a failure
// happened. No partial state survives a failed step.
type Step string

const (
	StepOrder   Step = "order"
	StepLines   Step = "lines"
	StepPayment Step = "payment"
)

// TxError wraps a failure from inside the order commit transaction with the
// step that caused it. The whole transaction is rolled back before it is
// returned.
type TxError struct {
	Step Step
	Err  error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("order commit failed at %s step: %v", e.Step, e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }

// Order is the durable record produced by a successful checkout.
type Order struct {
	OrderID    int      `json:"orderID"`
	CustomerID int      `json:"customerId"`
	InvoiceNo  string   `json:"invoiceNo"`
	OrderDate  string   `json:"orderDate"`
	Status     string   `json:"status"`
	Lines      []Line   `json:"lines,omitempty"`
	Payment    *Payment `json:"payment,omitempty"`
}

// Line is one product within an order. The unit price is deliberately not
// stored here; the order's total lives on its payment row, so line-level
// pricing is not independently recoverable after catalog changes.
type Line struct {
	ProductID int `json:"productID"`
	Quantity  int `json:"quantity"`
}

// Payment records the authoritative, re-validated total for an order.
type Payment struct {
	PaymentID   int     `json:"paymentID"`
	OrderID     int     `json:"orderID"`
	CustomerID  int     `json:"customerId"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	PaymentDate string  `json:"paymentDate"`
}
