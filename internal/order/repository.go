package order

import (
	"errors"
	"sync"
	"time"
)

var errAborted = errors.New("injected storage failure")

// Repository defines persistence operations for orders.
type Repository interface {
	// Commit writes the order header, its lines, and one payment row as a
	// single atomic unit. Any failure rolls the whole transaction back and
	// returns a *TxError naming the failed step; readers never observe a
	// partial order.
	Commit(customerID int, lines []Line, total float64, currency, invoiceNo string) (Order, error)
	// ListByCustomer returns a customer's orders, newest first, with lines
	// and payment attached.
	ListByCustomer(customerID int) ([]Order, error)
}

// InMemoryRepository is used for tests and local scenarios. FailAt injects
// a failure at the named commit step, leaving no partial state behind, the
// same way the Postgres rollback does.
type InMemoryRepository struct {
	mu       sync.Mutex
	orders   []Order
	invoices map[string]bool
	nextID   int

	FailAt Step
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{invoices: make(map[string]bool), nextID: 1}
}

func (r *InMemoryRepository) Commit(customerID int, lines []Line, total float64, currency, invoiceNo string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailAt == StepOrder {
		return Order{}, &TxError{Step: StepOrder, Err: errAborted}
	}
	if r.invoices[invoiceNo] {
		return Order{}, &TxError{Step: StepOrder, Err: ErrInvoiceConflict}
	}
	if r.FailAt == StepLines {
		return Order{}, &TxError{Step: StepLines, Err: errAborted}
	}
	if r.FailAt == StepPayment {
		return Order{}, &TxError{Step: StepPayment, Err: errAborted}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	ord := Order{
		OrderID:    r.nextID,
		CustomerID: customerID,
		InvoiceNo:  invoiceNo,
		OrderDate:  now,
		Status:     StatusPending,
		Lines:      append([]Line(nil), lines...),
		Payment: &Payment{
			PaymentID:   r.nextID,
			OrderID:     r.nextID,
			CustomerID:  customerID,
			Amount:      total,
			Currency:    currency,
			PaymentDate: now,
		},
	}
	r.nextID++
	r.invoices[invoiceNo] = true
	r.orders = append(r.orders, ord)
	return ord, nil
}

func (r *InMemoryRepository) ListByCustomer(customerID int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Order, 0)
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].CustomerID == customerID {
			out = append(out, r.orders[i])
		}
	}
	return out, nil
}

// Count reports how many orders exist for a customer; used by tests to
// assert atomicity.
func (r *InMemoryRepository) Count(customerID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			n++
		}
	}
	return n
}
