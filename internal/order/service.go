package order

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// invoiceAttempts bounds the retry loop for generated invoice numbers. The
// numbers carry a random suffix, so consecutive collisions are vanishingly
// rare; the loop exists because the database enforces uniqueness.
const invoiceAttempts = 3

// Service provides business logic for orders.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Place commits an order for the given lines and authoritative total. An
// empty invoiceNo gets a generated number, retried on collision; a supplied
// one is used as-is and a collision surfaces as ErrInvoiceConflict.
func (s *Service) Place(customerID int, lines []Line, total float64, currency, invoiceNo string) (Order, error) {
	if customerID <= 0 {
		return Order{}, ErrInvalidCustomer
	}
	if len(lines) == 0 {
		return Order{}, ErrNoLines
	}
	if total < 0 {
		return Order{}, ErrInvalidAmount
	}

	if invoiceNo != "" {
		return s.repo.Commit(customerID, lines, total, currency, invoiceNo)
	}

	var lastErr error
	for i := 0; i < invoiceAttempts; i++ {
		ord, err := s.repo.Commit(customerID, lines, total, currency, GenerateInvoiceNo())
		if err == nil {
			return ord, nil
		}
		if !errors.Is(err, ErrInvoiceConflict) {
			return Order{}, err
		}
		lastErr = err
	}
	return Order{}, lastErr
}

func (s *Service) ListByCustomer(customerID int) ([]Order, error) {
	if customerID <= 0 {
		return nil, ErrInvalidCustomer
	}
	return s.repo.ListByCustomer(customerID)
}

// GenerateInvoiceNo builds an invoice number from the current timestamp and
// a random suffix. Uniqueness is enforced by the orders table, not by the
// format.
func GenerateInvoiceNo() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "INV-" + time.Now().UTC().Format("20060102150405") + "-" + suffix
}
