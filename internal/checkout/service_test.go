package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/wichananm65/storefront-backend/internal/cart"
	"github.com/wichananm65/storefront-backend/internal/catalog"
	"github.com/wichananm65/storefront-backend/internal/events"
	"github.com/wichananm65/storefront-backend/internal/order"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.OrderCreated
}

func (p *capturePublisher) PublishOrderCreated(_ context.Context, evt events.OrderCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

type fixture struct {
	reader    *catalog.InMemoryReader
	carts     *cart.Service
	orderRepo *order.InMemoryRepository
	publisher *capturePublisher
	orch      *Orchestrator
}

func newFixture() *fixture {
	reader := catalog.NewInMemoryReader([]catalog.Product{
		{ID: 7, Name: "Scratching post", Price: 15, Available: true},
		{ID: 9, Name: "Cat bed", Price: 200, Available: true},
	})
	carts := cart.NewService(cart.NewInMemoryRepository(reader))
	orderRepo := order.NewInMemoryRepository()
	publisher := &capturePublisher{}
	orch := NewOrchestrator(carts, NewValidator(reader), order.NewService(orderRepo),
		NewMutexLocker(), publisher, "THB")
	return &fixture{reader: reader, carts: carts, orderRepo: orderRepo, publisher: publisher, orch: orch}
}

func TestCheckout_EmptyCartIsRejected(t *testing.T) {
	f := newFixture()

	_, err := f.orch.Checkout(context.Background(), 42, "", "")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if f.orderRepo.Count(42) != 0 {
		t.Fatal("no order may be written for an empty cart")
	}
}

func TestCheckout_InvalidCustomerFailsClosed(t *testing.T) {
	f := newFixture()

	if _, err := f.orch.Checkout(context.Background(), 0, "", ""); !errors.Is(err, ErrInvalidCustomer) {
		t.Fatalf("expected ErrInvalidCustomer, got %v", err)
	}
}

func TestCheckout_HappyPath(t *testing.T) {
	f := newFixture()
	if _, err := f.carts.Add(42, 7, 3); err != nil {
		t.Fatal(err)
	}

	result, err := f.orch.Checkout(context.Background(), 42, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Amount != 45 {
		t.Fatalf("expected amount 45, got %v", result.Amount)
	}
	if result.Currency != "THB" || result.ItemCount != 1 || result.InvoiceNo == "" {
		t.Fatalf("unexpected result %+v", result)
	}

	orders, err := f.orderRepo.ListByCustomer(42)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected one order, got %d", len(orders))
	}
	ord := orders[0]
	if len(ord.Lines) != 1 || ord.Lines[0].ProductID != 7 || ord.Lines[0].Quantity != 3 {
		t.Fatalf("unexpected order lines %+v", ord.Lines)
	}
	if ord.Payment == nil || ord.Payment.Amount != 45 {
		t.Fatalf("unexpected payment %+v", ord.Payment)
	}

	empty, err := f.carts.IsEmpty(42)
	if err != nil {
		t.Fatal(err)
	}
	if !empty {
		t.Fatal("cart must be empty after a committed checkout")
	}

	if len(f.publisher.events) != 1 || f.publisher.events[0].OrderID != ord.OrderID {
		t.Fatalf("expected one OrderCreated event for order %d, got %+v", ord.OrderID, f.publisher.events)
	}
}

// driftReader answers GetPrice with a newer price than the cart display
// join saw, simulating a catalog change landing mid-checkout.
type driftReader struct {
	*catalog.InMemoryReader
	current map[int]float64
}

func (r *driftReader) GetPrice(productID int) (catalog.Price, error) {
	if p, ok := r.current[productID]; ok {
		return catalog.Price{Price: p, Available: true}, nil
	}
	return r.InMemoryReader.GetPrice(productID)
}

// A catalog price change between the cart read and validation must never be
// charged at the stale price: validation fails with the old/new diff and
// nothing is written.
func TestCheckout_PriceDriftAborts(t *testing.T) {
	reader := catalog.NewInMemoryReader([]catalog.Product{
		{ID: 7, Name: "Scratching post", Price: 15, Available: true},
	})
	authoritative := &driftReader{InMemoryReader: reader, current: map[int]float64{7: 20}}
	carts := cart.NewService(cart.NewInMemoryRepository(reader))
	orderRepo := order.NewInMemoryRepository()
	orch := NewOrchestrator(carts, NewValidator(authoritative), order.NewService(orderRepo),
		NewMutexLocker(), nil, "THB")

	if _, err := carts.Add(42, 7, 3); err != nil {
		t.Fatal(err)
	}

	_, err := orch.Checkout(context.Background(), 42, "", "")
	var mismatch *PriceMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *PriceMismatchError, got %v", err)
	}
	m := mismatch.Mismatches[0]
	if m.ProductID != 7 || m.CartPrice != 15 || m.CurrentPrice != 20 || m.Reason != ReasonPriceChanged {
		t.Fatalf("unexpected mismatch %+v", m)
	}

	if orderRepo.Count(42) != 0 {
		t.Fatal("no order may exist after a price mismatch")
	}
	n, _ := carts.Count(42)
	if n != 1 {
		t.Fatal("cart must be untouched after a price mismatch")
	}
}

func TestCheckout_DiscontinuedProductAborts(t *testing.T) {
	f := newFixture()
	if _, err := f.carts.Add(42, 9, 1); err != nil {
		t.Fatal(err)
	}
	f.reader.Remove(9)

	_, err := f.orch.Checkout(context.Background(), 42, "", "")
	var mismatch *PriceMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *PriceMismatchError, got %v", err)
	}
	if mismatch.Mismatches[0].Reason != ReasonUnavailable {
		t.Fatalf("expected unavailable, got %+v", mismatch.Mismatches[0])
	}
	n, _ := f.carts.Count(42)
	if n != 1 {
		t.Fatal("cart must be untouched when a product is unavailable")
	}
}

// A transaction failure leaves the cart populated so the customer can
// retry; success clears it.
func TestCheckout_CartClearsOnlyAfterCommit(t *testing.T) {
	f := newFixture()
	if _, err := f.carts.Add(42, 7, 2); err != nil {
		t.Fatal(err)
	}

	f.orderRepo.FailAt = order.StepPayment
	_, err := f.orch.Checkout(context.Background(), 42, "", "")
	var txErr *order.TxError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected *order.TxError, got %v", err)
	}
	if txErr.Step != order.StepPayment {
		t.Fatalf("expected payment step failure, got %s", txErr.Step)
	}
	n, _ := f.carts.Count(42)
	if n != 1 {
		t.Fatal("cart must be unchanged after a failed commit")
	}
	if f.orderRepo.Count(42) != 0 {
		t.Fatal("no order may exist after a failed commit")
	}
	if len(f.publisher.events) != 0 {
		t.Fatal("no event may be published for a failed checkout")
	}

	f.orderRepo.FailAt = ""
	if _, err := f.orch.Checkout(context.Background(), 42, "", ""); err != nil {
		t.Fatalf("retry after transient failure should succeed: %v", err)
	}
	n, _ = f.carts.Count(42)
	if n != 0 {
		t.Fatal("cart must be empty after a committed checkout")
	}
}

// failingEmptyRepo simulates a cart store whose post-commit Empty fails.
type failingEmptyRepo struct {
	*cart.InMemoryRepository
}

func (r *failingEmptyRepo) Empty(customerID int) error {
	return errors.New("cart store unavailable")
}

func TestCheckout_CleanupFailureStillSucceeds(t *testing.T) {
	reader := catalog.NewInMemoryReader([]catalog.Product{
		{ID: 7, Price: 15, Available: true},
	})
	carts := cart.NewService(&failingEmptyRepo{cart.NewInMemoryRepository(reader)})
	orderRepo := order.NewInMemoryRepository()
	orch := NewOrchestrator(carts, NewValidator(reader), order.NewService(orderRepo),
		NewMutexLocker(), nil, "THB")

	if _, err := carts.Add(42, 7, 1); err != nil {
		t.Fatal(err)
	}

	// the order is durable, so a failed cart-empty must not fail checkout
	result, err := orch.Checkout(context.Background(), 42, "", "")
	if err != nil {
		t.Fatalf("cleanup failure must not surface as checkout failure: %v", err)
	}
	if result.OrderID == 0 {
		t.Fatalf("expected a committed order, got %+v", result)
	}
	if orderRepo.Count(42) != 1 {
		t.Fatal("the order must exist despite the cleanup failure")
	}
}

func TestCheckout_SuppliedInvoiceAndCurrency(t *testing.T) {
	f := newFixture()
	if _, err := f.carts.Add(42, 7, 1); err != nil {
		t.Fatal(err)
	}

	result, err := f.orch.Checkout(context.Background(), 42, "USD", "INV-CUSTOM-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.InvoiceNo != "INV-CUSTOM-1" || result.Currency != "USD" {
		t.Fatalf("unexpected result %+v", result)
	}
}

// Two concurrent checkouts for the same cart must never both commit. One
// succeeds; the other is either rejected by the claim or sees an already
// emptied cart.
func TestCheckout_ConcurrentAttemptsCommitOnce(t *testing.T) {
	f := newFixture()
	if _, err := f.carts.Add(42, 7, 3); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orch.Checkout(context.Background(), 42, "", "")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrCheckoutInProgress), errors.Is(err, ErrEmptyCart):
			// acceptable loser outcomes
		default:
			t.Fatalf("unexpected error from concurrent checkout: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful checkout, got %d", successes)
	}
	if f.orderRepo.Count(42) != 1 {
		t.Fatalf("expected exactly one committed order, got %d", f.orderRepo.Count(42))
	}
}

func TestMutexLocker_ContentionAndRelease(t *testing.T) {
	l := NewMutexLocker()

	release, err := l.Acquire(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Acquire(context.Background(), 42); !errors.Is(err, ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress while held, got %v", err)
	}
	// a different customer is unaffected
	release2, err := l.Acquire(context.Background(), 43)
	if err != nil {
		t.Fatalf("other customers must not contend: %v", err)
	}
	release2()

	release()
	release3, err := l.Acquire(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected reacquire after release: %v", err)
	}
	release3()
}
