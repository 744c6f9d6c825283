package checkout

import (
	"context"
	"log"

	"github.com/wichananm65/storefront-backend/internal/cart"
	"github.com/wichananm65/storefront-backend/internal/events"
	"github.com/wichananm65/storefront-backend/internal/order"
)

// Result is returned to the caller after a successful checkout.
type Result struct {
	OrderID   int     `json:"orderID"`
	InvoiceNo string  `json:"invoiceNo"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	ItemCount int     `json:"itemCount"`
}

// Orchestrator runs the checkout procedure: claim the cart, reject empty
// carts, re-validate prices, commit the order atomically, then empty the
// cart. Any failure before the commit leaves all prior state untouched.
type Orchestrator struct {
	carts     *cart.Service
	validator *Validator
	orders    *order.Service
	locker    Locker
	publisher events.Publisher
	currency  string
}

func NewOrchestrator(carts *cart.Service, validator *Validator, orders *order.Service,
	locker Locker, publisher events.Publisher, defaultCurrency string) *Orchestrator {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Orchestrator{
		carts:     carts,
		validator: validator,
		orders:    orders,
		locker:    locker,
		publisher: publisher,
		currency:  defaultCurrency,
	}
}

// Checkout converts the customer's cart into a committed order with a
// payment record. The error discriminates the failed stage: ErrEmptyCart,
// *PriceMismatchError, ErrCheckoutInProgress, or *order.TxError.
func (o *Orchestrator) Checkout(ctx context.Context, customerID int, currency, invoiceNo string) (Result, error) {
	if customerID <= 0 {
		return Result{}, ErrInvalidCustomer
	}
	if currency == "" {
		currency = o.currency
	}

	release, err := o.locker.Acquire(ctx, customerID)
	if err != nil {
		return Result{}, err
	}
	defer release()

	items, err := o.carts.Items(customerID)
	if err != nil {
		return Result{}, err
	}
	if len(items) == 0 {
		return Result{}, ErrEmptyCart
	}

	validated, total, err := o.validator.Validate(items)
	if err != nil {
		return Result{}, err
	}

	lines := make([]order.Line, 0, len(validated))
	for _, v := range validated {
		lines = append(lines, order.Line{ProductID: v.ProductID, Quantity: v.Quantity})
	}

	ord, err := o.orders.Place(customerID, lines, total, currency, invoiceNo)
	if err != nil {
		return Result{}, err
	}

	// the order is durable from here on; a failed cart-empty is a
	// recoverable inconsistency, not a checkout failure
	if err := o.carts.Empty(customerID); err != nil {
		log.Printf("warning: order %d committed but cart for customer %d was not emptied: %v",
			ord.OrderID, customerID, err)
	}

	o.publishOrderCreated(ctx, ord, total, currency)

	return Result{
		OrderID:   ord.OrderID,
		InvoiceNo: ord.InvoiceNo,
		Amount:    total,
		Currency:  currency,
		ItemCount: len(lines),
	}, nil
}

func (o *Orchestrator) publishOrderCreated(ctx context.Context, ord order.Order, total float64, currency string) {
	items := make([]events.OrderItem, 0, len(ord.Lines))
	for _, ln := range ord.Lines {
		items = append(items, events.OrderItem{ProductID: ln.ProductID, Qty: ln.Quantity})
	}
	evt := events.OrderCreated{
		OrderID:    ord.OrderID,
		InvoiceNo:  ord.InvoiceNo,
		CustomerID: ord.CustomerID,
		Amount:     total,
		Currency:   currency,
		Items:      items,
	}
	if err := o.publisher.PublishOrderCreated(ctx, evt); err != nil {
		log.Printf("warning: could not publish OrderCreated for order %d: %v", ord.OrderID, err)
	}
}
