package cart

import (
	"sort"
	"sync"

	"github.com/wichananm65/storefront-backend/internal/catalog"
)

// Repository provides access to cart lines. Every operation returns an
// explicit error so callers can tell "nothing to do" from "storage failed";
// a bool result only ever means "a row was / was not affected".
type Repository interface {
	// Get returns the line for the compound key, or ErrLineNotFound.
	Get(customerID, productID int) (Line, error)
	// Add merges qty into an existing line or inserts a new one, and
	// returns the resulting line.
	Add(customerID, productID, qty int) (Line, error)
	// SetQuantity overwrites a line's quantity. qty <= 0 removes the line;
	// that is the documented removal path, not an error. The bool reports
	// whether a row was changed.
	SetQuantity(customerID, productID, qty int) (bool, error)
	// Remove deletes a line. false with a nil error means there was nothing
	// to delete.
	Remove(customerID, productID int) (bool, error)
	// Items returns the cart joined with catalog display fields, ordered by
	// product id descending.
	Items(customerID int) ([]LineView, error)
	// Summary aggregates the cart over current catalog prices.
	Summary(customerID int) (Summary, error)
	// Empty removes every line for the customer. Emptying an already-empty
	// cart is not an error.
	Empty(customerID int) error
	// Count returns the number of distinct lines.
	Count(customerID int) (int, error)
}

// InMemoryRepository is used for tests and local scenarios. It joins
// display fields through a catalog reader the same way the Postgres
// repository joins through the products table.
type InMemoryRepository struct {
	mu      sync.RWMutex
	lines   map[int]map[int]int // customerID -> productID -> qty
	catalog catalog.Reader
}

func NewInMemoryRepository(reader catalog.Reader) *InMemoryRepository {
	return &InMemoryRepository{
		lines:   make(map[int]map[int]int),
		catalog: reader,
	}
}

func (r *InMemoryRepository) Get(customerID, productID int) (Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if qty, ok := r.lines[customerID][productID]; ok {
		return Line{CustomerID: customerID, ProductID: productID, Quantity: qty}, nil
	}
	return Line{}, ErrLineNotFound
}

func (r *InMemoryRepository) Add(customerID, productID, qty int) (Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lines[customerID] == nil {
		r.lines[customerID] = make(map[int]int)
	}
	newQty := r.lines[customerID][productID] + qty
	if newQty <= 0 {
		delete(r.lines[customerID], productID)
		return Line{}, ErrLineNotFound
	}
	r.lines[customerID][productID] = newQty
	return Line{CustomerID: customerID, ProductID: productID, Quantity: newQty}, nil
}

func (r *InMemoryRepository) SetQuantity(customerID, productID, qty int) (bool, error) {
	if qty <= 0 {
		return r.Remove(customerID, productID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lines[customerID][productID]; !ok {
		return false, nil
	}
	r.lines[customerID][productID] = qty
	return true, nil
}

func (r *InMemoryRepository) Remove(customerID, productID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lines[customerID][productID]; !ok {
		return false, nil
	}
	delete(r.lines[customerID], productID)
	return true, nil
}

func (r *InMemoryRepository) Items(customerID int) ([]LineView, error) {
	r.mu.RLock()
	ids := make([]int, 0, len(r.lines[customerID]))
	qtys := make(map[int]int, len(r.lines[customerID]))
	for pid, q := range r.lines[customerID] {
		ids = append(ids, pid)
		qtys[pid] = q
	}
	r.mu.RUnlock()

	sort.Sort(sort.Reverse(sort.IntSlice(ids)))

	products, err := r.catalog.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]LineView, 0, len(ids))
	for _, pid := range ids {
		p, ok := byID[pid]
		if !ok {
			// product vanished from the catalog; keep the line so checkout
			// can report it as unavailable
			out = append(out, LineView{ProductID: pid, Quantity: qtys[pid]})
			continue
		}
		out = append(out, LineView{
			ProductID:    pid,
			ProductName:  p.Name,
			CategoryName: p.CategoryName,
			BrandName:    p.BrandName,
			Quantity:     qtys[pid],
			UnitPrice:    p.Price,
			LineTotal:    p.Price * float64(qtys[pid]),
		})
	}
	return out, nil
}

func (r *InMemoryRepository) Summary(customerID int) (Summary, error) {
	items, err := r.Items(customerID)
	if err != nil {
		return Summary{}, err
	}
	var s Summary
	for _, it := range items {
		s.Count++
		s.TotalQty += it.Quantity
		s.TotalPrice += it.LineTotal
	}
	return s, nil
}

func (r *InMemoryRepository) Empty(customerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lines, customerID)
	return nil
}

func (r *InMemoryRepository) Count(customerID int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lines[customerID]), nil
}
