package catalog

import (
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("product not found")
)

// Product carries the display fields joined into cart views and order
// listings. Category and brand names come from their own tables and may be
// absent.
type Product struct {
	ID           int     `json:"productId"`
	Name         string  `json:"productName"`
	CategoryName *string `json:"categoryName,omitempty"`
	BrandName    *string `json:"brandName,omitempty"`
	Price        float64 `json:"productPrice"`
	Available    bool    `json:"available"`
}

// Price is the authoritative, currently-committed price of a product.
type Price struct {
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// Reader is the read-only view of the catalog consumed by the cart and
// checkout packages. Catalog writes (admin CRUD) live elsewhere and are not
// part of this interface.
type Reader interface {
	// GetPrice returns the current price of a product, or ErrNotFound when
	// the id no longer resolves.
	GetPrice(productID int) (Price, error)
	// ListByIDs returns the products matching ids, ordered the same way as
	// the ids argument. An empty slice returns an empty result without a
	// query.
	ListByIDs(ids []int) ([]Product, error)
}

// InMemoryReader backs tests and local scenarios. Prices can be mutated
// between calls to simulate catalog changes while a cart is open.
type InMemoryReader struct {
	mu       sync.RWMutex
	products map[int]Product
}

func NewInMemoryReader(seed []Product) *InMemoryReader {
	r := &InMemoryReader{products: make(map[int]Product, len(seed))}
	for _, p := range seed {
		r.products[p.ID] = p
	}
	return r
}

func (r *InMemoryReader) GetPrice(productID int) (Price, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[productID]
	if !ok {
		return Price{}, ErrNotFound
	}
	return Price{Price: p.Price, Available: p.Available}, nil
}

func (r *InMemoryReader) ListByIDs(ids []int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// SetPrice overwrites a product's price; used by tests to drive price drift.
func (r *InMemoryReader) SetPrice(productID int, price float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[productID]; ok {
		p.Price = price
		r.products[productID] = p
	}
}

// Remove deletes a product; used by tests to simulate discontinued items.
func (r *InMemoryReader) Remove(productID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, productID)
}
