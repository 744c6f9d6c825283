package cart

import "errors"

var (
	ErrInvalidCustomer = errors.New("invalid customer id")
	ErrInvalidProduct  = errors.New("invalid product id")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrLineNotFound    = errors.New("cart line not found")
)

// Line is one (customer, product, quantity) record. A customer holds at most
// one line per product; repeated adds merge into the existing line.
type Line struct {
	CustomerID int `json:"customerId"`
	ProductID  int `json:"productID"`
	Quantity   int `json:"quantity"`
}

// LineView is a cart line joined with catalog display fields. UnitPrice is
// the catalog price at the moment the view was read, not at add time — it
// floats with catalog changes until checkout freezes it.
type LineView struct {
	ProductID    int     `json:"productID"`
	ProductName  string  `json:"productName"`
	CategoryName *string `json:"categoryName,omitempty"`
	BrandName    *string `json:"brandName,omitempty"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	LineTotal    float64 `json:"lineTotal"`
}

// Summary aggregates a cart over current catalog prices.
type Summary struct {
	Count      int     `json:"count"`
	TotalQty   int     `json:"totalQty"`
	TotalPrice float64 `json:"totalPrice"`
}
