package checkout

import (
	"errors"
	"math"

	"github.com/wichananm65/storefront-backend/internal/cart"
	"github.com/wichananm65/storefront-backend/internal/catalog"
)

// PriceEpsilon absorbs floating rounding when comparing a cart-captured
// price against the catalog's current price.
const PriceEpsilon = 0.01

// ValidatedLine is a cart line that passed price validation. UnitPrice is
// the catalog price at validation time, never the cart-captured one.
type ValidatedLine struct {
	ProductID int
	Quantity  int
	UnitPrice float64
}

// Validator prevents checkout from honoring stale or client-tampered
// prices by re-reading every line's price from the catalog.
type Validator struct {
	catalog catalog.Reader
}

func NewValidator(reader catalog.Reader) *Validator {
	return &Validator{catalog: reader}
}

// Validate re-prices every cart line against the catalog. It returns the
// validated lines and the authoritative total, or a *PriceMismatchError
// listing every line that drifted or no longer resolves.
func (v *Validator) Validate(items []cart.LineView) ([]ValidatedLine, float64, error) {
	lines := make([]ValidatedLine, 0, len(items))
	mismatches := make([]Mismatch, 0)
	total := 0.0

	for _, it := range items {
		price, err := v.catalog.GetPrice(it.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			mismatches = append(mismatches, Mismatch{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				CartPrice:   it.UnitPrice,
				Reason:      ReasonUnavailable,
			})
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		if !price.Available {
			mismatches = append(mismatches, Mismatch{
				ProductID:    it.ProductID,
				ProductName:  it.ProductName,
				CartPrice:    it.UnitPrice,
				CurrentPrice: price.Price,
				Reason:       ReasonUnavailable,
			})
			continue
		}
		if math.Abs(price.Price-it.UnitPrice) > PriceEpsilon {
			mismatches = append(mismatches, Mismatch{
				ProductID:    it.ProductID,
				ProductName:  it.ProductName,
				CartPrice:    it.UnitPrice,
				CurrentPrice: price.Price,
				Reason:       ReasonPriceChanged,
			})
			continue
		}

		lines = append(lines, ValidatedLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: price.Price,
		})
		total += price.Price * float64(it.Quantity)
	}

	if len(mismatches) > 0 {
		return nil, 0, &PriceMismatchError{Mismatches: mismatches}
	}
	return lines, total, nil
}
