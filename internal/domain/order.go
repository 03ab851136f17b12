package domain

import (
	"errors"
	"fmt"
)

// OrderRequest describes an order to be submitted to the exchange.
// Quantity is expressed in quote-asset terms (quoteOrderQty). Price is
// mandatory for any type other than MARKET. Test routes the request to the
// exchange's validation-only endpoint: the order is checked but never
// executed.
type OrderRequest struct {
	Symbol   string
	Side     OrderSide
	Type     OrderType
	Quantity float64 // Quote-asset quantity
	Price    float64 // Required when Type.RequiresPrice()
	Test     bool    // Validate-only submission
}

// Validate checks the request against the exchange's parameter rules.
func (r *OrderRequest) Validate() error {
	if r.Symbol == "" {
		return errors.New("symbol is required")
	}
	if !r.Side.IsValid() {
		return fmt.Errorf("invalid order side %q", r.Side)
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("invalid order type %q", r.Type)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %v", r.Quantity)
	}
	if r.Type.RequiresPrice() && r.Price <= 0 {
		return fmt.Errorf("price is required for %s orders", r.Type)
	}
	return nil
}
