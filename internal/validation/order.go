package validation

import (
	"strings"

	"github.com/papertrade/paper-trading-backend/internal/api/request"
)

// ValidatePlaceOrder checks only that the required order fields are present.
// Semantic validation (side, integer quantity, coverage) belongs to the
// execution engine, which checks preconditions in a fixed order.
func ValidatePlaceOrder(req request.PlaceOrderRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}
	if strings.TrimSpace(req.Side) == "" {
		errors["side"] = "side is required"
	}
	if req.Quantity == 0 {
		errors["quantity"] = "quantity is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
