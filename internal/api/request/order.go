package request

// PlaceOrderRequest is the body of POST /api/orders. Quantity is decoded as
// float64 so the engine can reject fractional values explicitly instead of
// the JSON decoder truncating or erroring opaquely.
type PlaceOrderRequest struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity float64 `json:"quantity"`
}
