package model

import "time"

// Order sides.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// TradeEvent is the single append-only record of an executed market order.
// It is immutable after creation (enforced by database triggers). The Order
// and Transaction shapes exposed by the API are derived views of the same
// event, so the two can never diverge.
type TradeEvent struct {
	ID          string    `json:"id"`
	PortfolioID string    `json:"portfolio_id"`
	Symbol      string    `json:"symbol"`
	Side        string    `json:"side"`
	Quantity    int64     `json:"quantity"`
	Price       float64   `json:"price"`
	TotalAmount float64   `json:"total_amount"`
	ExecutedAt  time.Time `json:"executed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Order is the audit/display view of a trade event. Market orders fill
// immediately and completely, so status is always FILLED and the fill
// quantity and price equal the requested quantity and execution price.
// The schema's other statuses (PENDING, PARTIALLY_FILLED, CANCELLED,
// REJECTED) are reserved for order types outside the current scope.
type Order struct {
	ID               string    `json:"id"`
	PortfolioID      string    `json:"portfolio_id"`
	Symbol           string    `json:"symbol"`
	OrderType        string    `json:"order_type"`
	Side             string    `json:"side"`
	Quantity         int64     `json:"quantity"`
	Status           string    `json:"status"`
	FilledQuantity   int64     `json:"filled_quantity"`
	AverageFillPrice float64   `json:"average_fill_price"`
	TotalAmount      float64   `json:"total_amount"`
	ExecutedAt       time.Time `json:"executed_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// Transaction is the ledger view of a trade event: the immutable economic
// facts used for realized P&L reconstruction.
type Transaction struct {
	ID             string    `json:"id"`
	PortfolioID    string    `json:"portfolio_id"`
	OrderID        string    `json:"order_id"`
	Symbol         string    `json:"symbol"`
	Side           string    `json:"side"`
	Quantity       int64     `json:"quantity"`
	ExecutionPrice float64   `json:"execution_price"`
	TotalAmount    float64   `json:"total_amount"`
	Timestamp      time.Time `json:"timestamp"`
}

// Order derives the order view of the event.
func (e TradeEvent) Order() Order {
	return Order{
		ID:               e.ID,
		PortfolioID:      e.PortfolioID,
		Symbol:           e.Symbol,
		OrderType:        "MARKET",
		Side:             e.Side,
		Quantity:         e.Quantity,
		Status:           "FILLED",
		FilledQuantity:   e.Quantity,
		AverageFillPrice: e.Price,
		TotalAmount:      e.TotalAmount,
		ExecutedAt:       e.ExecutedAt,
		CreatedAt:        e.CreatedAt,
	}
}

// Transaction derives the ledger view of the event. OrderID equals the event
// ID because both views describe the same execution.
func (e TradeEvent) Transaction() Transaction {
	return Transaction{
		ID:             e.ID,
		PortfolioID:    e.PortfolioID,
		OrderID:        e.ID,
		Symbol:         e.Symbol,
		Side:           e.Side,
		Quantity:       e.Quantity,
		ExecutionPrice: e.Price,
		TotalAmount:    e.TotalAmount,
		Timestamp:      e.ExecutedAt,
	}
}
