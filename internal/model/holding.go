package model

import "time"

// Holding is the current position in one symbol within a portfolio,
// identified by the unique (portfolio, symbol) pair. It tracks only
// current-state cost basis; history lives in the trade event log.
//
// Invariants maintained by the execution engine:
//   - TotalCost == float64(Quantity) * AverageBuyPrice (within rounding tolerance)
//   - a holding with Quantity == 0 is deleted, never retained at zero
type Holding struct {
	ID              string    `json:"id"`
	PortfolioID     string    `json:"portfolio_id"`
	Symbol          string    `json:"symbol"`
	Quantity        int64     `json:"quantity"`
	AverageBuyPrice float64   `json:"average_buy_price"`
	TotalCost       float64   `json:"total_cost"`
	Version         int64     `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EnrichedHolding is a holding merged with a live oracle price for display.
type EnrichedHolding struct {
	Symbol           string  `json:"symbol"`
	Quantity         int64   `json:"quantity"`
	AverageBuyPrice  float64 `json:"average_buy_price"`
	TotalCost        float64 `json:"total_cost"`
	CurrentPrice     float64 `json:"current_price"`
	CurrentValue     float64 `json:"current_value"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	UnrealizedPnLPct float64 `json:"unrealized_pnl_pct"`
	AllocationPct    float64 `json:"allocation_pct"`
	PriceAvailable   bool    `json:"price_available"`
}
