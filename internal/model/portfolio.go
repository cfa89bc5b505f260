package model

import "time"

// Portfolio represents a user's simulated cash-funded portfolio.
// A user has at most one active portfolio at a time; deleting a portfolio
// flips IsActive to false, it is never removed from the store.
type Portfolio struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	InitialCapital float64   `json:"initial_capital"`
	CashBalance    float64   `json:"cash_balance"`
	IsActive       bool      `json:"is_active"`
	Version        int64     `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PortfolioSummary is the valuation snapshot for a portfolio, combining the
// stored ledger with live oracle prices. All monetary fields are full
// precision; rounding happens at the response boundary.
type PortfolioSummary struct {
	TotalValue     float64 `json:"total_value"`
	InvestedAmount float64 `json:"invested_amount"`
	HoldingsValue  float64 `json:"holdings_value"`
	CashBalance    float64 `json:"cash_balance"`
	UnrealizedPnL  float64 `json:"unrealized_pnl"`
	RealizedPnL    float64 `json:"realized_pnl"`
	TotalPnL       float64 `json:"total_pnl"`
	TotalReturnPct float64 `json:"total_return_pct"`
}
