package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/papertrade/paper-trading-backend/internal/model"
	"github.com/papertrade/paper-trading-backend/internal/repository"
)

// MakeID returns a fresh UUID string.
func MakeID() string {
	return uuid.New().String()
}

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithUserID(userID).
//	    WithCashBalance(1000).
//	    Build(t, db)
type PortfolioBuilder struct {
	portfolio model.Portfolio
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	now := time.Now().UTC()
	return &PortfolioBuilder{portfolio: model.Portfolio{
		ID:             MakeID(),
		UserID:         MakeID(),
		Name:           "Test Portfolio",
		InitialCapital: 100000,
		CashBalance:    100000,
		IsActive:       true,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}}
}

// WithUserID sets the owning user.
func (b *PortfolioBuilder) WithUserID(userID string) *PortfolioBuilder {
	b.portfolio.UserID = userID
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.portfolio.Name = name
	return b
}

// WithInitialCapital sets the starting capital (cash balance is set separately).
func (b *PortfolioBuilder) WithInitialCapital(capital float64) *PortfolioBuilder {
	b.portfolio.InitialCapital = capital
	return b
}

// WithCashBalance sets the current cash balance.
func (b *PortfolioBuilder) WithCashBalance(balance float64) *PortfolioBuilder {
	b.portfolio.CashBalance = balance
	return b
}

// Inactive marks the portfolio as soft-deleted.
func (b *PortfolioBuilder) Inactive() *PortfolioBuilder {
	b.portfolio.IsActive = false
	return b
}

// Portfolio returns the built value without inserting it, for tests that
// drive the repository directly.
func (b *PortfolioBuilder) Portfolio() model.Portfolio {
	return b.portfolio
}

// Build inserts the portfolio and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()
	if err := repository.NewPortfolioRepository(db).Insert(b.portfolio); err != nil {
		t.Fatalf("Failed to insert test portfolio: %v", err)
	}
	return b.portfolio
}

// HoldingBuilder provides a fluent interface for creating test holdings.
type HoldingBuilder struct {
	holding model.Holding
}

// NewHolding creates a HoldingBuilder for the given portfolio and symbol.
// Defaults to 10 shares at an average price of 50.
func NewHolding(portfolioID, symbol string) *HoldingBuilder {
	now := time.Now().UTC()
	return &HoldingBuilder{holding: model.Holding{
		ID:              MakeID(),
		PortfolioID:     portfolioID,
		Symbol:          symbol,
		Quantity:        10,
		AverageBuyPrice: 50,
		TotalCost:       500,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}}
}

// WithPosition sets quantity and average price; total cost follows.
func (b *HoldingBuilder) WithPosition(quantity int64, averagePrice float64) *HoldingBuilder {
	b.holding.Quantity = quantity
	b.holding.AverageBuyPrice = averagePrice
	b.holding.TotalCost = float64(quantity) * averagePrice
	return b
}

// Build inserts the holding and returns it.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()
	if err := repository.NewHoldingRepository(db).Insert(b.holding); err != nil {
		t.Fatalf("Failed to insert test holding: %v", err)
	}
	return b.holding
}

// TradeEventBuilder provides a fluent interface for appending test trade events.
type TradeEventBuilder struct {
	event model.TradeEvent
}

// NewTradeEvent creates a TradeEventBuilder for the given portfolio.
// Defaults to a BUY of 10 shares at 50.
func NewTradeEvent(portfolioID, symbol string) *TradeEventBuilder {
	now := time.Now().UTC()
	return &TradeEventBuilder{event: model.TradeEvent{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		Symbol:      symbol,
		Side:        model.SideBuy,
		Quantity:    10,
		Price:       50,
		TotalAmount: 500,
		ExecutedAt:  now,
		CreatedAt:   now,
	}}
}

// Buy configures the event as a BUY of quantity at price.
func (b *TradeEventBuilder) Buy(quantity int64, price float64) *TradeEventBuilder {
	b.event.Side = model.SideBuy
	b.event.Quantity = quantity
	b.event.Price = price
	b.event.TotalAmount = float64(quantity) * price
	return b
}

// Sell configures the event as a SELL of quantity at price.
func (b *TradeEventBuilder) Sell(quantity int64, price float64) *TradeEventBuilder {
	b.event.Side = model.SideSell
	b.event.Quantity = quantity
	b.event.Price = price
	b.event.TotalAmount = float64(quantity) * price
	return b
}

// At sets the execution timestamp. The replay is sensitive to ordering
// within a symbol, so tests control it explicitly.
func (b *TradeEventBuilder) At(ts time.Time) *TradeEventBuilder {
	b.event.ExecutedAt = ts
	return b
}

// Build inserts the event and returns it.
func (b *TradeEventBuilder) Build(t *testing.T, db *sql.DB) model.TradeEvent {
	t.Helper()
	if err := repository.NewTradeEventRepository(db).Insert(b.event); err != nil {
		t.Fatalf("Failed to insert test trade event: %v", err)
	}
	return b.event
}

// Event builds the event without inserting it, for pure replay tests.
func (b *TradeEventBuilder) Event() model.TradeEvent {
	return b.event
}
