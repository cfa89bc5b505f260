package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papertrade/paper-trading-backend/internal/apperrors"
	"github.com/papertrade/paper-trading-backend/internal/model"
	"github.com/papertrade/paper-trading-backend/internal/repository"
)

// PriceSource is the oracle surface the services depend on.
type PriceSource interface {
	// Quote returns the current price for one symbol or an error; no retry,
	// no fallback. Used on the order-execution path where a missing price
	// is fatal.
	Quote(ctx context.Context, symbol string) (float64, error)
	// Prices returns a best-effort symbol->price map; symbols without a
	// quote are absent. Used on valuation paths that degrade gracefully.
	Prices(ctx context.Context, symbols []string) map[string]float64
}

// maxOrderHistory caps the order listing at the most recent executions.
const maxOrderHistory = 50

// OrderResult is the outcome of a filled market order. Order and Transaction
// are two views of the same trade event.
type OrderResult struct {
	Order          model.Order
	Transaction    model.Transaction
	NewCashBalance float64
}

// ExecutionService is the order execution engine. It validates a market
// order request, prices it against the oracle, and atomically mutates cash
// balance and holding cost basis while appending an immutable trade event.
type ExecutionService struct {
	db     *sql.DB
	prices PriceSource
}

// NewExecutionService creates a new ExecutionService. The service opens its
// own transactions on db; repositories are constructed per call inside them.
func NewExecutionService(db *sql.DB, prices PriceSource) *ExecutionService {
	return &ExecutionService{db: db, prices: prices}
}

// ExecuteMarketOrder executes a BUY or SELL market order for the user's
// active portfolio.
//
// Preconditions are checked in a fixed order, each a distinct failure:
// active portfolio exists, side is BUY/SELL, quantity is a positive integer,
// the oracle supplies a current price, and cash/holdings cover the order.
// Validation happens before any mutation; once mutation begins, the whole
// sequence runs in one transaction so a failure leaves no partial state.
//
// Quantity arrives as float64 straight from the request body so that a
// fractional value is rejected as InvalidQuantity rather than mangled by
// integer truncation.
func (s *ExecutionService) ExecuteMarketOrder(ctx context.Context, userID, symbol, side string, quantity float64) (OrderResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	side = strings.ToUpper(strings.TrimSpace(side))

	portfolio, err := repository.NewPortfolioRepository(s.db).GetActiveByUserID(userID)
	if err != nil {
		return OrderResult{}, err
	}

	if side != model.SideBuy && side != model.SideSell {
		return OrderResult{}, apperrors.ErrInvalidSide
	}

	if symbol == "" || quantity < 1 || quantity != math.Trunc(quantity) {
		return OrderResult{}, apperrors.ErrInvalidQuantity
	}
	qty := int64(quantity)

	price, err := s.prices.Quote(ctx, symbol)
	if err != nil {
		return OrderResult{}, fmt.Errorf("%w: %v", apperrors.ErrPriceUnavailable, err)
	}

	totalAmount := price * float64(qty)

	// Fast business rejection before opening a transaction. The same checks
	// run again inside the transaction against in-transaction state.
	if err := validateCoverage(s.db, portfolio, symbol, side, qty, totalAmount); err != nil {
		return OrderResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return OrderResult{}, fmt.Errorf("failed to begin order transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := s.executeInTx(tx, portfolio.ID, symbol, side, qty, price, totalAmount)
	if err != nil {
		return OrderResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return OrderResult{}, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	return result, nil
}

// executeInTx performs the mutation sequence against transaction-scoped
// repositories: re-validate, append the trade event, adjust the holding,
// apply the cash delta. Every update is a compare-and-swap on the row
// version, so a concurrent order against the same portfolio or holding
// causes a rollback instead of an over-sold position.
func (s *ExecutionService) executeInTx(tx *sql.Tx, portfolioID, symbol, side string, qty int64, price, totalAmount float64) (OrderResult, error) {
	portfolioRepo := repository.NewPortfolioRepository(tx)
	holdingRepo := repository.NewHoldingRepository(tx)
	eventRepo := repository.NewTradeEventRepository(tx)

	// Re-read inside the transaction: the pre-check state may be stale.
	portfolio, err := portfolioRepo.GetByID(portfolioID)
	if err != nil {
		return OrderResult{}, err
	}
	if !portfolio.IsActive {
		return OrderResult{}, apperrors.ErrPortfolioNotFound
	}
	if err := validateCoverage(tx, portfolio, symbol, side, qty, totalAmount); err != nil {
		return OrderResult{}, err
	}

	now := time.Now().UTC()
	event := model.TradeEvent{
		ID:          uuid.New().String(),
		PortfolioID: portfolio.ID,
		Symbol:      symbol,
		Side:        side,
		Quantity:    qty,
		Price:       price,
		TotalAmount: totalAmount,
		ExecutedAt:  now,
		CreatedAt:   now,
	}
	if err := eventRepo.Insert(event); err != nil {
		return OrderResult{}, err
	}

	switch side {
	case model.SideBuy:
		if err := applyBuy(holdingRepo, portfolio.ID, symbol, qty, price, totalAmount, now); err != nil {
			return OrderResult{}, err
		}
	case model.SideSell:
		if err := applySell(holdingRepo, portfolio.ID, symbol, qty, totalAmount); err != nil {
			return OrderResult{}, err
		}
	}

	newBalance := portfolio.CashBalance - totalAmount
	if side == model.SideSell {
		newBalance = portfolio.CashBalance + totalAmount
	}
	if err := portfolioRepo.UpdateCashBalance(portfolio.ID, newBalance, portfolio.Version); err != nil {
		return OrderResult{}, err
	}

	return OrderResult{
		Order:          event.Order(),
		Transaction:    event.Transaction(),
		NewCashBalance: newBalance,
	}, nil
}

// validateCoverage checks the business rules that depend on current ledger
// state: cash coverage for a BUY, owned quantity for a SELL.
func validateCoverage(db repository.DBTX, portfolio model.Portfolio, symbol, side string, qty int64, totalAmount float64) error {
	switch side {
	case model.SideBuy:
		if portfolio.CashBalance < totalAmount {
			return &apperrors.InsufficientFundsError{
				Required:  totalAmount,
				Available: portfolio.CashBalance,
			}
		}
	case model.SideSell:
		holding, err := repository.NewHoldingRepository(db).GetBySymbol(portfolio.ID, symbol)
		if errors.Is(err, apperrors.ErrHoldingNotFound) {
			return &apperrors.InsufficientHoldingsError{Owned: 0, Requested: qty}
		}
		if err != nil {
			return err
		}
		if holding.Quantity < qty {
			return &apperrors.InsufficientHoldingsError{Owned: holding.Quantity, Requested: qty}
		}
	}
	return nil
}

// applyBuy upserts the holding: first BUY of a symbol creates the position,
// subsequent BUYs fold into the quantity-weighted average cost basis.
func applyBuy(holdingRepo *repository.HoldingRepository, portfolioID, symbol string, qty int64, price, totalAmount float64, now time.Time) error {
	holding, err := holdingRepo.GetBySymbol(portfolioID, symbol)
	if errors.Is(err, apperrors.ErrHoldingNotFound) {
		return holdingRepo.Insert(model.Holding{
			ID:              uuid.New().String(),
			PortfolioID:     portfolioID,
			Symbol:          symbol,
			Quantity:        qty,
			AverageBuyPrice: price,
			TotalCost:       totalAmount,
			Version:         1,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	if err != nil {
		return err
	}

	holding.Quantity += qty
	holding.TotalCost += totalAmount
	holding.AverageBuyPrice = holding.TotalCost / float64(holding.Quantity)
	return holdingRepo.Update(holding)
}

// applySell reduces the holding by the average-cost allocation of the sold
// lot; the average buy price is left unchanged. Selling the full quantity
// deletes the position.
func applySell(holdingRepo *repository.HoldingRepository, portfolioID, symbol string, qty int64, totalAmount float64) error {
	holding, err := holdingRepo.GetBySymbol(portfolioID, symbol)
	if err != nil {
		return err
	}

	costBasis := holding.TotalCost / float64(holding.Quantity) * float64(qty)

	// Informational only. Canonical realized P&L is reconstructed from the
	// trade event log by RealizedPnLService.
	log.Printf("Realized P&L for %s: $%.2f", symbol, totalAmount-costBasis)

	if holding.Quantity == qty {
		return holdingRepo.Delete(holding.ID, holding.Version)
	}

	holding.Quantity -= qty
	holding.TotalCost -= costBasis
	return holdingRepo.Update(holding)
}

// GetOrders returns the most recent executions of the user's active
// portfolio as order views, newest first, capped at 50.
func (s *ExecutionService) GetOrders(ctx context.Context, userID string) ([]model.Order, error) {
	portfolio, err := repository.NewPortfolioRepository(s.db).GetActiveByUserID(userID)
	if err != nil {
		return nil, err
	}

	events, err := repository.NewTradeEventRepository(s.db).GetRecent(portfolio.ID, maxOrderHistory)
	if err != nil {
		return nil, err
	}

	orders := make([]model.Order, len(events))
	for i, e := range events {
		orders[i] = e.Order()
	}
	return orders, nil
}
