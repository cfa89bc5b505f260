// Package apperrors defines the error taxonomy shared by services and the
// HTTP layer. Sentinels are matched with errors.Is; the richer business
// rejections carry detail structs and unwrap to their sentinel.
package apperrors

import (
	"errors"
	"fmt"
)

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that the user has no active portfolio.
	ErrPortfolioNotFound = errors.New("no active portfolio found")

	// ErrHoldingNotFound indicates that no holding exists for the requested symbol.
	ErrHoldingNotFound = errors.New("holding not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business
// rules. Orders rejected with these errors never partially execute.
var (
	// ErrInvalidSide indicates an order side other than BUY or SELL.
	ErrInvalidSide = errors.New("invalid side: must be BUY or SELL")

	// ErrInvalidQuantity indicates an order quantity that is not a positive integer.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrInsufficientFunds indicates a BUY whose total exceeds the cash balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientHoldings indicates a SELL exceeding the owned quantity.
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// ErrActivePortfolioExists indicates the user already has an active
	// portfolio and must deactivate it before creating a new one.
	ErrActivePortfolioExists = errors.New("an active portfolio already exists")
)

// Infrastructure errors represent failures of external collaborators or of
// the store itself. These must be surfaced distinctly from business-rule
// rejections: a conflict or partial-write failure may require reconciliation.
var (
	// ErrPriceUnavailable indicates the price oracle could not supply a
	// current quote. Orders are rejected outright, never filled at a stale
	// or default price.
	ErrPriceUnavailable = errors.New("current price unavailable")

	// ErrConcurrentModification indicates a compare-and-swap write lost a
	// race with another request mutating the same portfolio or holding.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// InsufficientFundsError reports required vs. available cash for a rejected BUY.
type InsufficientFundsError struct {
	Required  float64
	Available float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required $%.2f, available $%.2f", e.Required, e.Available)
}

// Unwrap lets errors.Is match ErrInsufficientFunds.
func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// InsufficientHoldingsError reports owned vs. requested quantity for a rejected SELL.
type InsufficientHoldingsError struct {
	Owned     int64
	Requested int64
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient holdings: you own %d shares, trying to sell %d", e.Owned, e.Requested)
}

// Unwrap lets errors.Is match ErrInsufficientHoldings.
func (e *InsufficientHoldingsError) Unwrap() error { return ErrInsufficientHoldings }
