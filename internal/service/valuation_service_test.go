package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/papertrade/paper-trading-backend/internal/apperrors"
	"github.com/papertrade/paper-trading-backend/internal/config"
	"github.com/papertrade/paper-trading-backend/internal/service"
	"github.com/papertrade/paper-trading-backend/internal/testutil"
)

// TestValuationService_GetPortfolioSnapshot tests portfolio-level valuation.
//
// WHY: The snapshot is the headline number on the dashboard. Total value,
// invested amount and the P&L split must stay mutually consistent, and an
// all-cash portfolio must value to exactly its cash.
func TestValuationService_GetPortfolioSnapshot(t *testing.T) {
	t.Run("all-cash portfolio values to its cash balance", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := service.NewValuationService(db, testutil.NewStaticPrices(nil),
			service.NewRealizedPnLService(db), config.PriceFallbackZero)
		portfolio := testutil.NewPortfolio().
			WithInitialCapital(100000).
			WithCashBalance(100000).
			Build(t, db)

		// Execute
		snapshot, err := svc.GetPortfolioSnapshot(context.Background(), portfolio.UserID)

		// Assert
		if err != nil {
			t.Fatalf("GetPortfolioSnapshot() returned unexpected error: %v", err)
		}
		if snapshot.Summary.TotalValue != 100000 {
			t.Errorf("Expected total value 100000, got %v", snapshot.Summary.TotalValue)
		}
		if snapshot.Summary.InvestedAmount != 0 {
			t.Errorf("Expected invested amount 0, got %v", snapshot.Summary.InvestedAmount)
		}
		if snapshot.Summary.TotalReturnPct != 0 {
			t.Errorf("Expected total return 0%%, got %v", snapshot.Summary.TotalReturnPct)
		}
	})

	t.Run("combines cash, holdings value and both P&L kinds", func(t *testing.T) {
		// Setup: $1,000 initial, bought 10 @ $50 then the price moved to $60.
		// A past round trip on ENER realized $40.
		db := testutil.SetupTestDB(t)
		prices := testutil.NewStaticPrices(map[string]float64{"TECH": 60})
		svc := service.NewValuationService(db, prices,
			service.NewRealizedPnLService(db), config.PriceFallbackZero)
		portfolio := testutil.NewPortfolio().
			WithInitialCapital(1000).
			WithCashBalance(500).
			Build(t, db)
		testutil.NewHolding(portfolio.ID, "TECH").WithPosition(10, 50).Build(t, db)

		base := time.Now().UTC().Add(-time.Hour)
		testutil.NewTradeEvent(portfolio.ID, "ENER").Buy(4, 10).At(base).Build(t, db)
		testutil.NewTradeEvent(portfolio.ID, "ENER").Sell(4, 20).At(base.Add(time.Minute)).Build(t, db)

		// Execute
		snapshot, err := svc.GetPortfolioSnapshot(context.Background(), portfolio.UserID)

		// Assert
		if err != nil {
			t.Fatalf("GetPortfolioSnapshot() returned unexpected error: %v", err)
		}

		s := snapshot.Summary
		if s.HoldingsValue != 600 {
			t.Errorf("Expected holdings value 600, got %v", s.HoldingsValue)
		}
		if s.InvestedAmount != 500 {
			t.Errorf("Expected invested amount 500, got %v", s.InvestedAmount)
		}
		if s.TotalValue != 1100 {
			t.Errorf("Expected total value 1100, got %v", s.TotalValue)
		}
		if s.UnrealizedPnL != 100 {
			t.Errorf("Expected unrealized P&L 100, got %v", s.UnrealizedPnL)
		}
		if s.RealizedPnL != 40 {
			t.Errorf("Expected realized P&L 40, got %v", s.RealizedPnL)
		}
		if s.TotalPnL != 140 {
			t.Errorf("Expected total P&L 140, got %v", s.TotalPnL)
		}
		if s.TotalReturnPct != 10 {
			t.Errorf("Expected total return 10%%, got %v", s.TotalReturnPct)
		}
	})

	t.Run("zero fallback values unpriced holdings at nothing", func(t *testing.T) {
		// Setup: oracle degraded, policy "zero"
		db := testutil.SetupTestDB(t)
		prices := testutil.NewStaticPrices(map[string]float64{"TECH": 60})
		prices.Unavailable = true
		svc := service.NewValuationService(db, prices,
			service.NewRealizedPnLService(db), config.PriceFallbackZero)
		portfolio := testutil.NewPortfolio().
			WithInitialCapital(1000).
			WithCashBalance(500).
			Build(t, db)
		testutil.NewHolding(portfolio.ID, "TECH").WithPosition(10, 50).Build(t, db)

		// Execute
		snapshot, err := svc.GetPortfolioSnapshot(context.Background(), portfolio.UserID)

		// Assert: valuation never fails on oracle loss, value degrades to cash
		if err != nil {
			t.Fatalf("GetPortfolioSnapshot() returned unexpected error: %v", err)
		}
		if snapshot.Summary.HoldingsValue != 0 {
			t.Errorf("Expected holdings value 0 under zero fallback, got %v", snapshot.Summary.HoldingsValue)
		}
		if snapshot.Summary.UnrealizedPnL != -500 {
			t.Errorf("Expected unrealized P&L -500, got %v", snapshot.Summary.UnrealizedPnL)
		}
		if snapshot.Summary.TotalValue != 500 {
			t.Errorf("Expected total value 500, got %v", snapshot.Summary.TotalValue)
		}
	})

	t.Run("cost fallback values unpriced holdings at cost", func(t *testing.T) {
		// Setup: oracle degraded, policy "cost"
		db := testutil.SetupTestDB(t)
		prices := testutil.NewStaticPrices(nil)
		prices.Unavailable = true
		svc := service.NewValuationService(db, prices,
			service.NewRealizedPnLService(db), config.PriceFallbackCost)
		portfolio := testutil.NewPortfolio().
			WithInitialCapital(1000).
			WithCashBalance(500).
			Build(t, db)
		testutil.NewHolding(portfolio.ID, "TECH").WithPosition(10, 50).Build(t, db)

		// Execute
		snapshot, err := svc.GetPortfolioSnapshot(context.Background(), portfolio.UserID)

		// Assert: position carried at cost, unrealized P&L reads flat
		if err != nil {
			t.Fatalf("GetPortfolioSnapshot() returned unexpected error: %v", err)
		}
		if snapshot.Summary.HoldingsValue != 500 {
			t.Errorf("Expected holdings value 500 under cost fallback, got %v", snapshot.Summary.HoldingsValue)
		}
		if snapshot.Summary.UnrealizedPnL != 0 {
			t.Errorf("Expected unrealized P&L 0, got %v", snapshot.Summary.UnrealizedPnL)
		}
	})

	t.Run("returns not found without an active portfolio", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := service.NewValuationService(db, testutil.NewStaticPrices(nil),
			service.NewRealizedPnLService(db), config.PriceFallbackZero)

		// Execute
		_, err := svc.GetPortfolioSnapshot(context.Background(), testutil.MakeID())

		// Assert
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

// TestValuationService_GetHoldings tests per-position enrichment.
//
// WHY: The holdings view drives the positions table in the UI: live price,
// per-position P&L, allocation and ordering all come from here, and a
// holding without a quote must be flagged rather than silently misvalued.
func TestValuationService_GetHoldings(t *testing.T) {
	t.Run("enriches holdings with price, P&L and allocation", func(t *testing.T) {
		// Setup: TECH is worth $600, ENER $400 — allocation 60/40
		db := testutil.SetupTestDB(t)
		prices := testutil.NewStaticPrices(map[string]float64{"TECH": 60, "ENER": 20})
		svc := service.NewValuationService(db, prices,
			service.NewRealizedPnLService(db), config.PriceFallbackZero)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewHolding(portfolio.ID, "TECH").WithPosition(10, 50).Build(t, db)
		testutil.NewHolding(portfolio.ID, "ENER").WithPosition(20, 25).Build(t, db)

		// Execute
		holdings, err := svc.GetHoldings(context.Background(), portfolio.UserID)

		// Assert
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}
		if len(holdings) != 2 {
			t.Fatalf("Expected 2 holdings, got %d", len(holdings))
		}

		// Sorted by descending current value: TECH ($600) before ENER ($400)
		if holdings[0].Symbol != "TECH" || holdings[1].Symbol != "ENER" {
			t.Errorf("Expected TECH before ENER, got %s, %s", holdings[0].Symbol, holdings[1].Symbol)
		}

		tech := holdings[0]
		if tech.CurrentPrice != 60 || tech.CurrentValue != 600 {
			t.Errorf("Expected TECH priced 60 valued 600, got %v / %v", tech.CurrentPrice, tech.CurrentValue)
		}
		if tech.UnrealizedPnL != 100 {
			t.Errorf("Expected TECH unrealized P&L 100, got %v", tech.UnrealizedPnL)
		}
		if tech.UnrealizedPnLPct != 20 {
			t.Errorf("Expected TECH unrealized P&L 20%%, got %v", tech.UnrealizedPnLPct)
		}
		if tech.AllocationPct != 60 {
			t.Errorf("Expected TECH allocation 60%%, got %v", tech.AllocationPct)
		}
		if !tech.PriceAvailable {
			t.Error("Expected TECH price to be flagged available")
		}

		ener := holdings[1]
		if ener.UnrealizedPnL != -100 {
			t.Errorf("Expected ENER unrealized P&L -100, got %v", ener.UnrealizedPnL)
		}
		if ener.AllocationPct != 40 {
			t.Errorf("Expected ENER allocation 40%%, got %v", ener.AllocationPct)
		}
	})

	t.Run("flags holdings the oracle has no quote for", func(t *testing.T) {
		// Setup: only TECH is quoted
		db := testutil.SetupTestDB(t)
		prices := testutil.NewStaticPrices(map[string]float64{"TECH": 60})
		svc := service.NewValuationService(db, prices,
			service.NewRealizedPnLService(db), config.PriceFallbackZero)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewHolding(portfolio.ID, "TECH").WithPosition(10, 50).Build(t, db)
		testutil.NewHolding(portfolio.ID, "GONE").WithPosition(5, 30).Build(t, db)

		// Execute
		holdings, err := svc.GetHoldings(context.Background(), portfolio.UserID)

		// Assert
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}

		for _, h := range holdings {
			switch h.Symbol {
			case "TECH":
				if !h.PriceAvailable {
					t.Error("Expected TECH flagged available")
				}
			case "GONE":
				if h.PriceAvailable {
					t.Error("Expected GONE flagged unavailable")
				}
				if h.CurrentPrice != 0 || h.CurrentValue != 0 {
					t.Errorf("Expected GONE valued at 0 under zero fallback, got %v / %v",
						h.CurrentPrice, h.CurrentValue)
				}
			}
		}
	})

	t.Run("returns empty slice for a portfolio with no positions", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := service.NewValuationService(db, testutil.NewStaticPrices(nil),
			service.NewRealizedPnLService(db), config.PriceFallbackZero)
		portfolio := testutil.NewPortfolio().Build(t, db)

		// Execute
		holdings, err := svc.GetHoldings(context.Background(), portfolio.UserID)

		// Assert
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}
		if holdings == nil || len(holdings) != 0 {
			t.Errorf("Expected empty slice, got %v", holdings)
		}
	})
}
