package service_test

import (
	"math"
	"testing"
	"time"

	"github.com/papertrade/paper-trading-backend/internal/model"
	"github.com/papertrade/paper-trading-backend/internal/service"
	"github.com/papertrade/paper-trading-backend/internal/testutil"
)

// event builds an in-memory trade event for replay tests. The portfolio ID
// is irrelevant to the pure replay.
func event(symbol, side string, quantity int64, price float64, at time.Time) model.TradeEvent {
	b := testutil.NewTradeEvent("replay-test", symbol)
	if side == model.SideBuy {
		b.Buy(quantity, price)
	} else {
		b.Sell(quantity, price)
	}
	return b.At(at).Event()
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestReplayRealizedPnL tests the average-cost replay over a trade log.
//
// WHY: Realized P&L is reconstructed from history on every read; it is the
// number users judge their trading by. The replay must price each sale at
// the average cost of all buys up to that sale, per symbol, regardless of
// how other symbols interleave in the log.
func TestReplayRealizedPnL(t *testing.T) {
	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	t.Run("no sells means no realized P&L", func(t *testing.T) {
		events := []model.TradeEvent{
			event("TECH", model.SideBuy, 10, 50, base),
			event("ENER", model.SideBuy, 5, 20, base.Add(time.Minute)),
		}

		if got := service.ReplayRealizedPnL(events); got != 0 {
			t.Errorf("Expected 0 realized P&L, got %v", got)
		}
	})

	t.Run("single buy then sell realizes price difference", func(t *testing.T) {
		// Buy 10 @ $50, sell 4 @ $60: P&L = 4 * (60 - 50) = 40
		events := []model.TradeEvent{
			event("TECH", model.SideBuy, 10, 50, base),
			event("TECH", model.SideSell, 4, 60, base.Add(time.Hour)),
		}

		if got := service.ReplayRealizedPnL(events); !almostEqual(got, 40) {
			t.Errorf("Expected realized P&L 40, got %v", got)
		}
	})

	t.Run("sale is priced at the average of all prior buys", func(t *testing.T) {
		// Buy 10 @ $50 and 10 @ $100: average $75.
		// Sell 5 @ $90: P&L = 5 * (90 - 75) = 75
		events := []model.TradeEvent{
			event("TECH", model.SideBuy, 10, 50, base),
			event("TECH", model.SideBuy, 10, 100, base.Add(time.Minute)),
			event("TECH", model.SideSell, 5, 90, base.Add(time.Hour)),
		}

		if got := service.ReplayRealizedPnL(events); !almostEqual(got, 75) {
			t.Errorf("Expected realized P&L 75, got %v", got)
		}
	})

	t.Run("buys after a sale do not affect that sale", func(t *testing.T) {
		// The sale at $60 sees only the $50 lot; the later $200 buy is
		// invisible to it. P&L = 4 * (60 - 50) = 40
		events := []model.TradeEvent{
			event("TECH", model.SideBuy, 10, 50, base),
			event("TECH", model.SideSell, 4, 60, base.Add(time.Hour)),
			event("TECH", model.SideBuy, 10, 200, base.Add(2 * time.Hour)),
		}

		if got := service.ReplayRealizedPnL(events); !almostEqual(got, 40) {
			t.Errorf("Expected realized P&L 40, got %v", got)
		}
	})

	t.Run("each sale contributes independently", func(t *testing.T) {
		// Buy 10 @ $50. Sell 4 @ $60 (P&L 40), sell 6 @ $40 (P&L -60).
		events := []model.TradeEvent{
			event("TECH", model.SideBuy, 10, 50, base),
			event("TECH", model.SideSell, 4, 60, base.Add(time.Hour)),
			event("TECH", model.SideSell, 6, 40, base.Add(2 * time.Hour)),
		}

		if got := service.ReplayRealizedPnL(events); !almostEqual(got, -20) {
			t.Errorf("Expected realized P&L -20, got %v", got)
		}
	})

	t.Run("symbols are replayed independently of interleaving", func(t *testing.T) {
		tech := []model.TradeEvent{
			event("TECH", model.SideBuy, 10, 50, base),
			event("TECH", model.SideSell, 4, 60, base.Add(time.Hour)),
		}
		ener := []model.TradeEvent{
			event("ENER", model.SideBuy, 20, 10, base.Add(time.Minute)),
			event("ENER", model.SideSell, 20, 15, base.Add(30 * time.Minute)),
		}

		separate := service.ReplayRealizedPnL(tech) + service.ReplayRealizedPnL(ener)

		interleaved := []model.TradeEvent{tech[0], ener[0], ener[1], tech[1]}
		combined := service.ReplayRealizedPnL(interleaved)

		if !almostEqual(separate, combined) {
			t.Errorf("Expected interleaving not to matter: separate=%v combined=%v", separate, combined)
		}
		if !almostEqual(combined, 140) {
			t.Errorf("Expected combined realized P&L 140, got %v", combined)
		}
	})

	t.Run("fully consumed position zeroes the cost basis", func(t *testing.T) {
		// Buy 10 @ $50, sell all 10 @ $60 (P&L 100). A later sell of a
		// position already consumed carries no cost basis.
		events := []model.TradeEvent{
			event("TECH", model.SideBuy, 10, 50, base),
			event("TECH", model.SideSell, 10, 60, base.Add(time.Hour)),
			event("TECH", model.SideSell, 2, 30, base.Add(2 * time.Hour)),
		}

		// Second sale books its full proceeds: 100 + 2*30 = 160
		if got := service.ReplayRealizedPnL(events); !almostEqual(got, 160) {
			t.Errorf("Expected realized P&L 160, got %v", got)
		}
	})

	t.Run("empty log yields zero", func(t *testing.T) {
		if got := service.ReplayRealizedPnL(nil); got != 0 {
			t.Errorf("Expected 0 for empty log, got %v", got)
		}
	})
}

// TestRealizedPnLService_RealizedPnL tests the database-backed replay.
//
// WHY: The service must read the full event log in execution order. A
// truncated or misordered read silently changes the reported P&L.
func TestRealizedPnLService_RealizedPnL(t *testing.T) {
	t.Run("replays the stored event log", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := service.NewRealizedPnLService(db)
		portfolio := testutil.NewPortfolio().Build(t, db)

		base := time.Now().UTC().Add(-time.Hour)
		testutil.NewTradeEvent(portfolio.ID, "TECH").Buy(10, 50).At(base).Build(t, db)
		testutil.NewTradeEvent(portfolio.ID, "TECH").Sell(4, 60).At(base.Add(time.Minute)).Build(t, db)

		// Execute
		got, err := svc.RealizedPnL(portfolio.ID)

		// Assert
		if err != nil {
			t.Fatalf("RealizedPnL() returned unexpected error: %v", err)
		}
		if !almostEqual(got, 40) {
			t.Errorf("Expected realized P&L 40, got %v", got)
		}
	})

	t.Run("ignores other portfolios' events", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := service.NewRealizedPnLService(db)
		mine := testutil.NewPortfolio().Build(t, db)
		other := testutil.NewPortfolio().Build(t, db)

		base := time.Now().UTC().Add(-time.Hour)
		testutil.NewTradeEvent(other.ID, "TECH").Buy(10, 50).At(base).Build(t, db)
		testutil.NewTradeEvent(other.ID, "TECH").Sell(10, 90).At(base.Add(time.Minute)).Build(t, db)

		// Execute
		got, err := svc.RealizedPnL(mine.ID)

		// Assert
		if err != nil {
			t.Fatalf("RealizedPnL() returned unexpected error: %v", err)
		}
		if got != 0 {
			t.Errorf("Expected 0 for portfolio with no events, got %v", got)
		}
	})
}
