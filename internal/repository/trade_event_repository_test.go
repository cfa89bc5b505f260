package repository_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/papertrade/paper-trading-backend/internal/apperrors"
	"github.com/papertrade/paper-trading-backend/internal/repository"
	"github.com/papertrade/paper-trading-backend/internal/testutil"
)

// TestTradeEventRepository_Immutability tests the append-only guarantee.
//
// WHY: Realized P&L is reconstructed from this log; the schema's triggers
// must block any UPDATE or DELETE so the history cannot be rewritten, even
// by code that bypasses the repository.
func TestTradeEventRepository_Immutability(t *testing.T) {
	t.Run("rejects UPDATE on a trade event", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		event := testutil.NewTradeEvent(portfolio.ID, "TECH").Buy(10, 50).Build(t, db)

		// Execute: raw SQL, deliberately bypassing the repository
		_, err := db.Exec("UPDATE trade_event SET price = 999 WHERE id = ?", event.ID)

		// Assert
		if err == nil {
			t.Fatal("Expected UPDATE to be rejected, got nil")
		}
		if !strings.Contains(err.Error(), "immutable") {
			t.Errorf("Expected immutability violation, got %v", err)
		}
	})

	t.Run("rejects DELETE on a trade event", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		event := testutil.NewTradeEvent(portfolio.ID, "TECH").Buy(10, 50).Build(t, db)

		// Execute
		_, err := db.Exec("DELETE FROM trade_event WHERE id = ?", event.ID)

		// Assert
		if err == nil {
			t.Fatal("Expected DELETE to be rejected, got nil")
		}
		if !strings.Contains(err.Error(), "immutable") {
			t.Errorf("Expected immutability violation, got %v", err)
		}
	})
}

// TestTradeEventRepository_GetByPortfolio tests the replay read.
//
// WHY: The replay assumes execution order; the repository must return
// events ordered by execution time regardless of insertion order.
func TestTradeEventRepository_GetByPortfolio(t *testing.T) {
	t.Run("returns events in execution order", func(t *testing.T) {
		// Setup: insert out of chronological order
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		base := time.Now().UTC().Add(-time.Hour)
		second := testutil.NewTradeEvent(portfolio.ID, "TECH").Sell(4, 60).At(base.Add(time.Minute)).Build(t, db)
		first := testutil.NewTradeEvent(portfolio.ID, "TECH").Buy(10, 50).At(base).Build(t, db)

		// Execute
		events, err := repository.NewTradeEventRepository(db).GetByPortfolio(portfolio.ID)

		// Assert
		if err != nil {
			t.Fatalf("GetByPortfolio() returned unexpected error: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(events))
		}
		if events[0].ID != first.ID || events[1].ID != second.ID {
			t.Errorf("Expected execution order [%s, %s], got [%s, %s]",
				first.ID, second.ID, events[0].ID, events[1].ID)
		}
	})

	t.Run("returns empty slice for an unknown portfolio", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)

		// Execute
		events, err := repository.NewTradeEventRepository(db).GetByPortfolio(testutil.MakeID())

		// Assert
		if err != nil {
			t.Fatalf("GetByPortfolio() returned unexpected error: %v", err)
		}
		if len(events) != 0 {
			t.Errorf("Expected no events, got %d", len(events))
		}
	})
}

// TestPortfolioRepository_UniqueActive tests the one-active-per-user index.
//
// WHY: The uniqueness rule is enforced at the database, not just in the
// service, so concurrent creates cannot race past the application check.
func TestPortfolioRepository_UniqueActive(t *testing.T) {
	t.Run("second active insert for the same user fails", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)
		first := testutil.NewPortfolio().Build(t, db)

		// Execute: same user, directly at the repository
		err := repo.Insert(testutil.NewPortfolio().WithUserID(first.UserID).Portfolio())

		// Assert
		if !errors.Is(err, apperrors.ErrActivePortfolioExists) {
			t.Errorf("Expected ErrActivePortfolioExists, got %v", err)
		}
	})

	t.Run("inactive rows do not block a new active portfolio", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)
		old := testutil.NewPortfolio().Inactive().Build(t, db)

		// Execute
		err := repo.Insert(testutil.NewPortfolio().WithUserID(old.UserID).Portfolio())

		// Assert
		if err != nil {
			t.Errorf("Expected insert to succeed, got %v", err)
		}
	})
}
