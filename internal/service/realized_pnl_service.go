package service

import (
	"database/sql"

	"github.com/papertrade/paper-trading-backend/internal/model"
	"github.com/papertrade/paper-trading-backend/internal/repository"
)

// RealizedPnLService reconstructs realized profit-and-loss from the
// immutable trade event log. It never reads Holding state: holding mutation
// destroys the history needed to attribute P&L to a specific past sale.
type RealizedPnLService struct {
	eventRepo *repository.TradeEventRepository
}

// NewRealizedPnLService creates a new RealizedPnLService.
func NewRealizedPnLService(db *sql.DB) *RealizedPnLService {
	return &RealizedPnLService{eventRepo: repository.NewTradeEventRepository(db)}
}

// RealizedPnL computes the total realized P&L of a portfolio by replaying
// its full trade history.
func (s *RealizedPnLService) RealizedPnL(portfolioID string) (float64, error) {
	events, err := s.eventRepo.GetByPortfolio(portfolioID)
	if err != nil {
		return 0, err
	}
	return ReplayRealizedPnL(events), nil
}

// ReplayRealizedPnL computes total realized P&L with the average-cost
// method, treating each SELL independently:
//
//	avgCost  = (sum of BUY amounts up to and including the sale time)
//	         / (sum of BUY quantities up to and including the sale time)
//	sale P&L = sale amount - avgCost * sale quantity
//
// The average is zeroed when earlier sales already consumed the position.
// This deliberately re-sweeps the history for every sale: quadratic in
// event count, but any incremental rewrite changes the numbers for partial
// sells across multiple lots. Acceptable at single-user portfolio volumes.
//
// The result is insensitive to how unrelated symbols interleave in the log
// but sensitive to timestamp ordering within a symbol.
func ReplayRealizedPnL(events []model.TradeEvent) float64 {
	var total float64

	for _, sell := range events {
		if sell.Side != model.SideSell {
			continue
		}

		var totalCost float64
		var totalQuantity, previouslySold int64

		for _, e := range events {
			if e.Symbol != sell.Symbol {
				continue
			}
			switch {
			case e.Side == model.SideBuy && !e.ExecutedAt.After(sell.ExecutedAt):
				totalCost += e.TotalAmount
				totalQuantity += e.Quantity
			case e.Side == model.SideSell && e.ExecutedAt.Before(sell.ExecutedAt):
				previouslySold += e.Quantity
			}
		}

		var avgCostBasis float64
		if totalQuantity-previouslySold > 0 {
			avgCostBasis = totalCost / float64(totalQuantity)
		}

		total += sell.TotalAmount - avgCostBasis*float64(sell.Quantity)
	}

	return total
}
