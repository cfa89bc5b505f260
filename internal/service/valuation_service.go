package service

import (
	"context"
	"database/sql"
	"sort"

	"github.com/papertrade/paper-trading-backend/internal/config"
	"github.com/papertrade/paper-trading-backend/internal/model"
	"github.com/papertrade/paper-trading-backend/internal/repository"
)

// ValuationService computes current portfolio value, unrealized P&L and
// allocation percentages by merging stored holdings with live oracle prices.
// Oracle failures never fail a valuation call: missing prices are resolved
// through the configured fallback policy and flagged per holding.
type ValuationService struct {
	portfolioRepo *repository.PortfolioRepository
	holdingRepo   *repository.HoldingRepository
	realizedPnL   *RealizedPnLService
	prices        PriceSource

	// priceFallback is the unified missing-quote policy: "zero" values the
	// position at 0, "cost" substitutes the average buy price. One policy
	// for all valuation paths; the choice changes displayed unrealized P&L.
	priceFallback string
}

// NewValuationService creates a new ValuationService.
func NewValuationService(db *sql.DB, prices PriceSource, realizedPnL *RealizedPnLService, priceFallback string) *ValuationService {
	return &ValuationService{
		portfolioRepo: repository.NewPortfolioRepository(db),
		holdingRepo:   repository.NewHoldingRepository(db),
		realizedPnL:   realizedPnL,
		prices:        prices,
		priceFallback: priceFallback,
	}
}

// Snapshot is a portfolio combined with its valuation summary.
type Snapshot struct {
	Portfolio model.Portfolio
	Summary   model.PortfolioSummary
}

// GetPortfolioSnapshot values the user's active portfolio at current oracle
// prices. All figures are full precision; rounding is left to the response
// boundary.
func (s *ValuationService) GetPortfolioSnapshot(ctx context.Context, userID string) (Snapshot, error) {
	portfolio, err := s.portfolioRepo.GetActiveByUserID(userID)
	if err != nil {
		return Snapshot{}, err
	}

	holdings, err := s.holdingRepo.GetByPortfolio(portfolio.ID)
	if err != nil {
		return Snapshot{}, err
	}

	priceMap := s.fetchPrices(ctx, holdings)

	var holdingsValue, investedAmount float64
	for _, h := range holdings {
		price, _ := s.resolvePrice(h, priceMap)
		holdingsValue += price * float64(h.Quantity)
		investedAmount += h.TotalCost
	}

	realized, err := s.realizedPnL.RealizedPnL(portfolio.ID)
	if err != nil {
		return Snapshot{}, err
	}

	unrealized := holdingsValue - investedAmount
	totalValue := portfolio.CashBalance + holdingsValue

	// Guarded, not mathematically necessary: initial_capital >= 1000 by
	// invariant, but an all-cash portfolio reports 0% rather than noise.
	var totalReturnPct float64
	if investedAmount > 0 {
		totalReturnPct = (totalValue - portfolio.InitialCapital) / portfolio.InitialCapital * 100
	}

	return Snapshot{
		Portfolio: portfolio,
		Summary: model.PortfolioSummary{
			TotalValue:     totalValue,
			InvestedAmount: investedAmount,
			HoldingsValue:  holdingsValue,
			CashBalance:    portfolio.CashBalance,
			UnrealizedPnL:  unrealized,
			RealizedPnL:    realized,
			TotalPnL:       unrealized + realized,
			TotalReturnPct: totalReturnPct,
		},
	}, nil
}

// GetHoldings returns the active portfolio's positions enriched with live
// prices, per-position unrealized P&L and allocation, sorted by descending
// current value for display.
func (s *ValuationService) GetHoldings(ctx context.Context, userID string) ([]model.EnrichedHolding, error) {
	portfolio, err := s.portfolioRepo.GetActiveByUserID(userID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.holdingRepo.GetByPortfolio(portfolio.ID)
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return []model.EnrichedHolding{}, nil
	}

	priceMap := s.fetchPrices(ctx, holdings)

	var totalHoldingsValue float64
	enriched := make([]model.EnrichedHolding, len(holdings))
	for i, h := range holdings {
		price, available := s.resolvePrice(h, priceMap)
		currentValue := price * float64(h.Quantity)
		unrealized := currentValue - h.TotalCost

		var unrealizedPct float64
		if h.TotalCost > 0 {
			unrealizedPct = unrealized / h.TotalCost * 100
		}

		enriched[i] = model.EnrichedHolding{
			Symbol:           h.Symbol,
			Quantity:         h.Quantity,
			AverageBuyPrice:  h.AverageBuyPrice,
			TotalCost:        h.TotalCost,
			CurrentPrice:     price,
			CurrentValue:     currentValue,
			UnrealizedPnL:    unrealized,
			UnrealizedPnLPct: unrealizedPct,
			PriceAvailable:   available,
		}
		totalHoldingsValue += currentValue
	}

	for i := range enriched {
		if totalHoldingsValue > 0 {
			enriched[i].AllocationPct = enriched[i].CurrentValue / totalHoldingsValue * 100
		}
	}

	sort.Slice(enriched, func(i, j int) bool {
		return enriched[i].CurrentValue > enriched[j].CurrentValue
	})

	return enriched, nil
}

// fetchPrices batch-fetches quotes for the distinct symbol set.
func (s *ValuationService) fetchPrices(ctx context.Context, holdings []model.Holding) map[string]float64 {
	if len(holdings) == 0 {
		return map[string]float64{}
	}
	symbols := make([]string, len(holdings))
	for i, h := range holdings {
		symbols[i] = h.Symbol
	}
	return s.prices.Prices(ctx, symbols)
}

// resolvePrice applies the configured fallback policy for a holding the
// oracle returned no quote for. The second return reports whether a live
// quote was available.
func (s *ValuationService) resolvePrice(h model.Holding, priceMap map[string]float64) (float64, bool) {
	if price, ok := priceMap[h.Symbol]; ok {
		return price, true
	}
	if s.priceFallback == config.PriceFallbackCost {
		return h.AverageBuyPrice, false
	}
	return 0, false
}
