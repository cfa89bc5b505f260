package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/papertrade/paper-trading-backend/internal/api/request"
	"github.com/papertrade/paper-trading-backend/internal/api/response"
	"github.com/papertrade/paper-trading-backend/internal/model"
	"github.com/papertrade/paper-trading-backend/internal/service"
	"github.com/papertrade/paper-trading-backend/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
	valuationService *service.ValuationService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService, valuationService *service.ValuationService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		valuationService: valuationService,
	}
}

// Create handles POST /api/portfolio.
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req request.CreatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePortfolio(req); err != nil {
		respondServiceError(w, err)
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(r.Context(), uid, req.Name, req.InitialCapital)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"message":   "Portfolio created successfully",
		"portfolio": portfolio,
	})
}

// summaryResponse is the valuation summary with presentation rounding applied.
type summaryResponse struct {
	TotalValue     float64 `json:"total_value"`
	InvestedAmount float64 `json:"invested_amount"`
	HoldingsValue  float64 `json:"holdings_value"`
	CashBalance    float64 `json:"cash_balance"`
	UnrealizedPnL  float64 `json:"unrealized_pnl"`
	RealizedPnL    float64 `json:"realized_pnl"`
	TotalPnL       float64 `json:"total_pnl"`
	TotalReturnPct float64 `json:"total_return_pct"`
}

func newSummaryResponse(s model.PortfolioSummary) summaryResponse {
	return summaryResponse{
		TotalValue:     round2(s.TotalValue),
		InvestedAmount: round2(s.InvestedAmount),
		HoldingsValue:  round2(s.HoldingsValue),
		CashBalance:    round2(s.CashBalance),
		UnrealizedPnL:  round2(s.UnrealizedPnL),
		RealizedPnL:    round2(s.RealizedPnL),
		TotalPnL:       round2(s.TotalPnL),
		TotalReturnPct: round2(s.TotalReturnPct),
	}
}

// Get handles GET /api/portfolio: the active portfolio with its valuation snapshot.
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	snapshot, err := h.valuationService.GetPortfolioSnapshot(r.Context(), uid)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"portfolio": map[string]interface{}{
			"id":              snapshot.Portfolio.ID,
			"name":            snapshot.Portfolio.Name,
			"initial_capital": snapshot.Portfolio.InitialCapital,
			"cash_balance":    round2(snapshot.Portfolio.CashBalance),
			"is_active":       snapshot.Portfolio.IsActive,
			"created_at":      snapshot.Portfolio.CreatedAt,
			"summary":         newSummaryResponse(snapshot.Summary),
		},
	})
}

// enrichedHoldingResponse is a holding enriched for display, rounded.
type enrichedHoldingResponse struct {
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

// Holdings handles GET /api/portfolio/holdings.
func (h *PortfolioHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	holdings, err := h.valuationService.GetHoldings(r.Context(), uid)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := make([]enrichedHoldingResponse, len(holdings))
	for i, holding := range holdings {
		resp[i] = enrichedHoldingResponse{
			Symbol:           holding.Symbol,
			Quantity:         holding.Quantity,
			AverageBuyPrice:  round2(holding.AverageBuyPrice),
			TotalCost:        round2(holding.TotalCost),
			CurrentPrice:     round2(holding.CurrentPrice),
			CurrentValue:     round2(holding.CurrentValue),
			UnrealizedPnL:    round2(holding.UnrealizedPnL),
			UnrealizedPnLPct: round2(holding.UnrealizedPnLPct),
			AllocationPct:    round2(holding.AllocationPct),
			PriceAvailable:   holding.PriceAvailable,
		}
	}

	response.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":              true,
		"holdings":             resp,
		"total_holdings_count": len(resp),
	})
}

// Delete handles DELETE /api/portfolio (soft delete).
func (h *PortfolioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.portfolioService.DeletePortfolio(r.Context(), uid); err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Portfolio deleted successfully",
	})
}
