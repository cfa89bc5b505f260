package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/papertrade/paper-trading-backend/internal/api/request"
	"github.com/papertrade/paper-trading-backend/internal/api/response"
	"github.com/papertrade/paper-trading-backend/internal/service"
	"github.com/papertrade/paper-trading-backend/internal/validation"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	executionService *service.ExecutionService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(executionService *service.ExecutionService) *OrderHandler {
	return &OrderHandler{executionService: executionService}
}

// Place handles POST /api/orders: executes a market order against the
// user's active portfolio at the current oracle price.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req request.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidatePlaceOrder(req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := h.executionService.ExecuteMarketOrder(r.Context(), uid, req.Symbol, req.Side, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":          true,
		"message":          fmt.Sprintf("Market %s order executed successfully", strings.ToLower(result.Order.Side)),
		"order":            result.Order,
		"transaction":      result.Transaction,
		"new_cash_balance": round2(result.NewCashBalance),
	})
}

// List handles GET /api/orders: the 50 most recent orders, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	orders, err := h.executionService.GetOrders(r.Context(), uid)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  orders,
	})
}
