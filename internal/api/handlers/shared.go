package handlers

import (
	"errors"
	"math"
	"net/http"

	"github.com/papertrade/paper-trading-backend/internal/api/middleware"
	"github.com/papertrade/paper-trading-backend/internal/api/response"
	"github.com/papertrade/paper-trading-backend/internal/apperrors"
	"github.com/papertrade/paper-trading-backend/internal/validation"
)

// RoundingPrecision rounds monetary outputs to 2 decimal places at the
// response boundary. Internal computation keeps full precision.
const RoundingPrecision = 100

func round2(v float64) float64 {
	return math.Round(v*RoundingPrecision) / RoundingPrecision
}

// userID extracts the authenticated user from the request context, written
// there by the auth middleware. A missing identity on an authenticated
// route means the middleware chain is misconfigured.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing user identity")
		return "", false
	}
	return id, true
}

// respondServiceError maps the service error taxonomy to HTTP statuses:
// missing portfolio 404; malformed input and business rejections 400;
// conflicts 409; oracle unavailability 503; everything else 500, surfaced
// distinctly because it may indicate a ledger needing reconciliation.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *validation.Error
	var fundsErr *apperrors.InsufficientFundsError
	var holdingsErr *apperrors.InsufficientHoldingsError

	switch {
	case errors.As(err, &validationErr):
		response.RespondError(w, http.StatusBadRequest, "validation failed", validationErr.Fields)
	case errors.Is(err, apperrors.ErrPortfolioNotFound):
		response.RespondError(w, http.StatusNotFound, "No active portfolio found", nil)
	case errors.As(err, &fundsErr):
		response.RespondError(w, http.StatusBadRequest, "Insufficient funds", map[string]float64{
			"required":  round2(fundsErr.Required),
			"available": round2(fundsErr.Available),
		})
	case errors.As(err, &holdingsErr):
		response.RespondError(w, http.StatusBadRequest, "Insufficient holdings", map[string]int64{
			"owned":     holdingsErr.Owned,
			"requested": holdingsErr.Requested,
		})
	case errors.Is(err, apperrors.ErrInvalidSide),
		errors.Is(err, apperrors.ErrInvalidQuantity),
		errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrInsufficientHoldings):
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, apperrors.ErrActivePortfolioExists):
		response.RespondError(w, http.StatusConflict,
			"You already have an active portfolio. Please deactivate it before creating a new one.", nil)
	case errors.Is(err, apperrors.ErrConcurrentModification):
		response.RespondError(w, http.StatusConflict,
			"Order conflicted with a concurrent request. No changes were made; please retry.", nil)
	case errors.Is(err, apperrors.ErrPriceUnavailable):
		response.RespondError(w, http.StatusServiceUnavailable,
			"Current price unavailable. Order rejected.", err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}
