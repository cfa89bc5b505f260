package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papertrade/paper-trading-backend/internal/model"
	"github.com/papertrade/paper-trading-backend/internal/repository"
)

// DefaultInitialCapital is the starting cash when a create request does not
// specify one.
const DefaultInitialCapital = 100000

// PortfolioService handles portfolio lifecycle: creation and soft deletion.
// Valuation lives in ValuationService, order flow in ExecutionService.
type PortfolioService struct {
	portfolioRepo *repository.PortfolioRepository
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(db *sql.DB) *PortfolioService {
	return &PortfolioService{portfolioRepo: repository.NewPortfolioRepository(db)}
}

// CreatePortfolio creates the user's active portfolio, fully cash-funded
// with the initial capital. A zero capital applies the default. Returns
// apperrors.ErrActivePortfolioExists if the user already has an active one.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, userID, name string, initialCapital float64) (model.Portfolio, error) {
	if initialCapital == 0 {
		initialCapital = DefaultInitialCapital
	}

	now := time.Now().UTC()
	portfolio := model.Portfolio{
		ID:             uuid.New().String(),
		UserID:         userID,
		Name:           strings.TrimSpace(name),
		InitialCapital: initialCapital,
		CashBalance:    initialCapital,
		IsActive:       true,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.portfolioRepo.Insert(portfolio); err != nil {
		return model.Portfolio{}, err
	}

	return portfolio, nil
}

// DeletePortfolio soft-deletes the user's active portfolio by flipping
// is_active. Holdings and trade events stay behind, queryable for history
// but excluded from every active-portfolio path.
func (s *PortfolioService) DeletePortfolio(ctx context.Context, userID string) error {
	portfolio, err := s.portfolioRepo.GetActiveByUserID(userID)
	if err != nil {
		return err
	}
	return s.portfolioRepo.Deactivate(portfolio.ID, portfolio.Version)
}
