package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/papertrade/paper-trading-backend/internal/apperrors"
	"github.com/papertrade/paper-trading-backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
// Mutating methods use compare-and-swap on the version column; callers must
// treat apperrors.ErrConcurrentModification as a lost race, not a bug.
type PortfolioRepository struct {
	db DBTX
}

// NewPortfolioRepository creates a new PortfolioRepository over a database
// connection or an open transaction.
func NewPortfolioRepository(db DBTX) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

const portfolioColumns = `id, user_id, name, initial_capital, cash_balance, is_active, version, created_at, updated_at`

// GetActiveByUserID retrieves the user's single active portfolio.
// Returns apperrors.ErrPortfolioNotFound if the user has none.
func (s *PortfolioRepository) GetActiveByUserID(userID string) (model.Portfolio, error) {
	query := `
		SELECT ` + portfolioColumns + `
		FROM portfolio
		WHERE user_id = ? AND is_active = 1
	`
	return s.scanOne(s.db.QueryRow(query, userID))
}

// GetByID retrieves a portfolio by its ID regardless of active status.
// Deactivated portfolios remain queryable for history.
func (s *PortfolioRepository) GetByID(portfolioID string) (model.Portfolio, error) {
	query := `
		SELECT ` + portfolioColumns + `
		FROM portfolio
		WHERE id = ?
	`
	return s.scanOne(s.db.QueryRow(query, portfolioID))
}

// Insert stores a new portfolio. The partial unique index on
// (user_id) WHERE is_active enforces at most one active portfolio per user;
// a violation surfaces as apperrors.ErrActivePortfolioExists.
func (s *PortfolioRepository) Insert(p model.Portfolio) error {
	query := `
		INSERT INTO portfolio (` + portfolioColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		p.ID,
		p.UserID,
		p.Name,
		p.InitialCapital,
		p.CashBalance,
		p.IsActive,
		p.Version,
		FormatTime(p.CreatedAt),
		FormatTime(p.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "unique_active_portfolio_per_user") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperrors.ErrActivePortfolioExists
		}
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// UpdateCashBalance applies a new cash balance with a version check.
// Returns apperrors.ErrConcurrentModification when another writer got there first.
func (s *PortfolioRepository) UpdateCashBalance(portfolioID string, newBalance float64, version int64) error {
	query := `
		UPDATE portfolio
		SET cash_balance = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := s.db.Exec(query, newBalance, FormatTime(time.Now()), portfolioID, version)
	if err != nil {
		return fmt.Errorf("failed to update portfolio cash balance: %w", err)
	}
	return requireRowAffected(result)
}

// Deactivate soft-deletes the portfolio by clearing is_active, with a version check.
func (s *PortfolioRepository) Deactivate(portfolioID string, version int64) error {
	query := `
		UPDATE portfolio
		SET is_active = 0, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := s.db.Exec(query, FormatTime(time.Now()), portfolioID, version)
	if err != nil {
		return fmt.Errorf("failed to deactivate portfolio: %w", err)
	}
	return requireRowAffected(result)
}

func (s *PortfolioRepository) scanOne(row *sql.Row) (model.Portfolio, error) {
	var p model.Portfolio
	var createdAt, updatedAt string

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.InitialCapital,
		&p.CashBalance,
		&p.IsActive,
		&p.Version,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio: %w", err)
	}

	if p.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.Portfolio{}, err
	}
	if p.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return model.Portfolio{}, err
	}

	return p, nil
}

// requireRowAffected maps a zero-row CAS update to ErrConcurrentModification.
func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrConcurrentModification
	}
	return nil
}
