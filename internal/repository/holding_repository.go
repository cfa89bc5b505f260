package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/papertrade/paper-trading-backend/internal/apperrors"
	"github.com/papertrade/paper-trading-backend/internal/model"
)

// HoldingRepository provides data access methods for the holding table.
// A holding row exists only while its quantity is positive; full liquidation
// deletes the row.
type HoldingRepository struct {
	db DBTX
}

// NewHoldingRepository creates a new HoldingRepository over a database
// connection or an open transaction.
func NewHoldingRepository(db DBTX) *HoldingRepository {
	return &HoldingRepository{db: db}
}

const holdingColumns = `id, portfolio_id, symbol, quantity, average_buy_price, total_cost, version, created_at, updated_at`

// GetBySymbol retrieves the holding for a (portfolio, symbol) pair.
// Returns apperrors.ErrHoldingNotFound when the position does not exist.
func (s *HoldingRepository) GetBySymbol(portfolioID, symbol string) (model.Holding, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holding
		WHERE portfolio_id = ? AND symbol = ?
	`
	var h model.Holding
	var createdAt, updatedAt string

	err := s.db.QueryRow(query, portfolioID, symbol).Scan(
		&h.ID,
		&h.PortfolioID,
		&h.Symbol,
		&h.Quantity,
		&h.AverageBuyPrice,
		&h.TotalCost,
		&h.Version,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to query holding: %w", err)
	}

	if h.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.Holding{}, err
	}
	if h.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return model.Holding{}, err
	}

	return h, nil
}

// GetByPortfolio retrieves all holdings of a portfolio.
// Returns an empty slice for a portfolio without positions.
func (s *HoldingRepository) GetByPortfolio(portfolioID string) ([]model.Holding, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holding
		WHERE portfolio_id = ?
		ORDER BY symbol ASC
	`
	rows, err := s.db.Query(query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}

	for rows.Next() {
		var h model.Holding
		var createdAt, updatedAt string

		err := rows.Scan(
			&h.ID,
			&h.PortfolioID,
			&h.Symbol,
			&h.Quantity,
			&h.AverageBuyPrice,
			&h.TotalCost,
			&h.Version,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}

		if h.CreatedAt, err = ParseTime(createdAt); err != nil {
			return nil, err
		}
		if h.UpdatedAt, err = ParseTime(updatedAt); err != nil {
			return nil, err
		}

		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

// Insert stores a new holding created by the first BUY of a symbol.
func (s *HoldingRepository) Insert(h model.Holding) error {
	query := `
		INSERT INTO holding (` + holdingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		h.ID,
		h.PortfolioID,
		h.Symbol,
		h.Quantity,
		h.AverageBuyPrice,
		h.TotalCost,
		h.Version,
		FormatTime(h.CreatedAt),
		FormatTime(h.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}
	return nil
}

// Update applies new position figures with a version check.
// Returns apperrors.ErrConcurrentModification when another writer got there first.
func (s *HoldingRepository) Update(h model.Holding) error {
	query := `
		UPDATE holding
		SET quantity = ?, average_buy_price = ?, total_cost = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := s.db.Exec(query,
		h.Quantity,
		h.AverageBuyPrice,
		h.TotalCost,
		FormatTime(time.Now()),
		h.ID,
		h.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	return requireRowAffected(result)
}

// Delete removes a fully liquidated holding, with a version check.
func (s *HoldingRepository) Delete(holdingID string, version int64) error {
	query := `DELETE FROM holding WHERE id = ? AND version = ?`
	result, err := s.db.Exec(query, holdingID, version)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return requireRowAffected(result)
}
