package repository

import (
	"fmt"

	"github.com/papertrade/paper-trading-backend/internal/model"
)

// TradeEventRepository provides data access methods for the trade_event table.
// The table is append-only: there are deliberately no update or delete
// methods, and database triggers abort any attempted modification.
type TradeEventRepository struct {
	db DBTX
}

// NewTradeEventRepository creates a new TradeEventRepository over a database
// connection or an open transaction.
func NewTradeEventRepository(db DBTX) *TradeEventRepository {
	return &TradeEventRepository{db: db}
}

const tradeEventColumns = `id, portfolio_id, symbol, side, quantity, price, total_amount, executed_at, created_at`

// Insert appends an execution event to the log.
func (s *TradeEventRepository) Insert(e model.TradeEvent) error {
	query := `
		INSERT INTO trade_event (` + tradeEventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		e.ID,
		e.PortfolioID,
		e.Symbol,
		e.Side,
		e.Quantity,
		e.Price,
		e.TotalAmount,
		FormatTime(e.ExecutedAt),
		FormatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade event: %w", err)
	}
	return nil
}

// GetByPortfolio retrieves the full event history of a portfolio in
// execution order. This is the input of the realized P&L replay, which is
// sensitive to timestamp ordering within a symbol.
func (s *TradeEventRepository) GetByPortfolio(portfolioID string) ([]model.TradeEvent, error) {
	query := `
		SELECT ` + tradeEventColumns + `
		FROM trade_event
		WHERE portfolio_id = ?
		ORDER BY executed_at ASC, created_at ASC
	`
	return s.queryEvents(query, portfolioID)
}

// GetRecent retrieves the most recent events, newest first, capped at limit.
func (s *TradeEventRepository) GetRecent(portfolioID string, limit int) ([]model.TradeEvent, error) {
	query := `
		SELECT ` + tradeEventColumns + `
		FROM trade_event
		WHERE portfolio_id = ?
		ORDER BY executed_at DESC, created_at DESC
		LIMIT ?
	`
	return s.queryEvents(query, portfolioID, limit)
}

func (s *TradeEventRepository) queryEvents(query string, args ...any) ([]model.TradeEvent, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade_event table: %w", err)
	}
	defer rows.Close()

	events := []model.TradeEvent{}

	for rows.Next() {
		var e model.TradeEvent
		var executedAt, createdAt string

		err := rows.Scan(
			&e.ID,
			&e.PortfolioID,
			&e.Symbol,
			&e.Side,
			&e.Quantity,
			&e.Price,
			&e.TotalAmount,
			&executedAt,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade_event table results: %w", err)
		}

		if e.ExecutedAt, err = ParseTime(executedAt); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = ParseTime(createdAt); err != nil {
			return nil, err
		}

		events = append(events, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade_event table: %w", err)
	}

	return events, nil
}
