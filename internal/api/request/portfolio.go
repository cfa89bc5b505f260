package request

// CreatePortfolioRequest is the body of POST /api/portfolio.
type CreatePortfolioRequest struct {
	Name           string  `json:"name"`
	InitialCapital float64 `json:"initial_capital"`
}
