package validation

import (
	"strings"

	"github.com/papertrade/paper-trading-backend/internal/api/request"
)

// ValidateCreatePortfolio checks the portfolio creation request.
// A zero initial capital is allowed here; the service substitutes the default.
func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errors["name"] = "name is required"
	} else if len(name) < 3 {
		errors["name"] = "name must be at least 3 characters"
	} else if len(name) > 50 {
		errors["name"] = "name must be 50 characters or less"
	}

	if req.InitialCapital != 0 && req.InitialCapital < 1000 {
		errors["initial_capital"] = "minimum initial capital is $1,000"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
