package testutil

import (
	"context"
	"sync"
)

// StaticPrices is an in-memory price source for service tests. It satisfies
// the oracle surface the services depend on without any HTTP round trip.
//
// Example usage:
//
//	prices := testutil.NewStaticPrices(map[string]float64{"AAPL": 150})
//	svc := service.NewExecutionService(db, prices)
type StaticPrices struct {
	mu     sync.Mutex
	quotes map[string]float64

	// QuoteErr, when set, is returned from every Quote call. Simulates an
	// unreachable oracle on the order path.
	QuoteErr error

	// Unavailable, when true, makes Prices return an empty map. Simulates
	// a degraded oracle on the valuation path.
	Unavailable bool
}

// NewStaticPrices creates a StaticPrices serving the given quotes.
func NewStaticPrices(quotes map[string]float64) *StaticPrices {
	if quotes == nil {
		quotes = map[string]float64{}
	}
	return &StaticPrices{quotes: quotes}
}

// SetQuote updates the price of a symbol, for tests that move the market
// between orders.
func (s *StaticPrices) SetQuote(symbol string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[symbol] = price
}

// Quote returns the configured price for symbol, or an unknown-symbol error.
func (s *StaticPrices) Quote(ctx context.Context, symbol string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.QuoteErr != nil {
		return 0, s.QuoteErr
	}
	price, ok := s.quotes[symbol]
	if !ok || price <= 0 {
		return 0, &unknownSymbolError{symbol: symbol}
	}
	return price, nil
}

// Prices returns the configured quotes for the requested symbols. Unknown
// symbols are absent from the map, matching the real client's behavior.
func (s *StaticPrices) Prices(ctx context.Context, symbols []string) map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	prices := make(map[string]float64, len(symbols))
	if s.Unavailable {
		return prices
	}
	for _, symbol := range symbols {
		if price, ok := s.quotes[symbol]; ok && price > 0 {
			prices[symbol] = price
		}
	}
	return prices
}

type unknownSymbolError struct {
	symbol string
}

func (e *unknownSymbolError) Error() string {
	return "price not available for " + e.symbol
}
