package oracle

// Ticker is one quote row from the intelligence service's tickers endpoint.
type Ticker struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}

// Quote is the response of the single-symbol quote endpoint.
type Quote struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
}
