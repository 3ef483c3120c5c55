package dto

// DailyOHLCV holds the market outcome of one trading day for one stock.
type DailyOHLCV struct {
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume float64 `json:"volume"`
}

// MarketDataHistoryResponse is the wire format of the market data API's
// history endpoint. Daily values arrive as strings keyed by YYYY-MM-DD.
type MarketDataHistoryResponse struct {
	Name    string                          `json:"name"`
	History map[string]MarketDataDayHistory `json:"history"`
}

// MarketDataDayHistory is one day of string-encoded OHLCV values.
type MarketDataDayHistory struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Volume string `json:"volume"`
}
