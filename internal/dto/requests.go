package dto

// NewsRequest is the payload for triggering ingestion or a full analysis
// run. An empty stock list falls back to the configured default stocks.
type NewsRequest struct {
	Stocks []string `json:"stocks"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
