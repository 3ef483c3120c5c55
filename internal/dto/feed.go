package dto

// FeedEntry is a single entry pulled from a stock's news feed. Published is
// kept as the raw feed string so the ingestion layer owns timestamp parsing
// and can skip individually malformed entries.
type FeedEntry struct {
	GUID      string `json:"guid"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Published string `json:"published"`
}
