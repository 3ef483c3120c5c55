package dto

// IngestResult reports the outcome of one ingestion run over a batch of
// stocks. Stocks are processed independently; a failure in one stock does
// not stop the others and is collected in Errors keyed by stock symbol.
type IngestResult struct {
	NewItems int               `json:"new_items"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// StockScore is one stock's composite score for a single date.
type StockScore struct {
	Stock          string  `json:"stock"`
	Date           string  `json:"date"`
	Sentiment      float64 `json:"sentiment"`
	Vix            float64 `json:"vix"`
	CompositeScore float64 `json:"composite_score"`
}

// SummaryRecord is the API projection of a DailySummary row.
type SummaryRecord struct {
	ID                  string   `json:"id"`
	Stock               string   `json:"stock"`
	NewsDate            string   `json:"news_date"`
	CheckDate           string   `json:"check_date"`
	Open                *float64 `json:"open"`
	Close               *float64 `json:"close"`
	Change              string   `json:"change"`
	SentimentSummaryAvg float64  `json:"sentiment_summary_avg"`
	SentimentSummaryMed float64  `json:"sentiment_summary_med"`
	SentimentTitleAvg   float64  `json:"sentiment_title_avg"`
	SentimentTitleMed   float64  `json:"sentiment_title_med"`
}

// AnalysisResult is the outcome of a full pipeline run.
type AnalysisResult struct {
	Ingest           *IngestResult `json:"ingest"`
	RequestsUsed     int           `json:"requests_used"`
	CompositeScores  []StockScore  `json:"composite_scores"`
	HistoricalScores []StockScore  `json:"historical_scores"`
}
