package entity

import (
	"time"
)

// Outcome values for a DailySummary. A summary starts UNCHECKED and moves to
// win or loss once the market outcome for its trading day is known.
const (
	OutcomeUnchecked = "UNCHECKED"
	OutcomeWin       = "win"
	OutcomeLoss      = "loss"
)

// DailySummary aggregates the sentiment of all news sharing one alignment
// key and records the market outcome of the trading day the news targets.
// The ID is stock + "_" + target trading day. Sentiment aggregates are
// frozen at creation time; OHLCV fields stay nil until backfilled.
type DailySummary struct {
	ID                  string    `gorm:"primaryKey" json:"id"`
	Stock               string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_summary_stock_check_day" json:"stock"`
	NewsDt              time.Time `gorm:"not null" json:"news_dt"`
	CheckDay            time.Time `gorm:"not null;uniqueIndex:idx_summary_stock_check_day" json:"check_day"`
	Open                *float64  `json:"open"`
	Close               *float64  `json:"close"`
	High                *float64  `json:"high"`
	Low                 *float64  `json:"low"`
	Volume              *float64  `json:"volume"`
	Change              string    `gorm:"type:varchar(20);not null;default:UNCHECKED" json:"change"`
	SentimentSummaryAvg float64   `json:"sentiment_summary_avg"`
	SentimentSummaryMed float64   `json:"sentiment_summary_med"`
	SentimentTitleAvg   float64   `json:"sentiment_title_avg"`
	SentimentTitleMed   float64   `json:"sentiment_title_med"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the DailySummary model.
func (DailySummary) TableName() string {
	return "summary"
}
