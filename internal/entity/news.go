package entity

import (
	"time"
)

// News represents a single deduplicated news item for a stock. Items are
// keyed by the feed-supplied GUID and are immutable after insertion.
type News struct {
	GUID             string    `gorm:"primaryKey" json:"guid"`
	Stock            string    `gorm:"type:varchar(20);not null;index" json:"stock"`
	Title            string    `gorm:"not null" json:"title"`
	Summary          string    `json:"summary"`
	Published        time.Time `gorm:"not null" json:"published"`
	AlignmentKey     string    `gorm:"type:varchar(50);not null;index" json:"alignment_key"`
	SentimentSummary float64   `json:"sentiment_summary"`
	SentimentTitle   float64   `json:"sentiment_title"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the News model.
func (News) TableName() string {
	return "news"
}
