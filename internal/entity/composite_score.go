package entity

import (
	"time"

	"gorm.io/datatypes"
)

// CompositeScore blends a stock's same-day sentiment aggregate with a macro
// volatility indicator into a single bounded score. Recomputation for a date
// replaces all prior rows for that date.
type CompositeScore struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Stock          string         `gorm:"type:varchar(20);not null;index:idx_composite_scores_date_stock" json:"stock"`
	Date           datatypes.Date `gorm:"not null;index:idx_composite_scores_date_stock" json:"date"`
	Sentiment      float64        `json:"sentiment"`
	Vix            float64        `json:"vix"`
	CompositeScore float64        `json:"composite_score"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the CompositeScore model.
func (CompositeScore) TableName() string {
	return "composite_scores"
}
