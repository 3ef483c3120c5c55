package repository

import (
	"context"
	"time"

	"golang-stock-sentiment/internal/entity"

	"gorm.io/gorm"
)

// HistoricalScoreRow is one (stock, date) aggregate of stored composite
// scores, averaged over duplicates if any exist.
type HistoricalScoreRow struct {
	Stock          string    `json:"stock"`
	Date           time.Time `json:"date"`
	Sentiment      float64   `json:"sentiment"`
	Vix            float64   `json:"vix"`
	CompositeScore float64   `json:"composite_score"`
}

// CompositeScoreRepository defines the interface for interacting with
// persisted composite scores.
type CompositeScoreRepository interface {
	// ReplaceForDate atomically replaces all composite scores stored for
	// the given date with the provided set.
	ReplaceForDate(ctx context.Context, date time.Time, scores []entity.CompositeScore) error
	FindHistorical(ctx context.Context, days int, stock string) ([]HistoricalScoreRow, error)
}

// NewCompositeScoreRepository creates a new instance of CompositeScoreRepository.
func NewCompositeScoreRepository(db *gorm.DB) CompositeScoreRepository {
	return &compositeScoreRepository{db: db}
}

type compositeScoreRepository struct {
	db *gorm.DB
}

func (r *compositeScoreRepository) ReplaceForDate(ctx context.Context, date time.Time, scores []entity.CompositeScore) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = DATE(?)", date).Delete(&entity.CompositeScore{}).Error; err != nil {
			return err
		}
		if len(scores) == 0 {
			return nil
		}
		return tx.Create(&scores).Error
	})
}

func (r *compositeScoreRepository) FindHistorical(ctx context.Context, days int, stock string) ([]HistoricalScoreRow, error) {
	var rows []HistoricalScoreRow

	query := r.db.WithContext(ctx).
		Model(&entity.CompositeScore{}).
		Select("stock, date, AVG(sentiment) AS sentiment, AVG(vix) AS vix, AVG(composite_score) AS composite_score").
		Where("date >= CURRENT_DATE - ?", days).
		Group("stock, date").
		Order("date DESC, stock ASC")

	if stock != "" {
		query = query.Where("stock = ?", stock)
	}

	err := query.Scan(&rows).Error
	return rows, err
}
