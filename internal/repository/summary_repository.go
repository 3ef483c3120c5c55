package repository

import (
	"context"
	"time"

	"golang-stock-sentiment/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SummaryRepository defines the interface for interacting with daily summaries.
type SummaryRepository interface {
	// CreateIgnoreConflict inserts a summary, silently skipping when a
	// summary with the same ID already exists. Returns true when a row
	// was inserted.
	CreateIgnoreConflict(ctx context.Context, summary *entity.DailySummary) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
	FindAll(ctx context.Context) ([]entity.DailySummary, error)
	FindUnchecked(ctx context.Context) ([]entity.DailySummary, error)
	FindByCheckDay(ctx context.Context, day time.Time) ([]entity.DailySummary, error)
	Update(ctx context.Context, summary *entity.DailySummary) error
	// WithTx returns a repository bound to the given transaction handle.
	WithTx(tx *gorm.DB) SummaryRepository
}

// NewSummaryRepository creates a new instance of SummaryRepository.
func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{db: db}
}

type summaryRepository struct {
	db *gorm.DB
}

func (r *summaryRepository) WithTx(tx *gorm.DB) SummaryRepository {
	return &summaryRepository{db: tx}
}

func (r *summaryRepository) CreateIgnoreConflict(ctx context.Context, summary *entity.DailySummary) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(summary)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *summaryRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.DailySummary{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *summaryRepository) FindAll(ctx context.Context) ([]entity.DailySummary, error) {
	var summaries []entity.DailySummary
	err := r.db.WithContext(ctx).Order("check_day asc, stock asc").Find(&summaries).Error
	return summaries, err
}

func (r *summaryRepository) FindUnchecked(ctx context.Context) ([]entity.DailySummary, error) {
	var summaries []entity.DailySummary
	err := r.db.WithContext(ctx).Where("change = ?", entity.OutcomeUnchecked).Find(&summaries).Error
	return summaries, err
}

func (r *summaryRepository) FindByCheckDay(ctx context.Context, day time.Time) ([]entity.DailySummary, error) {
	var summaries []entity.DailySummary
	err := r.db.WithContext(ctx).Where("DATE(check_day) = DATE(?)", day).Find(&summaries).Error
	return summaries, err
}

func (r *summaryRepository) Update(ctx context.Context, summary *entity.DailySummary) error {
	return r.db.WithContext(ctx).Save(summary).Error
}
