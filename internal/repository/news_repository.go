package repository

import (
	"context"

	"golang-stock-sentiment/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewsRepository defines the interface for interacting with stored news items.
type NewsRepository interface {
	// CreateIgnoreConflict inserts a news item, silently skipping items
	// whose GUID already exists. Returns true when a row was inserted.
	CreateIgnoreConflict(ctx context.Context, news *entity.News) (bool, error)
	ExistsByGUID(ctx context.Context, guid string) (bool, error)
	FindAll(ctx context.Context) ([]entity.News, error)
	FindByAlignmentKey(ctx context.Context, key string) ([]entity.News, error)
	// WithTx returns a repository bound to the given transaction handle.
	WithTx(tx *gorm.DB) NewsRepository
}

// NewNewsRepository creates a new instance of NewsRepository.
func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

type newsRepository struct {
	db *gorm.DB
}

func (r *newsRepository) WithTx(tx *gorm.DB) NewsRepository {
	return &newsRepository{db: tx}
}

func (r *newsRepository) CreateIgnoreConflict(ctx context.Context, news *entity.News) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guid"}},
		DoNothing: true,
	}).Create(news)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *newsRepository) ExistsByGUID(ctx context.Context, guid string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.News{}).Where("guid = ?", guid).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *newsRepository) FindAll(ctx context.Context) ([]entity.News, error) {
	var news []entity.News
	err := r.db.WithContext(ctx).Order("published asc").Find(&news).Error
	return news, err
}

func (r *newsRepository) FindByAlignmentKey(ctx context.Context, key string) ([]entity.News, error) {
	var news []entity.News
	err := r.db.WithContext(ctx).Where("alignment_key = ?", key).Find(&news).Error
	return news, err
}
