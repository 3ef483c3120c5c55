package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxManager runs a function inside a single database transaction. Services
// use it to give each top-level operation one atomic scope.
type TxManager interface {
	Do(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// NewTxManager creates a TxManager backed by the given database handle.
func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

type txManager struct {
	db *gorm.DB
}

func (m *txManager) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}
