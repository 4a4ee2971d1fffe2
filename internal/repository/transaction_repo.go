package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fitmarket/internal/models"
)

// TransactionRepository handles ledger entries.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// FindByUpstreamID returns the ledger entry for an upstream transaction id,
// or nil if none exists.
func (r *TransactionRepository) FindByUpstreamID(ctx context.Context, txnID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).Where("upstream_txn_id = ?", txnID).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}
