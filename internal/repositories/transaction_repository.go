package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/HaitPets/Petconnect/internal/models/db_models"
)

type TransactionRepository interface {
	FindByProviderTxnID(ctx context.Context, providerTxnID string) (*db_models.Transaction, error)
	// UpsertByProviderTxnID makes payment webhooks safe to redeliver: one row per
	// provider payment id.
	UpsertByProviderTxnID(ctx context.Context, txn *db_models.Transaction) error
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

func (t *transactionRepository) FindByProviderTxnID(ctx context.Context, providerTxnID string) (*db_models.Transaction, error) {
	var txn db_models.Transaction
	err := t.db.WithContext(ctx).First(&txn, "provider_txn_id = ?", providerTxnID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &txn, nil
}

func (t *transactionRepository) UpsertByProviderTxnID(ctx context.Context, txn *db_models.Transaction) error {
	existing, err := t.FindByProviderTxnID(ctx, txn.ProviderTxnID)
	if err != nil {
		return err
	}
	if existing == nil {
		return t.db.WithContext(ctx).Create(txn).Error
	}

	return t.db.WithContext(ctx).Model(existing).Updates(map[string]interface{}{
		"status":       txn.Status,
		"amount_minor": txn.AmountMinor,
		"paid_at":      txn.PaidAt,
	}).Error
}
