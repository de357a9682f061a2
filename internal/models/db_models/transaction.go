package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TransactionStatus string

const (
	TxnStatusPending TransactionStatus = "pending"
	TxnStatusPaid    TransactionStatus = "paid"
	TxnStatusFailed  TransactionStatus = "failed"
)

// Transaction records a completed one-time marketplace payment.
type Transaction struct {
	BaseModel
	AccountID   uuid.UUID `gorm:"index"`
	AmountMinor int64     // e.g., 1999 = $19.99
	Currency    string    `gorm:"size:3"`
	Status      TransactionStatus
	Description string

	Provider      string `gorm:"index"`
	ProviderTxnID string `gorm:"uniqueIndex"` // payment intent id; idempotency across webhooks

	PaidAt *int64

	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	Account Account `gorm:"foreignKey:AccountID"`
}
