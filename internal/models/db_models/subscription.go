package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubscriptionStatus string

const (
	SubStatusTrialing SubscriptionStatus = "trialing"
	SubStatusActive   SubscriptionStatus = "active"
	SubStatusPastDue  SubscriptionStatus = "past_due"
	SubStatusCanceled SubscriptionStatus = "canceled"
)

type Subscription struct {
	BaseModel
	AccountID uuid.UUID `gorm:"index"`

	// Idempotency key: one row per provider subscription, upserted on every event.
	StripeSubscriptionID string `gorm:"uniqueIndex"`

	Tier               SubscriptionTier
	Status             string `gorm:"index"` // provider status mirror: active/past_due/canceled/...
	CurrentPeriodStart int64
	CurrentPeriodEnd   int64
	CancelAtPeriodEnd  bool

	Provider           string `gorm:"index"` // "stripe"
	ProviderCustomerID string `gorm:"index"`

	// Stripe event `created` of the last applied event. Older events are dropped
	// so out-of-order delivery cannot overwrite newer state.
	LastEventAt int64

	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	Account Account `gorm:"foreignKey:AccountID"`
}
