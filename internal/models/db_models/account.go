package db_models

type AccountRole string

const (
	RolePetOwner AccountRole = "pet_owner"
	RolePetLover AccountRole = "pet_lover"
	RoleBreeder  AccountRole = "breeder"
)

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "FREE"
	TierPremium SubscriptionTier = "PREMIUM"
	TierBreeder SubscriptionTier = "BREEDER"
)

type Account struct {
	BaseModel
	Name         string
	Email        string `gorm:"unique"`
	PasswordHash string
	Role         AccountRole `gorm:"index"`

	// Set exactly once via compare-and-swap; the unique index backs the
	// one-account-per-billing-customer invariant.
	StripeCustomerID *string `gorm:"uniqueIndex"`

	// Denormalized mirror of the latest processed subscription event.
	SubscriptionTier SubscriptionTier `gorm:"default:FREE"`

	Subscriptions []Subscription `gorm:"foreignKey:AccountID"`
}
