package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HaitPets/Petconnect/internal/models/db_models"
)

type SubscriptionRepository interface {
	FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*db_models.Subscription, error)
	FindLatestByAccount(ctx context.Context, accountID uuid.UUID) (*db_models.Subscription, error)
	// UpsertWithAccountTier writes the subscription projection and the account's
	// denormalized tier in one transaction, subscription first so a partial
	// failure heals on the next event for the same subscription.
	UpsertWithAccountTier(ctx context.Context, sub *db_models.Subscription) error
	// MarkPastDue only flips the provider-status mirror; the tier downgrade is
	// reserved for the explicit deletion event.
	MarkPastDue(ctx context.Context, stripeSubscriptionID string) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{
		db: db,
	}
}

func (s *subscriptionRepository) FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := s.db.WithContext(ctx).First(&sub, "stripe_subscription_id = ?", stripeSubscriptionID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &sub, nil
}

func (s *subscriptionRepository) FindLatestByAccount(ctx context.Context, accountID uuid.UUID) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("updated_at DESC").
		First(&sub).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &sub, nil
}

func (s *subscriptionRepository) UpsertWithAccountTier(ctx context.Context, sub *db_models.Subscription) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing db_models.Subscription
		err := tx.Where("stripe_subscription_id = ?", sub.StripeSubscriptionID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(sub).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			updates := map[string]interface{}{
				"tier":                 sub.Tier,
				"status":               sub.Status,
				"current_period_start": sub.CurrentPeriodStart,
				"current_period_end":   sub.CurrentPeriodEnd,
				"cancel_at_period_end": sub.CancelAtPeriodEnd,
				"last_event_at":        sub.LastEventAt,
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
		}

		accountUpdates := map[string]interface{}{
			"subscription_tier": sub.Tier,
		}
		if sub.ProviderCustomerID != "" {
			accountUpdates["stripe_customer_id"] = sub.ProviderCustomerID
		}
		return tx.Model(&db_models.Account{}).
			Where("id = ?", sub.AccountID).
			Updates(accountUpdates).Error
	})
}

func (s *subscriptionRepository) MarkPastDue(ctx context.Context, stripeSubscriptionID string) error {
	return s.db.WithContext(ctx).Model(&db_models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Update("status", string(db_models.SubStatusPastDue)).Error
}
