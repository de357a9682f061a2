package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/HaitPets/Petconnect/internal/models/db_models"
)

type WebhookEventRepository interface {
	// MarkProcessed records the provider event id before handling. Returns false
	// when the id was already stored, collapsing provider redeliveries.
	MarkProcessed(ctx context.Context, event *db_models.WebhookEvent) (bool, error)
	// Unmark releases a recorded event id so the provider's redelivery of a
	// failed event is processed instead of collapsed.
	Unmark(ctx context.Context, eventID string) error
}

type webhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{
		db: db,
	}
}

func (w *webhookEventRepository) MarkProcessed(ctx context.Context, event *db_models.WebhookEvent) (bool, error) {
	err := w.db.WithContext(ctx).Create(event).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (w *webhookEventRepository) Unmark(ctx context.Context, eventID string) error {
	// Hard delete; a soft-deleted row would still hold the unique event id.
	return w.db.WithContext(ctx).Unscoped().
		Where("event_id = ?", eventID).
		Delete(&db_models.WebhookEvent{}).Error
}
