package db_models

import "gorm.io/datatypes"

// WebhookEvent stores every processed provider event. The unique event id
// collapses provider redeliveries before any handler runs.
type WebhookEvent struct {
	BaseModel
	EventID     string         `gorm:"uniqueIndex"`
	Type        string         `gorm:"index"`
	Payload     datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	ProcessedAt int64
}
