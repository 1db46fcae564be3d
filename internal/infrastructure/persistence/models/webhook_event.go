package models

import (
	"time"

	"github.com/ecomdash/backend/internal/domain/integration"
	"github.com/google/uuid"
)

// WebhookEventModel is the persistence model for the webhook dedup ledger.
// One row per accepted delivery; the fingerprint column carries the
// tenant-scoped uniqueness that makes redeliveries no-ops.
type WebhookEventModel struct {
	ID              uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	TenantID        uuid.UUID                 `gorm:"type:uuid;not null;index;uniqueIndex:idx_webhook_events_tenant_fingerprint,priority:1"`
	Fingerprint     string                    `gorm:"type:varchar(64);not null;uniqueIndex:idx_webhook_events_tenant_fingerprint,priority:2"`
	Topic           integration.WebhookTopic  `gorm:"type:varchar(100);not null;index"`
	UpstreamEventID string                    `gorm:"type:varchar(128)"`
	Status          integration.WebhookStatus `gorm:"type:varchar(20);not null;default:'processed'"`
	ReceivedAt      time.Time                 `gorm:"not null;index"`
	ProcessedAt     *time.Time
}

// TableName returns the table name for GORM
func (WebhookEventModel) TableName() string {
	return "webhook_events"
}

// ToDomain converts the persistence model to a domain WebhookEvent
func (m *WebhookEventModel) ToDomain() *integration.WebhookEvent {
	return &integration.WebhookEvent{
		ID:              m.ID,
		TenantID:        m.TenantID,
		Fingerprint:     m.Fingerprint,
		Topic:           m.Topic,
		UpstreamEventID: m.UpstreamEventID,
		Status:          m.Status,
		ReceivedAt:      m.ReceivedAt,
		ProcessedAt:     m.ProcessedAt,
	}
}

// FromDomain populates the persistence model from a domain WebhookEvent
func (m *WebhookEventModel) FromDomain(e *integration.WebhookEvent) {
	m.ID = e.ID
	m.TenantID = e.TenantID
	m.Fingerprint = e.Fingerprint
	m.Topic = e.Topic
	m.UpstreamEventID = e.UpstreamEventID
	m.Status = e.Status
	m.ReceivedAt = e.ReceivedAt
	m.ProcessedAt = e.ProcessedAt
}

// WebhookEventModelFromDomain creates a new persistence model from a domain WebhookEvent
func WebhookEventModelFromDomain(e *integration.WebhookEvent) *WebhookEventModel {
	m := &WebhookEventModel{}
	m.FromDomain(e)
	return m
}
