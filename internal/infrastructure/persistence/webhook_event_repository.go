package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/ecomdash/backend/internal/domain/integration"
	"github.com/ecomdash/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWebhookEventRepository implements WebhookEventRepository using GORM
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewGormWebhookEventRepository creates a new GormWebhookEventRepository
func NewGormWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// Save inserts a ledger entry. The (tenant_id, fingerprint) unique index
// carries the dedup guarantee, so a conflicting insert is reported as a
// duplicate instead of being retried or inspected via driver errors.
func (r *GormWebhookEventRepository) Save(ctx context.Context, event *integration.WebhookEvent) error {
	model := models.WebhookEventModelFromDomain(event)

	result := dbConn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "fingerprint"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrWebhookDuplicate
	}
	return nil
}

// ExistsByFingerprint reports whether a delivery was already ledgered
func (r *GormWebhookEventRepository) ExistsByFingerprint(ctx context.Context, tenantID uuid.UUID, fingerprint string) (bool, error) {
	var count int64
	if err := dbConn(ctx, r.db).
		Model(&models.WebhookEventModel{}).
		Where("tenant_id = ? AND fingerprint = ?", tenantID, fingerprint).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByFingerprint loads a ledger entry
func (r *GormWebhookEventRepository) FindByFingerprint(ctx context.Context, tenantID uuid.UUID, fingerprint string) (*integration.WebhookEvent, error) {
	var model models.WebhookEventModel
	if err := dbConn(ctx, r.db).
		Where("tenant_id = ? AND fingerprint = ?", tenantID, fingerprint).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrWebhookEventNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByTenant lists recent ledger entries of a tenant, newest first
func (r *GormWebhookEventRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]integration.WebhookEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []models.WebhookEventModel
	if err := dbConn(ctx, r.db).
		Where("tenant_id = ?", tenantID).
		Order("received_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	events := make([]integration.WebhookEvent, len(rows))
	for i := range rows {
		events[i] = *rows[i].ToDomain()
	}
	return events, nil
}

// DeleteByTenant removes all ledger entries of a tenant
func (r *GormWebhookEventRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	result := dbConn(ctx, r.db).Delete(&models.WebhookEventModel{}, "tenant_id = ?", tenantID)
	return result.RowsAffected, result.Error
}

// DeleteOlderThan prunes ledger entries received before the cutoff.
// The ledger only needs to cover the platform's redelivery horizon.
func (r *GormWebhookEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := dbConn(ctx, r.db).Delete(&models.WebhookEventModel{}, "received_at < ?", cutoff)
	return result.RowsAffected, result.Error
}

// Ensure GormWebhookEventRepository implements WebhookEventRepository
var _ integration.WebhookEventRepository = (*GormWebhookEventRepository)(nil)
