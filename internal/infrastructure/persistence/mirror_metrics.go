package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecomdash/backend/internal/domain/catalog"
	"github.com/ecomdash/backend/internal/domain/insight"
	"github.com/ecomdash/backend/internal/domain/merchant"
)

// MirrorMetricsAdapter answers the point-in-time questions the periodic
// business metrics collector asks about mirrored data. Counts only, no row
// loading.
type MirrorMetricsAdapter struct {
	db          *gorm.DB
	lowStockMax int64
}

// NewMirrorMetricsAdapter creates an adapter. lowStockMax is the inventory
// threshold at or below which a tracked product counts as low stock.
func NewMirrorMetricsAdapter(db *gorm.DB, lowStockMax int64) *MirrorMetricsAdapter {
	if lowStockMax <= 0 {
		lowStockMax = 5
	}
	return &MirrorMetricsAdapter{db: db, lowStockMax: lowStockMax}
}

// LowStockCount counts active tracked products at or below the threshold
func (a *MirrorMetricsAdapter) LowStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("tenant_id = ? AND status = ? AND inventory_tracked = ? AND total_inventory <= ?",
			tenantID, catalog.ProductStatusActive, true, a.lowStockMax).
		Count(&count).Error
	return count, err
}

// OpenInsightCount counts insights currently surfaced to the merchant
func (a *MirrorMetricsAdapter) OpenInsightCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&insight.Insight{}).
		Where("tenant_id = ? AND dismissed_at IS NULL AND actioned_at IS NULL", tenantID).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Count(&count).Error
	return count, err
}

// GetActiveTenantIDs returns the IDs of all active shops
func (a *MirrorMetricsAdapter) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := a.db.WithContext(ctx).
		Model(&merchant.Shop{}).
		Where("status = ?", merchant.ShopStatusActive).
		Pluck("id", &ids).Error
	return ids, err
}
