package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/ecomdash/backend/internal/domain/merchant"
	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// syncColumns maps a sync resource to its embedded column prefix.
// Resources come from a closed enum, never from request input.
var syncColumns = map[merchant.SyncResource]string{
	merchant.SyncResourceProducts: "products",
	merchant.SyncResourceOrders:   "orders",
}

// GormShopRepository implements ShopRepository using GORM
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// FindByID finds a shop by its ID
func (r *GormShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*merchant.Shop, error) {
	var shop merchant.Shop
	if err := dbConn(ctx, r.db).First(&shop, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shop, nil
}

// FindByDomain finds a shop by its normalized domain
func (r *GormShopRepository) FindByDomain(ctx context.Context, domain string) (*merchant.Shop, error) {
	var shop merchant.Shop
	if err := dbConn(ctx, r.db).
		Where("domain = ?", merchant.NormalizeDomain(domain)).
		First(&shop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shop, nil
}

// FindAll finds all shops matching the filter
func (r *GormShopRepository) FindAll(ctx context.Context, filter shared.Filter) ([]merchant.Shop, error) {
	var shops []merchant.Shop
	query := r.applyFilter(dbConn(ctx, r.db).Model(&merchant.Shop{}), filter)

	if err := query.Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// FindByStatus finds shops by status
func (r *GormShopRepository) FindByStatus(ctx context.Context, status merchant.ShopStatus) ([]merchant.Shop, error) {
	var shops []merchant.Shop
	if err := dbConn(ctx, r.db).
		Where("status = ?", status).
		Order("domain ASC").
		Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// FindActive finds all active shops
func (r *GormShopRepository) FindActive(ctx context.Context) ([]merchant.Shop, error) {
	return r.FindByStatus(ctx, merchant.ShopStatusActive)
}

// FindSyncable finds active shops whose resource is not currently syncing,
// least recently synced first. Shops never synced sort before all others.
func (r *GormShopRepository) FindSyncable(ctx context.Context, resource merchant.SyncResource, limit int) ([]merchant.Shop, error) {
	prefix, ok := syncColumns[resource]
	if !ok {
		return nil, shared.NewDomainError("INVALID_RESOURCE", "Unknown sync resource")
	}
	if limit <= 0 {
		limit = 50
	}

	var shops []merchant.Shop
	if err := dbConn(ctx, r.db).
		Where("status = ?", merchant.ShopStatusActive).
		Where(prefix+"_status <> ?", merchant.SyncStatusSyncing).
		Order(prefix + "_synced_at ASC NULLS FIRST").
		Limit(limit).
		Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// Save creates or updates a shop
func (r *GormShopRepository) Save(ctx context.Context, shop *merchant.Shop) error {
	return dbConn(ctx, r.db).Save(shop).Error
}

// UpdateSyncState persists only the sync-state columns of one resource.
// Cursor checkpoints during a long pull must not clobber concurrent
// changes to the rest of the shop row.
func (r *GormShopRepository) UpdateSyncState(ctx context.Context, shopID uuid.UUID, resource merchant.SyncResource, state merchant.SyncState) error {
	prefix, ok := syncColumns[resource]
	if !ok {
		return shared.NewDomainError("INVALID_RESOURCE", "Unknown sync resource")
	}

	updates := map[string]any{
		prefix + "_cursor":        state.Cursor,
		prefix + "_window_start":  state.WindowStart,
		prefix + "_status":        state.Status,
		prefix + "_started_at":    state.StartedAt,
		prefix + "_synced_at":     state.SyncedAt,
		prefix + "_error_message": state.ErrorMessage,
		"updated_at":              time.Now().UTC(),
	}

	result := dbConn(ctx, r.db).
		Model(&merchant.Shop{}).
		Where("id = ?", shopID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a shop
func (r *GormShopRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbConn(ctx, r.db).Delete(&merchant.Shop{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts all shops
func (r *GormShopRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := dbConn(ctx, r.db).Model(&merchant.Shop{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts shops by status
func (r *GormShopRepository) CountByStatus(ctx context.Context, status merchant.ShopStatus) (int64, error) {
	var count int64
	if err := dbConn(ctx, r.db).
		Model(&merchant.Shop{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByDomain checks if a shop with the given domain exists
func (r *GormShopRepository) ExistsByDomain(ctx context.Context, domain string) (bool, error) {
	var count int64
	if err := dbConn(ctx, r.db).
		Model(&merchant.Shop{}).
		Where("domain = ?", merchant.NormalizeDomain(domain)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormShopRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("domain ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, ShopSortFields, "domain")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("domain ASC")
	}

	return query
}

// Ensure GormShopRepository implements ShopRepository
var _ merchant.ShopRepository = (*GormShopRepository)(nil)
