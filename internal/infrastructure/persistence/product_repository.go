package persistence

import (
	"context"
	"errors"

	"github.com/ecomdash/backend/internal/domain/catalog"
	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productUpsertColumns are the columns replaced when a sync page or webhook
// re-delivers a product the mirror already holds.
var productUpsertColumns = []string{
	"legacy_id",
	"title",
	"handle",
	"product_type",
	"vendor",
	"status",
	"total_inventory",
	"inventory_tracked",
	"price_min",
	"price_max",
	"featured_image_url",
	"upstream_updated_at",
	"synced_at",
	"updated_at",
	"version",
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := dbConn(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByUpstreamID finds a product by its upstream identifier within a tenant
func (r *GormProductRepository) FindByUpstreamID(ctx context.Context, tenantID uuid.UUID, upstreamID string) (*catalog.Product, error) {
	var product catalog.Product
	if err := dbConn(ctx, r.db).
		Where("tenant_id = ? AND upstream_id = ?", tenantID, upstreamID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ListByTenant finds all products for a tenant matching the filter
func (r *GormProductRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilter(
		dbConn(ctx, r.db).Model(&catalog.Product{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// UpsertBatch inserts or replaces mirrored products keyed by
// (tenant_id, upstream_id). Existing rows keep their primary key and
// created_at so insight subjects stay stable across syncs.
func (r *GormProductRepository) UpsertBatch(ctx context.Context, products []*catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	return dbConn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "upstream_id"}},
			DoUpdates: clause.AssignmentColumns(productUpsertColumns),
		}).
		CreateInBatches(products, 100).Error
}

// DeleteByUpstreamID removes a product deleted upstream
func (r *GormProductRepository) DeleteByUpstreamID(ctx context.Context, tenantID uuid.UUID, upstreamID string) error {
	result := dbConn(ctx, r.db).
		Delete(&catalog.Product{}, "tenant_id = ? AND upstream_id = ?", tenantID, upstreamID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByTenant removes all mirrored products of a tenant
func (r *GormProductRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	result := dbConn(ctx, r.db).Delete(&catalog.Product{}, "tenant_id = ?", tenantID)
	return result.RowsAffected, result.Error
}

// CountByTenant counts mirrored products for a tenant
func (r *GormProductRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := dbConn(ctx, r.db).
		Model(&catalog.Product{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// LowStock finds active, inventory-tracked products at or below the
// threshold, lowest inventory first. Untracked products are excluded
// because their counts are meaningless.
func (r *GormProductRepository) LowStock(ctx context.Context, tenantID uuid.UUID, max int64) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := dbConn(ctx, r.db).
		Where("tenant_id = ?", tenantID).
		Where("status = ?", catalog.ProductStatusActive).
		Where("inventory_tracked = ?", true).
		Where("total_inventory > 0 AND total_inventory <= ?", max).
		Order("total_inventory ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// applyFilter applies filter options to the query
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR handle ILIKE ? OR vendor ILIKE ?", searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_type":
			query = query.Where("product_type = ?", value)
		case "vendor":
			query = query.Where("vendor = ?", value)
		case "inventory_max":
			query = query.Where("inventory_tracked = ? AND total_inventory <= ?", true, value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, ProductSortFields, "title")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("title ASC")
	}

	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
