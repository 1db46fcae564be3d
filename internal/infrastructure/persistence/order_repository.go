package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/ecomdash/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderUpsertColumns are the columns replaced when a sync page or webhook
// re-delivers an order the mirror already holds.
var orderUpsertColumns = []string{
	"number",
	"name",
	"financial_status",
	"fulfillment_status",
	"currency",
	"subtotal",
	"tax",
	"discount",
	"total_amount",
	"customer_id",
	"customer_email",
	"line_items",
	"discount_codes",
	"processed_at",
	"synced_at",
	"updated_at",
	"version",
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := dbConn(ctx, r.db).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByUpstreamID finds an order by its upstream identifier within a tenant
func (r *GormOrderRepository) FindByUpstreamID(ctx context.Context, tenantID uuid.UUID, upstreamID string) (*trade.Order, error) {
	var order trade.Order
	if err := dbConn(ctx, r.db).
		Where("tenant_id = ? AND upstream_id = ?", tenantID, upstreamID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListByTenant finds all orders for a tenant matching the filter
func (r *GormOrderRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.Order, error) {
	var orders []trade.Order
	query := r.applyFilter(
		dbConn(ctx, r.db).Model(&trade.Order{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListSince returns orders processed at or after the given instant,
// oldest first. Rows without a processed_at never enter analysis windows.
func (r *GormOrderRepository) ListSince(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]trade.Order, error) {
	var orders []trade.Order
	if err := dbConn(ctx, r.db).
		Where("tenant_id = ?", tenantID).
		Where("processed_at >= ?", since).
		Order("processed_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpsertBatch inserts or replaces mirrored orders keyed by
// (tenant_id, upstream_id)
func (r *GormOrderRepository) UpsertBatch(ctx context.Context, orders []*trade.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return dbConn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "upstream_id"}},
			DoUpdates: clause.AssignmentColumns(orderUpsertColumns),
		}).
		CreateInBatches(orders, 100).Error
}

// DeleteByTenant removes all mirrored orders of a tenant
func (r *GormOrderRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	result := dbConn(ctx, r.db).Delete(&trade.Order{}, "tenant_id = ?", tenantID)
	return result.RowsAffected, result.Error
}

// CountByTenant counts mirrored orders for a tenant
func (r *GormOrderRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := dbConn(ctx, r.db).
		Model(&trade.Order{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SalesTotals aggregates order count and revenue since the given instant
func (r *GormOrderRepository) SalesTotals(ctx context.Context, tenantID uuid.UUID, since time.Time) (trade.SalesTotals, error) {
	var row struct {
		OrderCount int64
		Revenue    decimal.Decimal
	}
	if err := dbConn(ctx, r.db).
		Model(&trade.Order{}).
		Select("COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS revenue").
		Where("tenant_id = ?", tenantID).
		Where("processed_at >= ?", since).
		Scan(&row).Error; err != nil {
		return trade.SalesTotals{}, err
	}
	return trade.SalesTotals{OrderCount: row.OrderCount, Revenue: row.Revenue}, nil
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR customer_email ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "financial_status":
			query = query.Where("financial_status = ?", value)
		case "fulfillment_status":
			query = query.Where("fulfillment_status = ?", value)
		case "processed_after":
			query = query.Where("processed_at >= ?", value)
		case "processed_before":
			query = query.Where("processed_at < ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, OrderSortFields, "processed_at")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("processed_at DESC NULLS LAST")
	}

	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
