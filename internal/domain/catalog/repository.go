package catalog

import (
	"context"

	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product mirror persistence
type ProductRepository interface {
	// FindByID finds a product by its local ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByUpstreamID finds a product by its upstream id within a tenant
	FindByUpstreamID(ctx context.Context, tenantID uuid.UUID, upstreamID string) (*Product, error)

	// ListByTenant lists products of a tenant matching the filter
	ListByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// UpsertBatch inserts or updates mirror rows keyed by (tenant_id,
	// upstream_id). All mutable columns are replaced on conflict.
	UpsertBatch(ctx context.Context, products []*Product) error

	// DeleteByUpstreamID removes one mirror row, returning shared.ErrNotFound
	// if no row matched
	DeleteByUpstreamID(ctx context.Context, tenantID uuid.UUID, upstreamID string) error

	// DeleteByTenant removes all mirror rows of a tenant and reports how
	// many were purged
	DeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// CountByTenant counts a tenant's mirrored products
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// LowStock returns active tracked products with 0 < inventory <= max,
	// ordered by inventory ascending
	LowStock(ctx context.Context, tenantID uuid.UUID, max int64) ([]Product, error)
}
