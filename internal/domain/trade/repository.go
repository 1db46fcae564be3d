package trade

import (
	"context"
	"time"

	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesTotals aggregates order count and revenue over a window
type SalesTotals struct {
	OrderCount int64
	Revenue    decimal.Decimal
}

// AverageOrderValue returns revenue divided by order count, zero when empty
func (t SalesTotals) AverageOrderValue() decimal.Decimal {
	if t.OrderCount == 0 {
		return decimal.Zero
	}
	return t.Revenue.Div(decimal.NewFromInt(t.OrderCount))
}

// OrderRepository defines the interface for order mirror persistence
type OrderRepository interface {
	// FindByID finds an order by its local ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByUpstreamID finds an order by its upstream id within a tenant
	FindByUpstreamID(ctx context.Context, tenantID uuid.UUID, upstreamID string) (*Order, error)

	// ListByTenant lists orders of a tenant matching the filter
	ListByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Order, error)

	// ListSince returns all orders of a tenant processed at or after the
	// given instant, ordered by processed_at ascending
	ListSince(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]Order, error)

	// UpsertBatch inserts or updates mirror rows keyed by (tenant_id,
	// upstream_id). All mutable columns are replaced on conflict.
	UpsertBatch(ctx context.Context, orders []*Order) error

	// DeleteByTenant removes all mirror rows of a tenant and reports how
	// many were purged
	DeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// CountByTenant counts a tenant's mirrored orders
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// SalesTotals returns order count and summed totals since the given
	// instant
	SalesTotals(ctx context.Context, tenantID uuid.UUID, since time.Time) (SalesTotals, error)
}
