package merchant

import (
	"context"

	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ShopRepository defines the interface for shop persistence
type ShopRepository interface {
	// FindByID finds a shop by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)

	// FindByDomain finds a shop by its normalized domain
	FindByDomain(ctx context.Context, domain string) (*Shop, error)

	// FindAll finds all shops matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Shop, error)

	// FindByStatus finds shops by status, ordered by domain
	FindByStatus(ctx context.Context, status ShopStatus) ([]Shop, error)

	// FindActive finds all active shops
	FindActive(ctx context.Context) ([]Shop, error)

	// FindSyncable finds active shops whose resource sync is not currently
	// running, ordered by least recently synced first
	FindSyncable(ctx context.Context, resource SyncResource, limit int) ([]Shop, error)

	// Save creates or updates a shop
	Save(ctx context.Context, shop *Shop) error

	// UpdateSyncState persists only the sync state columns of one resource,
	// leaving credentials and status untouched
	UpdateSyncState(ctx context.Context, shopID uuid.UUID, resource SyncResource, state SyncState) error

	// Delete deletes a shop row
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts all shops
	Count(ctx context.Context) (int64, error)

	// CountByStatus counts shops by status
	CountByStatus(ctx context.Context, status ShopStatus) (int64, error)

	// ExistsByDomain checks if a shop with the given domain exists
	ExistsByDomain(ctx context.Context, domain string) (bool, error)
}
