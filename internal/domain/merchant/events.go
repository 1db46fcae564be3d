package merchant

import (
	"github.com/ecomdash/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeShop = "Shop"

// Event type constants
const (
	EventTypeShopInstalled     = "ShopInstalled"
	EventTypeShopUninstalled   = "ShopUninstalled"
	EventTypeShopDataRedacted  = "ShopDataRedacted"
	EventTypeShopSyncCompleted = "ShopSyncCompleted"
)

// ShopInstalledEvent is published when a new shop connects the app
type ShopInstalledEvent struct {
	shared.BaseDomainEvent
	Domain string `json:"domain"`
	Scopes string `json:"scopes"`
}

// NewShopInstalledEvent creates a new ShopInstalledEvent
func NewShopInstalledEvent(shop *Shop) *ShopInstalledEvent {
	return &ShopInstalledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShopInstalled, AggregateTypeShop, shop.ID, shop.ID),
		Domain:          shop.Domain,
		Scopes:          shop.Scopes,
	}
}

// ShopUninstalledEvent is published when a shop removes the app. Subscribers
// must purge the shop's mirrored data within the compliance window.
type ShopUninstalledEvent struct {
	shared.BaseDomainEvent
	Domain string `json:"domain"`
}

// NewShopUninstalledEvent creates a new ShopUninstalledEvent
func NewShopUninstalledEvent(shop *Shop) *ShopUninstalledEvent {
	return &ShopUninstalledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShopUninstalled, AggregateTypeShop, shop.ID, shop.ID),
		Domain:          shop.Domain,
	}
}

// ShopDataRedactedEvent is published when the platform demands final erasure
// of a shop's data. Subscribers must delete every row keyed to the tenant,
// including the shop row itself; the erasure is irreversible.
type ShopDataRedactedEvent struct {
	shared.BaseDomainEvent
	Domain string `json:"domain"`
}

// NewShopDataRedactedEvent creates a new ShopDataRedactedEvent
func NewShopDataRedactedEvent(shop *Shop) *ShopDataRedactedEvent {
	return &ShopDataRedactedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShopDataRedacted, AggregateTypeShop, shop.ID, shop.ID),
		Domain:          shop.Domain,
	}
}

// ShopSyncCompletedEvent is published when a resource sync run finishes.
// It drives downstream insight regeneration.
type ShopSyncCompletedEvent struct {
	shared.BaseDomainEvent
	Domain   string       `json:"domain"`
	Resource SyncResource `json:"resource"`
}

// NewShopSyncCompletedEvent creates a new ShopSyncCompletedEvent
func NewShopSyncCompletedEvent(shop *Shop, resource SyncResource) *ShopSyncCompletedEvent {
	return &ShopSyncCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShopSyncCompleted, AggregateTypeShop, shop.ID, shop.ID),
		Domain:          shop.Domain,
		Resource:        resource,
	}
}
