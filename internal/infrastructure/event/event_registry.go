package event

import (
	"github.com/ecomdash/backend/internal/domain/merchant"
)

// RegisterAllEvents registers all domain event types with the serializer.
// The OutboxProcessor needs this to deserialize events from the outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(merchant.EventTypeShopInstalled, &merchant.ShopInstalledEvent{})
	serializer.Register(merchant.EventTypeShopUninstalled, &merchant.ShopUninstalledEvent{})
	serializer.Register(merchant.EventTypeShopDataRedacted, &merchant.ShopDataRedactedEvent{})
	serializer.Register(merchant.EventTypeShopSyncCompleted, &merchant.ShopSyncCompletedEvent{})
}
