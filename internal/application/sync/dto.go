package sync

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecomdash/backend/internal/domain/merchant"
	"github.com/ecomdash/backend/internal/domain/shared"
)

// TriggerCommand requests a sync for one (shop, resource) pair
type TriggerCommand struct {
	ShopID   uuid.UUID
	Resource merchant.SyncResource
	// Full forces a pull from the beginning instead of resuming the
	// stored cursor, and lifts the trailing order window.
	Full bool
}

// Validate validates the trigger command
func (c *TriggerCommand) Validate() error {
	if c.ShopID == uuid.Nil {
		return shared.NewDomainError("INVALID_SHOP", "Shop id is required")
	}
	if !c.Resource.IsValid() {
		return shared.NewDomainError("INVALID_RESOURCE", "Resource must be products or orders")
	}
	return nil
}

// TriggerResult reports whether the trigger was accepted. The work itself is
// asynchronous; rejection means a run already holds the pair.
type TriggerResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// Job is one unit of sync work handed to the background queue
type Job struct {
	ShopID   uuid.UUID
	Resource merchant.SyncResource
	Full     bool
}

// JobQueue accepts sync jobs for asynchronous execution
type JobQueue interface {
	// Submit enqueues a job, failing when the queue cannot accept it
	Submit(job Job) error
}

// RunResult summarizes one completed sync run
type RunResult struct {
	Pages   int
	Records int
}

// ResourceStatus is the externally visible sync state of one resource
type ResourceStatus struct {
	Status       merchant.SyncStatus `json:"status"`
	Cursor       string              `json:"cursor,omitempty"`
	StartedAt    *time.Time          `json:"started_at,omitempty"`
	SyncedAt     *time.Time          `json:"synced_at,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

// StatusResponse snapshots both resources of a shop
type StatusResponse struct {
	ShopID   uuid.UUID      `json:"shop_id"`
	Domain   string         `json:"domain"`
	Products ResourceStatus `json:"products"`
	Orders   ResourceStatus `json:"orders"`
}

func toResourceStatus(state *merchant.SyncState) ResourceStatus {
	return ResourceStatus{
		Status:       state.Status,
		Cursor:       state.Cursor,
		StartedAt:    state.StartedAt,
		SyncedAt:     state.SyncedAt,
		ErrorMessage: state.ErrorMessage,
	}
}

// ToStatusResponse builds the status snapshot for a shop
func ToStatusResponse(shop *merchant.Shop) *StatusResponse {
	return &StatusResponse{
		ShopID:   shop.ID,
		Domain:   shop.Domain,
		Products: toResourceStatus(&shop.Products),
		Orders:   toResourceStatus(&shop.Orders),
	}
}
