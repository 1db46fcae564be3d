package merchant

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecomdash/backend/internal/domain/merchant"
	"github.com/ecomdash/backend/internal/domain/shared"
)

// RegisterCommand onboards one store. AccessToken arrives in plaintext from
// the OAuth callback and is sealed before anything else touches it.
type RegisterCommand struct {
	Domain        string `json:"domain" binding:"required"`
	AccessToken   string `json:"access_token" binding:"required"`
	Scopes        string `json:"scopes"`
	WebhookSecret string `json:"webhook_secret"`
}

// Validate validates the command
func (c *RegisterCommand) Validate() error {
	if c.Domain == "" {
		return shared.NewDomainError("INVALID_DOMAIN", "Shop domain is required")
	}
	if c.AccessToken == "" {
		return shared.NewDomainError("INVALID_CREDENTIAL", "Access token is required")
	}
	return nil
}

// UpdateCredentialCommand rotates a shop's upstream credential after
// re-authentication
type UpdateCredentialCommand struct {
	AccessToken   string `json:"access_token" binding:"required"`
	Scopes        string `json:"scopes"`
	WebhookSecret string `json:"webhook_secret"`
}

// Validate validates the command
func (c *UpdateCredentialCommand) Validate() error {
	if c.AccessToken == "" {
		return shared.NewDomainError("INVALID_CREDENTIAL", "Access token is required")
	}
	return nil
}

// SyncStateResponse is the API shape of one resource's sync checkpoint
type SyncStateResponse struct {
	Status       string     `json:"status"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	SyncedAt     *time.Time `json:"synced_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// ShopResponse is the API shape of a shop. Credentials never appear in it.
type ShopResponse struct {
	ID            uuid.UUID         `json:"id"`
	Domain        string            `json:"domain"`
	Scopes        string            `json:"scopes,omitempty"`
	Status        string            `json:"status"`
	UninstalledAt *time.Time        `json:"uninstalled_at,omitempty"`
	Products      SyncStateResponse `json:"products"`
	Orders        SyncStateResponse `json:"orders"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ToShopResponse converts a domain shop to its API shape
func ToShopResponse(shop *merchant.Shop) *ShopResponse {
	return &ShopResponse{
		ID:            shop.ID,
		Domain:        shop.Domain,
		Scopes:        shop.Scopes,
		Status:        string(shop.Status),
		UninstalledAt: shop.UninstalledAt,
		Products:      toSyncStateResponse(shop.Products),
		Orders:        toSyncStateResponse(shop.Orders),
		CreatedAt:     shop.CreatedAt,
		UpdatedAt:     shop.UpdatedAt,
	}
}

func toSyncStateResponse(state merchant.SyncState) SyncStateResponse {
	return SyncStateResponse{
		Status:       state.Status.String(),
		StartedAt:    state.StartedAt,
		SyncedAt:     state.SyncedAt,
		ErrorMessage: state.ErrorMessage,
	}
}

// PurgeResult reports how many rows a tenant purge removed
type PurgeResult struct {
	Products      int64 `json:"products"`
	Orders        int64 `json:"orders"`
	Insights      int64 `json:"insights"`
	WebhookEvents int64 `json:"webhook_events"`
}
