package merchant

import (
	"strings"
	"time"

	"github.com/ecomdash/backend/internal/domain/shared"
)

// ShopStatus represents the lifecycle status of a connected shop
type ShopStatus string

const (
	ShopStatusActive      ShopStatus = "active"
	ShopStatusUninstalled ShopStatus = "uninstalled" // App removed; data purge pending or complete
)

// SyncStatus represents the sync state machine for one resource of one shop
type SyncStatus string

const (
	SyncStatusIdle      SyncStatus = "idle"
	SyncStatusSyncing   SyncStatus = "syncing"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// IsValid returns true if the sync status is a known value
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusIdle, SyncStatusSyncing, SyncStatusCompleted, SyncStatusFailed:
		return true
	}
	return false
}

// String returns the string representation
func (s SyncStatus) String() string {
	return string(s)
}

// SyncResource identifies which mirrored resource a sync state refers to
type SyncResource string

const (
	SyncResourceProducts SyncResource = "products"
	SyncResourceOrders   SyncResource = "orders"
)

// IsValid returns true if the resource is a known value
func (r SyncResource) IsValid() bool {
	return r == SyncResourceProducts || r == SyncResourceOrders
}

// String returns the string representation
func (r SyncResource) String() string {
	return string(r)
}

// SyncState holds the per-resource sync checkpoint embedded on the shop.
// Cursor advancement is strictly ordered after the page's data commit, so a
// crash between the two re-fetches the last page instead of skipping it.
//
// The cursor is a resume checkpoint for an interrupted run only: a cursor is
// valid solely within the query that minted it, so WindowStart pins that
// query's lower bound for the resumed run, and both fields are cleared once
// the run completes.
type SyncState struct {
	Cursor       string     `gorm:"type:text" json:"cursor"`
	WindowStart  *time.Time `json:"window_start"`
	Status       SyncStatus `gorm:"type:varchar(20);not null;default:'idle'" json:"status"`
	StartedAt    *time.Time `json:"started_at"`
	SyncedAt     *time.Time `json:"synced_at"`
	ErrorMessage string     `gorm:"type:text" json:"error_message"`
}

// InProgress returns true while a sync run holds this resource
func (s *SyncState) InProgress() bool {
	return s.Status == SyncStatusSyncing
}

// Stale returns true if a syncing marker has outlived the given lease,
// meaning the run that set it died without releasing the resource.
func (s *SyncState) Stale(lease time.Duration) bool {
	if s.Status != SyncStatusSyncing || s.StartedAt == nil {
		return false
	}
	return time.Since(*s.StartedAt) > lease
}

// Shop represents one connected store. It is the aggregate root for the
// tenant credential store and carries the per-resource sync checkpoints.
type Shop struct {
	shared.BaseAggregateRoot
	Domain                string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	AccessTokenCiphertext string     `gorm:"type:text;not null"`
	Scopes                string     `gorm:"type:text"`
	WebhookSecret         string     `gorm:"type:varchar(255)"` // Optional per-shop override; app secret otherwise
	Status                ShopStatus `gorm:"type:varchar(20);not null;default:'active'"`
	UninstalledAt         *time.Time
	Products              SyncState `gorm:"embedded;embeddedPrefix:products_"`
	Orders                SyncState `gorm:"embedded;embeddedPrefix:orders_"`
}

// TableName returns the table name for GORM
func (Shop) TableName() string {
	return "shops"
}

// NewShop creates a shop for a freshly onboarded store. The access token must
// already be encrypted; plaintext credentials never enter the domain layer.
func NewShop(domain, accessTokenCiphertext, scopes string) (*Shop, error) {
	domain = NormalizeDomain(domain)
	if err := validateShopDomain(domain); err != nil {
		return nil, err
	}
	if accessTokenCiphertext == "" {
		return nil, shared.NewDomainError("INVALID_CREDENTIAL", "Access token is required")
	}

	shop := &Shop{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		Domain:                domain,
		AccessTokenCiphertext: accessTokenCiphertext,
		Scopes:                scopes,
		Status:                ShopStatusActive,
		Products:              SyncState{Status: SyncStatusIdle},
		Orders:                SyncState{Status: SyncStatusIdle},
	}

	shop.AddDomainEvent(NewShopInstalledEvent(shop))

	return shop, nil
}

// SyncStateFor returns the sync state for the given resource
func (s *Shop) SyncStateFor(resource SyncResource) *SyncState {
	if resource == SyncResourceOrders {
		return &s.Orders
	}
	return &s.Products
}

// BeginSync transitions a resource into syncing. Duplicate triggers for an
// in-flight pair are rejected unless the previous marker outlived the lease.
func (s *Shop) BeginSync(resource SyncResource, lease time.Duration) error {
	if !resource.IsValid() {
		return shared.NewDomainError("INVALID_RESOURCE", "Unknown sync resource")
	}
	if s.Status != ShopStatusActive {
		return shared.ErrInvalidState
	}

	state := s.SyncStateFor(resource)
	if state.InProgress() && !state.Stale(lease) {
		return shared.ErrSyncInProgress
	}

	now := time.Now()
	state.Status = SyncStatusSyncing
	state.StartedAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()

	return nil
}

// AdvanceCursor records the cursor for the next page. Called after each
// page's records have been committed.
func (s *Shop) AdvanceCursor(resource SyncResource, cursor string) {
	state := s.SyncStateFor(resource)
	state.Cursor = cursor
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// AnchorWindow pins the lower-bound filter of a fresh run. A resumed run
// must re-issue the exact query its stored cursor was minted under, so the
// anchor survives failure alongside the cursor.
func (s *Shop) AnchorWindow(resource SyncResource, since *time.Time) {
	state := s.SyncStateFor(resource)
	state.WindowStart = since
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// CompleteSync transitions a resource to completed, records the success
// timestamp and clears any previous error. The cursor and window anchor are
// discarded: a finished run's cursor points past the end of an exhausted
// result set and must never seed the next run.
func (s *Shop) CompleteSync(resource SyncResource) {
	now := time.Now()
	state := s.SyncStateFor(resource)
	state.Status = SyncStatusCompleted
	state.Cursor = ""
	state.WindowStart = nil
	state.SyncedAt = &now
	state.StartedAt = nil
	state.ErrorMessage = ""
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewShopSyncCompletedEvent(s, resource))
}

// FailSync transitions a resource to failed and persists the error message.
// The cursor and window anchor from already-committed pages are retained so
// the next run resumes the same query instead of starting over.
func (s *Shop) FailSync(resource SyncResource, message string) {
	state := s.SyncStateFor(resource)
	state.Status = SyncStatusFailed
	state.ErrorMessage = message
	state.StartedAt = nil
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// ResetCursor clears the stored cursor and window anchor so the next run
// starts from the beginning (forced full sync).
func (s *Shop) ResetCursor(resource SyncResource) {
	state := s.SyncStateFor(resource)
	state.Cursor = ""
	state.WindowStart = nil
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// RotateCredential replaces the encrypted access token and granted scopes
// after a re-authentication.
func (s *Shop) RotateCredential(accessTokenCiphertext, scopes string) error {
	if accessTokenCiphertext == "" {
		return shared.NewDomainError("INVALID_CREDENTIAL", "Access token is required")
	}

	s.AccessTokenCiphertext = accessTokenCiphertext
	s.Scopes = scopes
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// Reactivate returns an uninstalled shop to active after a re-install. The
// mirrors were purged at uninstall, so both checkpoints reset and the next
// run rebuilds them from scratch.
func (s *Shop) Reactivate() {
	if s.Status == ShopStatusActive {
		return
	}
	s.Status = ShopStatusActive
	s.UninstalledAt = nil
	s.Products = SyncState{Status: SyncStatusIdle}
	s.Orders = SyncState{Status: SyncStatusIdle}
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// SetWebhookSecret sets the per-shop webhook signing secret override
func (s *Shop) SetWebhookSecret(secret string) {
	s.WebhookSecret = secret
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// MarkUninstalled flags the shop as removed upstream and wipes the sealed
// access token and scopes immediately, not at purge time. The webhook secret
// stays so the later redact delivery for this shop still verifies. Data purge
// must follow within the compliance window; the event drives the purge job.
func (s *Shop) MarkUninstalled() error {
	if s.Status == ShopStatusUninstalled {
		return shared.ErrInvalidState
	}

	now := time.Now()
	s.Status = ShopStatusUninstalled
	s.UninstalledAt = &now
	s.AccessTokenCiphertext = ""
	s.Scopes = ""
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewShopUninstalledEvent(s))

	return nil
}

// IsActive returns true if the shop is connected and syncable
func (s *Shop) IsActive() bool {
	return s.Status == ShopStatusActive
}

// NormalizeDomain lowercases and trims a shop domain
func NormalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

func validateShopDomain(domain string) error {
	if domain == "" {
		return shared.NewDomainError("INVALID_DOMAIN", "Shop domain cannot be empty")
	}
	if len(domain) > 255 {
		return shared.NewDomainError("INVALID_DOMAIN", "Shop domain cannot exceed 255 characters")
	}
	if strings.ContainsAny(domain, " /\\") || !strings.Contains(domain, ".") {
		return shared.NewDomainError("INVALID_DOMAIN", "Shop domain must be a hostname")
	}
	return nil
}
