package integration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Webhook Errors
// ---------------------------------------------------------------------------

var (
	ErrWebhookInvalidTenant = errors.New("integration: invalid webhook tenant")
	ErrWebhookInvalidTopic  = errors.New("integration: invalid webhook topic")
	ErrWebhookEmptyPayload  = errors.New("integration: empty webhook payload")
	ErrWebhookDuplicate     = errors.New("integration: webhook already processed")
	ErrWebhookBadSignature  = errors.New("integration: webhook signature mismatch")
	ErrWebhookUnknownShop   = errors.New("integration: webhook shop not registered")
	ErrWebhookEventNotFound = errors.New("integration: webhook event not found")
)

// ---------------------------------------------------------------------------
// WebhookTopic
// ---------------------------------------------------------------------------

// WebhookTopic is the upstream event topic of a delivery
type WebhookTopic string

const (
	TopicProductsCreate WebhookTopic = "products/create"
	TopicProductsUpdate WebhookTopic = "products/update"
	TopicProductsDelete WebhookTopic = "products/delete"
	TopicOrdersCreate   WebhookTopic = "orders/create"
	TopicOrdersUpdated  WebhookTopic = "orders/updated"
	TopicAppUninstalled WebhookTopic = "app/uninstalled"
	TopicShopRedact     WebhookTopic = "shop/redact"
)

// IsKnown returns true for topics the ingest pipeline applies. Unknown topics
// are still acknowledged and ledgered as skipped.
func (t WebhookTopic) IsKnown() bool {
	switch t {
	case TopicProductsCreate, TopicProductsUpdate, TopicProductsDelete,
		TopicOrdersCreate, TopicOrdersUpdated,
		TopicAppUninstalled, TopicShopRedact:
		return true
	default:
		return false
	}
}

// String returns the string representation of WebhookTopic
func (t WebhookTopic) String() string {
	return string(t)
}

// ---------------------------------------------------------------------------
// WebhookEvent Ledger Entry
// ---------------------------------------------------------------------------

// WebhookStatus records how a delivery was handled
type WebhookStatus string

const (
	// WebhookStatusProcessed means the payload change was applied
	WebhookStatusProcessed WebhookStatus = "processed"
	// WebhookStatusSkipped means the topic was unknown and only ledgered
	WebhookStatusSkipped WebhookStatus = "skipped"
	// WebhookStatusQueued means the effect was handed to the outbox
	WebhookStatusQueued WebhookStatus = "queued"
)

// WebhookEvent is one row of the dedup ledger. The row is inserted in the
// same transaction as the change the delivery caused, so a ledger hit
// guarantees the effect is already durable.
type WebhookEvent struct {
	// ID is the unique identifier of this ledger entry
	ID uuid.UUID
	// TenantID is the shop this delivery belongs to
	TenantID uuid.UUID
	// Fingerprint is SHA-256(tenant id, raw payload), unique per tenant
	Fingerprint string
	// Topic is the upstream event topic
	Topic WebhookTopic
	// UpstreamEventID is the platform's delivery id header, if present
	UpstreamEventID string
	// Status records how the delivery was handled
	Status WebhookStatus
	// ReceivedAt is when the delivery arrived
	ReceivedAt time.Time
	// ProcessedAt is when handling finished
	ProcessedAt *time.Time
}

// NewWebhookEvent creates a ledger entry for a verified delivery
func NewWebhookEvent(tenantID uuid.UUID, topic WebhookTopic, upstreamEventID string, rawBody []byte) (*WebhookEvent, error) {
	if tenantID == uuid.Nil {
		return nil, ErrWebhookInvalidTenant
	}
	if topic == "" {
		return nil, ErrWebhookInvalidTopic
	}
	if len(rawBody) == 0 {
		return nil, ErrWebhookEmptyPayload
	}

	now := time.Now()
	return &WebhookEvent{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Fingerprint:     Fingerprint(tenantID, rawBody),
		Topic:           topic,
		UpstreamEventID: upstreamEventID,
		Status:          WebhookStatusProcessed,
		ReceivedAt:      now,
	}, nil
}

// MarkProcessed stamps the entry as applied
func (e *WebhookEvent) MarkProcessed() {
	now := time.Now()
	e.Status = WebhookStatusProcessed
	e.ProcessedAt = &now
}

// MarkSkipped stamps the entry as acknowledged without effect
func (e *WebhookEvent) MarkSkipped() {
	now := time.Now()
	e.Status = WebhookStatusSkipped
	e.ProcessedAt = &now
}

// MarkQueued stamps the entry as handed to the outbox
func (e *WebhookEvent) MarkQueued() {
	now := time.Now()
	e.Status = WebhookStatusQueued
	e.ProcessedAt = &now
}

// Fingerprint derives the dedup key for a delivery: SHA-256 over the tenant
// id bytes followed by the raw payload, hex encoded. Identical retransmits
// collide; a changed payload does not.
func Fingerprint(tenantID uuid.UUID, rawBody []byte) string {
	h := sha256.New()
	h.Write(tenantID[:])
	h.Write(rawBody)
	return hex.EncodeToString(h.Sum(nil))
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// WebhookEventRepository persists the dedup ledger
type WebhookEventRepository interface {
	// Save inserts a ledger entry. A fingerprint collision returns
	// ErrWebhookDuplicate.
	Save(ctx context.Context, event *WebhookEvent) error

	// ExistsByFingerprint reports whether a delivery was already ledgered
	ExistsByFingerprint(ctx context.Context, tenantID uuid.UUID, fingerprint string) (bool, error)

	// FindByFingerprint loads a ledger entry
	FindByFingerprint(ctx context.Context, tenantID uuid.UUID, fingerprint string) (*WebhookEvent, error)

	// ListByTenant lists recent entries of a tenant, newest first
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]WebhookEvent, error)

	// DeleteByTenant removes all ledger entries of a tenant and reports how
	// many were purged
	DeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// DeleteOlderThan prunes entries received before the cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
