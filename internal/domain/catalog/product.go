package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus mirrors the upstream catalog status
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusArchived ProductStatus = "archived"
)

// ParseProductStatus normalizes an upstream status string. Upstream sends
// uppercase over GraphQL and lowercase over webhooks.
func ParseProductStatus(s string) ProductStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "draft":
		return ProductStatusDraft
	case "archived":
		return ProductStatusArchived
	default:
		return ProductStatusActive
	}
}

// Product mirrors one upstream catalog item for a shop. Rows are written only
// by the sync engine and the webhook layer, keyed by (tenant_id, upstream_id).
type Product struct {
	shared.TenantAggregateRoot
	UpstreamID        string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_products_tenant_upstream,priority:2"`
	LegacyID          int64           `gorm:"not null;default:0"` // Numeric id used in admin deep links
	Title             string          `gorm:"type:varchar(255);not null"`
	Handle            string          `gorm:"type:varchar(255)"`
	ProductType       string          `gorm:"type:varchar(255)"`
	Vendor            string          `gorm:"type:varchar(255)"`
	Status            ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	TotalInventory    int64           `gorm:"not null;default:0"`
	InventoryTracked  bool            `gorm:"not null;default:false"`
	PriceMin          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PriceMax          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FeaturedImageURL  string          `gorm:"type:text"`
	UpstreamUpdatedAt *time.Time
	SyncedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductSnapshot carries the normalized upstream fields for one product
type ProductSnapshot struct {
	UpstreamID        string
	LegacyID          int64
	Title             string
	Handle            string
	ProductType       string
	Vendor            string
	Status            ProductStatus
	TotalInventory    int64
	InventoryTracked  bool
	PriceMin          decimal.Decimal
	PriceMax          decimal.Decimal
	FeaturedImageURL  string
	UpstreamUpdatedAt *time.Time
}

// NewProductFromSnapshot creates a mirror row from an upstream snapshot
func NewProductFromSnapshot(tenantID uuid.UUID, snapshot ProductSnapshot) (*Product, error) {
	if snapshot.UpstreamID == "" {
		return nil, shared.NewDomainError("INVALID_UPSTREAM_ID", "Upstream product id cannot be empty")
	}
	if snapshot.Title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SyncedAt:            time.Now(),
	}
	product.applyFields(snapshot)

	return product, nil
}

// ApplySnapshot absorbs a fresher upstream snapshot into the mirror row.
// Upserts are idempotent, so re-applying the same snapshot is harmless.
func (p *Product) ApplySnapshot(snapshot ProductSnapshot) error {
	if snapshot.UpstreamID != "" && snapshot.UpstreamID != p.UpstreamID {
		return shared.NewDomainError("UPSTREAM_ID_MISMATCH", "Snapshot belongs to a different upstream product")
	}
	if snapshot.Title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}

	p.applyFields(snapshot)
	p.SyncedAt = time.Now()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

func (p *Product) applyFields(snapshot ProductSnapshot) {
	if snapshot.UpstreamID != "" {
		p.UpstreamID = snapshot.UpstreamID
	}
	if snapshot.LegacyID != 0 {
		p.LegacyID = snapshot.LegacyID
	}
	p.Title = snapshot.Title
	p.Handle = snapshot.Handle
	p.ProductType = snapshot.ProductType
	p.Vendor = snapshot.Vendor
	if snapshot.Status != "" {
		p.Status = snapshot.Status
	} else {
		p.Status = ProductStatusActive
	}
	p.TotalInventory = snapshot.TotalInventory
	p.InventoryTracked = snapshot.InventoryTracked
	p.PriceMin = snapshot.PriceMin
	p.PriceMax = snapshot.PriceMax
	p.FeaturedImageURL = snapshot.FeaturedImageURL
	p.UpstreamUpdatedAt = snapshot.UpstreamUpdatedAt
}

// IsActive returns true if the product is active upstream
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsLowStock returns true if inventory is tracked and sits in (0, max]
func (p *Product) IsLowStock(max int64) bool {
	return p.InventoryTracked && p.TotalInventory > 0 && p.TotalInventory <= max
}

// AdminID returns the numeric id used in admin deep links. Falls back to the
// trailing segment of the upstream GID when the legacy id was not mirrored.
func (p *Product) AdminID() string {
	if p.LegacyID != 0 {
		return strconv.FormatInt(p.LegacyID, 10)
	}
	if idx := strings.LastIndex(p.UpstreamID, "/"); idx >= 0 {
		return p.UpstreamID[idx+1:]
	}
	return p.UpstreamID
}
