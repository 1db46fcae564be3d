package integration

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Platform Errors
// ---------------------------------------------------------------------------

var (
	// ErrAuthRevoked signals a 401/402/403 class response. Never retried;
	// the shop must re-authenticate before any further call.
	ErrAuthRevoked = errors.New("integration: platform credential revoked")
	// ErrRateLimited surfaces only after internal backoff exhausted its
	// attempts.
	ErrRateLimited = errors.New("integration: platform rate limited")
	// ErrUpstreamUnavailable covers 5xx and transport failures after
	// bounded retries.
	ErrUpstreamUnavailable = errors.New("integration: platform temporarily unavailable")
	// ErrInvalidCursor signals a stored cursor the platform no longer
	// accepts. The caller restarts from the beginning.
	ErrInvalidCursor = errors.New("integration: pagination cursor rejected by platform")
	// ErrInvalidResponse signals a response body that could not be decoded
	ErrInvalidResponse = errors.New("integration: invalid platform response")
	// ErrPlatformNotRegistered signals an unknown platform code
	ErrPlatformNotRegistered = errors.New("integration: platform not registered")
)

// ---------------------------------------------------------------------------
// PlatformCode and ResourceKind
// ---------------------------------------------------------------------------

// PlatformCode identifies an upstream commerce platform
type PlatformCode string

const (
	// PlatformCodeShopify is the only adapter shipped today. The registry
	// keeps the port pluggable for further platforms.
	PlatformCodeShopify PlatformCode = "SHOPIFY"
)

// IsValid returns true if the platform code is valid
func (c PlatformCode) IsValid() bool {
	return c == PlatformCodeShopify
}

// String returns the string representation of PlatformCode
func (c PlatformCode) String() string {
	return string(c)
}

// ResourceKind identifies which mirrored resource a page request targets
type ResourceKind string

const (
	ResourceProducts ResourceKind = "products"
	ResourceOrders   ResourceKind = "orders"
)

// IsValid returns true if the resource kind is valid
func (r ResourceKind) IsValid() bool {
	return r == ResourceProducts || r == ResourceOrders
}

// String returns the string representation of ResourceKind
func (r ResourceKind) String() string {
	return string(r)
}

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// UpstreamProduct is one normalized catalog entry from a platform page
type UpstreamProduct struct {
	// ID is the platform's globally unique product id
	ID string
	// LegacyID is the numeric id used in admin URLs
	LegacyID int64
	// Title is the product title
	Title string
	// Handle is the URL slug
	Handle string
	// ProductType is the free-form product category
	ProductType string
	// Vendor is the product vendor name
	Vendor string
	// Status is the platform status (active, draft, archived)
	Status string
	// TotalInventory is the summed available quantity across variants
	TotalInventory int64
	// InventoryTracked is false when the platform does not track stock
	InventoryTracked bool
	// PriceMin is the lowest variant price
	PriceMin decimal.Decimal
	// PriceMax is the highest variant price
	PriceMax decimal.Decimal
	// FeaturedImageURL is the primary image URL
	FeaturedImageURL string
	// UpdatedAt is the platform-side last modification instant
	UpdatedAt *time.Time
}

// UpstreamLineItem is one purchased position inside an upstream order
type UpstreamLineItem struct {
	// ProductID is the platform product id this position refers to
	ProductID string
	// Title is the product title at purchase time
	Title string
	// Quantity is the purchased quantity
	Quantity int64
	// UnitAmount is the original per-unit price
	UnitAmount decimal.Decimal
}

// UpstreamOrder is one normalized order from a platform page
type UpstreamOrder struct {
	// ID is the platform's globally unique order id
	ID string
	// Number is the sequential order number
	Number int64
	// Name is the display name, e.g. "#1001"
	Name string
	// FinancialStatus is the payment status
	FinancialStatus string
	// FulfillmentStatus is the shipping status
	FulfillmentStatus string
	// Currency is the ISO 4217 presentment currency
	Currency string
	// SubtotalAmount is the pre-tax, pre-shipping total
	SubtotalAmount decimal.Decimal
	// TaxAmount is the total tax
	TaxAmount decimal.Decimal
	// DiscountAmount is the total discount applied
	DiscountAmount decimal.Decimal
	// TotalAmount is what the buyer paid
	TotalAmount decimal.Decimal
	// CustomerID is the platform customer id
	CustomerID string
	// CustomerEmail is the buyer email
	CustomerEmail string
	// LineItems contains the purchased positions
	LineItems []UpstreamLineItem
	// DiscountCodes contains the applied code strings
	DiscountCodes []string
	// ProcessedAt is when the platform processed the order
	ProcessedAt *time.Time
}

// ---------------------------------------------------------------------------
// Page Request/Response
// ---------------------------------------------------------------------------

// PageRequest asks the platform for one page of a resource
type PageRequest struct {
	// Resource selects products or orders
	Resource ResourceKind
	// Cursor is the opaque continuation token, empty for the first page
	Cursor string
	// PageSize is the requested page size
	PageSize int
	// UpdatedSince restricts products to those modified at or after the
	// instant (incremental pulls)
	UpdatedSince *time.Time
	// ProcessedSince restricts orders to the trailing window
	ProcessedSince *time.Time
}

// Validate validates the page request and applies defaults
func (r *PageRequest) Validate() error {
	if !r.Resource.IsValid() {
		return errors.New("integration: unknown resource kind")
	}
	if r.PageSize < 1 || r.PageSize > 250 {
		r.PageSize = 50
	}
	return nil
}

// PageResult is one page of normalized upstream records. Exactly one of
// Products/Orders is populated, matching the requested resource.
type PageResult struct {
	// Products contains catalog entries for product pages
	Products []UpstreamProduct
	// Orders contains order entries for order pages
	Orders []UpstreamOrder
	// NextCursor is the continuation token for the following page
	NextCursor string
	// HasMore is false on the final page
	HasMore bool
	// Quota is the rate-limit state observed on this response
	Quota QuotaStatus
}

// Len returns the number of records on the page
func (r *PageResult) Len() int {
	if len(r.Products) > 0 {
		return len(r.Products)
	}
	return len(r.Orders)
}

// ---------------------------------------------------------------------------
// Quota
// ---------------------------------------------------------------------------

// QuotaStatus describes the platform's leaky-bucket state after a call
type QuotaStatus struct {
	// Available is the remaining capacity in the bucket
	Available float64
	// Maximum is the bucket size
	Maximum float64
	// RestoreRate is capacity restored per second
	RestoreRate float64
}

// IsZero returns true when no quota information was observed
func (q QuotaStatus) IsZero() bool {
	return q.Maximum == 0
}

// UsedFraction returns how full the bucket is, in [0, 1]
func (q QuotaStatus) UsedFraction() float64 {
	if q.Maximum == 0 {
		return 0
	}
	return (q.Maximum - q.Available) / q.Maximum
}

// WaitFor returns how long to pause until the bucket restores the given
// capacity. Zero when capacity is already available or restore rate unknown.
func (q QuotaStatus) WaitFor(cost float64) time.Duration {
	if q.IsZero() || q.Available >= cost || q.RestoreRate <= 0 {
		return 0
	}
	deficit := cost - q.Available
	return time.Duration(deficit / q.RestoreRate * float64(time.Second))
}

// QuotaParser extracts rate-limit state from a platform response. Adapters
// select a parser at construction; the sync engine never assumes a format.
type QuotaParser interface {
	// Name identifies the parser in config and logs
	Name() string

	// Parse inspects response headers and body. Returns false when the
	// response carries no recognizable quota information.
	Parse(header http.Header, body []byte) (QuotaStatus, bool)
}

// ---------------------------------------------------------------------------
// PlatformClient Port Interface
// ---------------------------------------------------------------------------

// PlatformClient pulls resource pages from the upstream platform on behalf of
// one shop. Implementations pace requests against the observed quota and
// retry transient failures internally; errors that escape are final.
type PlatformClient interface {
	// ShopDomain returns the shop this client is bound to
	ShopDomain() string

	// FetchPage retrieves one page of the requested resource
	FetchPage(ctx context.Context, req PageRequest) (*PageResult, error)
}

// ClientFactory builds a PlatformClient carrying one shop's decrypted
// credential. There is no global client state.
type ClientFactory interface {
	// ForShop returns a client for the given shop domain
	ForShop(ctx context.Context, shopDomain string) (PlatformClient, error)
}

// ClientRegistry resolves the client factory for a platform code
type ClientRegistry interface {
	// Factory returns the factory registered for the code
	Factory(code PlatformCode) (ClientFactory, error)

	// Codes lists registered platform codes
	Codes() []PlatformCode
}
