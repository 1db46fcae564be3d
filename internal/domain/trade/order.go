package trade

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialStatus mirrors the upstream payment status of an order
type FinancialStatus string

const (
	FinancialStatusPending           FinancialStatus = "pending"
	FinancialStatusAuthorized        FinancialStatus = "authorized"
	FinancialStatusPaid              FinancialStatus = "paid"
	FinancialStatusPartiallyPaid     FinancialStatus = "partially_paid"
	FinancialStatusPartiallyRefunded FinancialStatus = "partially_refunded"
	FinancialStatusRefunded          FinancialStatus = "refunded"
	FinancialStatusVoided            FinancialStatus = "voided"
)

// FulfillmentStatus mirrors the upstream shipping status of an order
type FulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentStatusPartial     FulfillmentStatus = "partial"
	FulfillmentStatusFulfilled   FulfillmentStatus = "fulfilled"
)

// NormalizeStatus lowercases an upstream status string, mapping empty to the
// given default. GraphQL sends SCREAMING_CASE, webhooks lowercase.
func NormalizeStatus(s, def string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	return s
}

// LineItem is one purchased position of an order. Stored as JSONB on the
// order row; line items have no identity outside their order.
type LineItem struct {
	ProductUpstreamID string          `json:"product_upstream_id"`
	Title             string          `json:"title"`
	Quantity          int64           `json:"quantity"`
	UnitAmount        decimal.Decimal `json:"unit_amount"`
}

// Amount returns quantity times unit amount
func (i LineItem) Amount() decimal.Decimal {
	return i.UnitAmount.Mul(decimal.NewFromInt(i.Quantity))
}

// LineItems is the JSONB-serialized list of an order's positions
type LineItems []LineItem

// Value implements driver.Valuer for database storage
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		l = LineItems{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for database retrieval
func (l *LineItems) Scan(value any) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into LineItems", value)
	}

	if len(data) == 0 || string(data) == "null" {
		*l = LineItems{}
		return nil
	}

	return json.Unmarshal(data, l)
}

// DiscountCodes is the JSONB-serialized list of codes applied to an order
type DiscountCodes []string

// Value implements driver.Valuer for database storage
func (d DiscountCodes) Value() (driver.Value, error) {
	if d == nil {
		d = DiscountCodes{}
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for database retrieval
func (d *DiscountCodes) Scan(value any) error {
	if value == nil {
		*d = DiscountCodes{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into DiscountCodes", value)
	}

	if len(data) == 0 || string(data) == "null" {
		*d = DiscountCodes{}
		return nil
	}

	return json.Unmarshal(data, d)
}

// Order mirrors one upstream order for a shop, keyed by
// (tenant_id, upstream_id). Same dual-writer pattern as the product mirror.
type Order struct {
	shared.TenantAggregateRoot
	UpstreamID        string            `gorm:"type:varchar(64);not null;uniqueIndex:idx_orders_tenant_upstream,priority:2"`
	Number            int64             `gorm:"not null;default:0"`
	Name              string            `gorm:"type:varchar(50)"` // Display name, e.g. "#1001"
	FinancialStatus   FinancialStatus   `gorm:"type:varchar(30);not null;default:'pending'"`
	FulfillmentStatus FulfillmentStatus `gorm:"type:varchar(30);not null;default:'unfulfilled'"`
	Currency          string            `gorm:"type:varchar(3);not null;default:'USD'"`
	SubtotalAmount    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount         decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount       decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	CustomerID        string            `gorm:"type:varchar(64)"`
	CustomerEmail     string            `gorm:"type:varchar(255)"`
	LineItems         LineItems         `gorm:"type:jsonb;not null;default:'[]'"`
	DiscountCodes     DiscountCodes     `gorm:"type:jsonb;not null;default:'[]'"`
	ProcessedAt       *time.Time        `gorm:"index"`
	SyncedAt          time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// OrderSnapshot carries the normalized upstream fields for one order
type OrderSnapshot struct {
	UpstreamID        string
	Number            int64
	Name              string
	FinancialStatus   FinancialStatus
	FulfillmentStatus FulfillmentStatus
	Currency          string
	SubtotalAmount    decimal.Decimal
	TaxAmount         decimal.Decimal
	DiscountAmount    decimal.Decimal
	TotalAmount       decimal.Decimal
	CustomerID        string
	CustomerEmail     string
	LineItems         LineItems
	DiscountCodes     DiscountCodes
	ProcessedAt       *time.Time
}

// NewOrderFromSnapshot creates a mirror row from an upstream snapshot
func NewOrderFromSnapshot(tenantID uuid.UUID, snapshot OrderSnapshot) (*Order, error) {
	if snapshot.UpstreamID == "" {
		return nil, shared.NewDomainError("INVALID_UPSTREAM_ID", "Upstream order id cannot be empty")
	}

	order := &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SyncedAt:            time.Now(),
	}
	order.applyFields(snapshot)

	return order, nil
}

// ApplySnapshot absorbs a fresher upstream snapshot into the mirror row
func (o *Order) ApplySnapshot(snapshot OrderSnapshot) error {
	if snapshot.UpstreamID != "" && snapshot.UpstreamID != o.UpstreamID {
		return shared.NewDomainError("UPSTREAM_ID_MISMATCH", "Snapshot belongs to a different upstream order")
	}

	o.applyFields(snapshot)
	o.SyncedAt = time.Now()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

func (o *Order) applyFields(snapshot OrderSnapshot) {
	if snapshot.UpstreamID != "" {
		o.UpstreamID = snapshot.UpstreamID
	}
	if snapshot.Number != 0 {
		o.Number = snapshot.Number
	}
	o.Name = snapshot.Name
	if snapshot.FinancialStatus != "" {
		o.FinancialStatus = snapshot.FinancialStatus
	} else {
		o.FinancialStatus = FinancialStatusPending
	}
	if snapshot.FulfillmentStatus != "" {
		o.FulfillmentStatus = snapshot.FulfillmentStatus
	} else {
		o.FulfillmentStatus = FulfillmentStatusUnfulfilled
	}
	if snapshot.Currency != "" {
		o.Currency = snapshot.Currency
	}
	o.SubtotalAmount = snapshot.SubtotalAmount
	o.TaxAmount = snapshot.TaxAmount
	o.DiscountAmount = snapshot.DiscountAmount
	o.TotalAmount = snapshot.TotalAmount
	o.CustomerID = snapshot.CustomerID
	o.CustomerEmail = snapshot.CustomerEmail
	if snapshot.LineItems != nil {
		o.LineItems = snapshot.LineItems
	} else if o.LineItems == nil {
		o.LineItems = LineItems{}
	}
	if snapshot.DiscountCodes != nil {
		o.DiscountCodes = snapshot.DiscountCodes
	} else if o.DiscountCodes == nil {
		o.DiscountCodes = DiscountCodes{}
	}
	o.ProcessedAt = snapshot.ProcessedAt
}

// HasDiscount returns true if any discount code was applied
func (o *Order) HasDiscount() bool {
	return len(o.DiscountCodes) > 0
}

// UnitsSold returns the total quantity across all line items
func (o *Order) UnitsSold() int64 {
	var total int64
	for _, item := range o.LineItems {
		total += item.Quantity
	}
	return total
}

// IsPaid returns true if the order has been fully paid
func (o *Order) IsPaid() bool {
	return o.FinancialStatus == FinancialStatusPaid
}
