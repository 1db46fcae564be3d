package insight

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InsightType classifies what an insight is about
type InsightType string

const (
	InsightTypeUnderstockedWinner    InsightType = "understocked_winner"
	InsightTypeOverstockSlowMover    InsightType = "overstock_slow_mover"
	InsightTypeCouponCannibalization InsightType = "coupon_cannibalization"
	InsightTypeTrendDetection        InsightType = "trend_detection"
	InsightTypePricingOpportunity    InsightType = "pricing_opportunity"
	InsightTypeInventoryAlert        InsightType = "inventory_alert"

	// Reserved types. Computing them needs storefront traffic and checkout
	// funnel data, which the mirrored schema does not carry. The engine
	// never emits them; the enum keeps API consumers forward compatible.
	InsightTypeTrafficSalesMismatch InsightType = "traffic_sales_mismatch"
	InsightTypeCheckoutDropoff      InsightType = "checkout_dropoff"
)

// IsValid returns true if the insight type is a known value
func (t InsightType) IsValid() bool {
	switch t {
	case InsightTypeUnderstockedWinner, InsightTypeOverstockSlowMover,
		InsightTypeCouponCannibalization, InsightTypeTrendDetection,
		InsightTypePricingOpportunity, InsightTypeInventoryAlert,
		InsightTypeTrafficSalesMismatch, InsightTypeCheckoutDropoff:
		return true
	}
	return false
}

// RequiresTrafficData returns true for reserved types the engine cannot
// compute from mirrored commerce data alone
func (t InsightType) RequiresTrafficData() bool {
	return t == InsightTypeTrafficSalesMismatch || t == InsightTypeCheckoutDropoff
}

// String returns the string representation
func (t InsightType) String() string {
	return string(t)
}

// InsightSeverity ranks how urgently an insight needs attention
type InsightSeverity string

const (
	SeverityCritical InsightSeverity = "critical"
	SeverityHigh     InsightSeverity = "high"
	SeverityMedium   InsightSeverity = "medium"
	SeverityLow      InsightSeverity = "low"
)

// IsValid returns true if the severity is a known value
func (s InsightSeverity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// String returns the string representation
func (s InsightSeverity) String() string {
	return string(s)
}

// Payload holds the exact numbers an insight's claim is based on,
// serialized as JSONB
type Payload map[string]any

// Value implements driver.Valuer for database storage
func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		p = Payload{}
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for database retrieval
func (p *Payload) Scan(value any) error {
	if value == nil {
		*p = Payload{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Payload", value)
	}

	if len(data) == 0 || string(data) == "null" {
		*p = Payload{}
		return nil
	}

	return json.Unmarshal(data, p)
}

// Draft carries the computed content of one insight candidate. The engine
// produces drafts; persistence decides create-or-refresh using the open
// identity (tenant, type, subject).
type Draft struct {
	Type           InsightType
	Severity       InsightSeverity
	SubjectID      string // Upstream entity key, empty for tenant-scoped insights
	Title          string
	ActionSummary  string
	ExpectedUplift string
	Confidence     float64
	Payload        Payload
	AdminDeepLink  string
	TTL            time.Duration // Zero means the insight does not expire
}

// Validate validates the draft content
func (d *Draft) Validate() error {
	if !d.Type.IsValid() {
		return shared.NewDomainError("INVALID_INSIGHT_TYPE", "Unknown insight type")
	}
	if !d.Severity.IsValid() {
		return shared.NewDomainError("INVALID_SEVERITY", "Unknown insight severity")
	}
	if d.Title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Insight title cannot be empty")
	}
	if d.ActionSummary == "" {
		return shared.NewDomainError("INVALID_ACTION", "Insight action summary cannot be empty")
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return shared.NewDomainError("INVALID_CONFIDENCE", "Confidence must be between 0 and 1")
	}
	return nil
}

// Insight is one derived, actionable finding for a shop. Rows are
// append-only facts: dismissal and actioning are soft flags, never deletes.
type Insight struct {
	shared.TenantAggregateRoot
	Type           InsightType     `gorm:"type:varchar(50);not null;index"`
	Severity       InsightSeverity `gorm:"type:varchar(20);not null;default:'medium'"`
	SubjectID      string          `gorm:"type:varchar(64);not null;default:''"`
	Title          string          `gorm:"type:varchar(255);not null"`
	ActionSummary  string          `gorm:"type:text;not null"`
	ExpectedUplift string          `gorm:"type:varchar(100)"`
	Confidence     float64         `gorm:"not null;default:0.8"`
	Payload        Payload         `gorm:"type:jsonb;not null;default:'{}'"`
	AdminDeepLink  string          `gorm:"type:text"`
	DismissedAt    *time.Time
	ActionedAt     *time.Time
	ExpiresAt      *time.Time
}

// TableName returns the table name for GORM
func (Insight) TableName() string {
	return "insights"
}

// NewInsight creates an insight from a validated draft
func NewInsight(tenantID uuid.UUID, draft Draft) (*Insight, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	ins := &Insight{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                draft.Type,
		Severity:            draft.Severity,
		SubjectID:           draft.SubjectID,
		Title:               draft.Title,
		ActionSummary:       draft.ActionSummary,
		ExpectedUplift:      draft.ExpectedUplift,
		Confidence:          draft.Confidence,
		Payload:             draft.Payload,
		AdminDeepLink:       draft.AdminDeepLink,
	}
	if ins.Payload == nil {
		ins.Payload = Payload{}
	}
	if draft.TTL > 0 {
		expires := time.Now().Add(draft.TTL)
		ins.ExpiresAt = &expires
	}

	return ins, nil
}

// Refresh replaces the content of an open insight with a newer computation
// of the same (tenant, type, subject). Identity and creation time survive;
// a re-run never grows a second open row.
func (i *Insight) Refresh(draft Draft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	if draft.Type != i.Type || draft.SubjectID != i.SubjectID {
		return shared.NewDomainError("SUBJECT_MISMATCH", "Draft belongs to a different insight identity")
	}
	if i.DismissedAt != nil {
		return shared.ErrInvalidState
	}

	i.Severity = draft.Severity
	i.Title = draft.Title
	i.ActionSummary = draft.ActionSummary
	i.ExpectedUplift = draft.ExpectedUplift
	i.Confidence = draft.Confidence
	i.Payload = draft.Payload
	i.AdminDeepLink = draft.AdminDeepLink
	if draft.TTL > 0 {
		expires := time.Now().Add(draft.TTL)
		i.ExpiresAt = &expires
	} else {
		i.ExpiresAt = nil
	}
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// Dismiss hides the insight from the active set. Idempotent.
func (i *Insight) Dismiss() {
	if i.DismissedAt != nil {
		return
	}
	now := time.Now()
	i.DismissedAt = &now
	i.UpdatedAt = now
	i.IncrementVersion()
}

// MarkActioned records that the merchant acted on the insight. Idempotent.
func (i *Insight) MarkActioned() {
	if i.ActionedAt != nil {
		return
	}
	now := time.Now()
	i.ActionedAt = &now
	i.UpdatedAt = now
	i.IncrementVersion()
}

// IsOpen returns true while the insight has not been dismissed
func (i *Insight) IsOpen() bool {
	return i.DismissedAt == nil
}

// IsExpired returns true once the expiry instant has passed
func (i *Insight) IsExpired() bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(time.Now())
}

// IsActive returns true while the insight is neither dismissed nor expired
func (i *Insight) IsActive() bool {
	return i.IsOpen() && !i.IsExpired()
}
