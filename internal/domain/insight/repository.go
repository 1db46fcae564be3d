package insight

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows insight listings
type Filter struct {
	Types      []InsightType
	Severities []InsightSeverity
	Page       int
	PageSize   int
}

// Normalize applies pagination defaults
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

// Offset returns the row offset for the normalized filter
func (f *Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Stats aggregates the active insight set of a tenant
type Stats struct {
	Total      int64                     `json:"total"`
	BySeverity map[InsightSeverity]int64 `json:"by_severity"`
	ByType     map[InsightType]int64     `json:"by_type"`
}

// InsightRepository persists derived insights
type InsightRepository interface {
	// FindByID finds an insight by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Insight, error)

	// FindOpen finds the single open (non-dismissed) insight of an identity,
	// or shared.ErrNotFound
	FindOpen(ctx context.Context, tenantID uuid.UUID, insightType InsightType, subjectID string) (*Insight, error)

	// ListActive lists non-dismissed, non-expired insights of a tenant,
	// newest first, matching the filter
	ListActive(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Insight, error)

	// CountActive counts the insights ListActive would return across all pages
	CountActive(ctx context.Context, tenantID uuid.UUID, filter Filter) (int64, error)

	// Save creates or updates an insight
	Save(ctx context.Context, ins *Insight) error

	// DeleteByTenant removes all insights of a tenant and reports how many
	// were purged
	DeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// StatsByTenant aggregates the active set by severity and type
	StatsByTenant(ctx context.Context, tenantID uuid.UUID) (*Stats, error)
}
