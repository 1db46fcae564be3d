package insight

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecomdash/backend/internal/domain/insight"
	"github.com/ecomdash/backend/internal/domain/shared"
)

// ListQuery narrows an insight listing
type ListQuery struct {
	Types      []string
	Severities []string
	Page       int
	PageSize   int
}

// ToFilter validates the query and converts it to a repository filter
func (q *ListQuery) ToFilter() (insight.Filter, error) {
	filter := insight.Filter{Page: q.Page, PageSize: q.PageSize}
	for _, t := range q.Types {
		it := insight.InsightType(t)
		if !it.IsValid() {
			return filter, shared.NewDomainError("INVALID_INSIGHT_TYPE", "Unknown insight type: "+t)
		}
		filter.Types = append(filter.Types, it)
	}
	for _, s := range q.Severities {
		sev := insight.InsightSeverity(s)
		if !sev.IsValid() {
			return filter, shared.NewDomainError("INVALID_SEVERITY", "Unknown insight severity: "+s)
		}
		filter.Severities = append(filter.Severities, sev)
	}
	filter.Normalize()
	return filter, nil
}

// Response is the API shape of one insight
type Response struct {
	ID             uuid.UUID       `json:"id"`
	Type           string          `json:"type"`
	Severity       string          `json:"severity"`
	SubjectID      string          `json:"subject_id,omitempty"`
	Title          string          `json:"title"`
	ActionSummary  string          `json:"action_summary"`
	ExpectedUplift string          `json:"expected_uplift,omitempty"`
	Confidence     float64         `json:"confidence"`
	Payload        insight.Payload `json:"payload"`
	AdminDeepLink  string          `json:"admin_deep_link,omitempty"`
	ActionedAt     *time.Time      `json:"actioned_at,omitempty"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToResponse converts a domain insight to its API shape
func ToResponse(ins *insight.Insight) *Response {
	return &Response{
		ID:             ins.ID,
		Type:           ins.Type.String(),
		Severity:       ins.Severity.String(),
		SubjectID:      ins.SubjectID,
		Title:          ins.Title,
		ActionSummary:  ins.ActionSummary,
		ExpectedUplift: ins.ExpectedUplift,
		Confidence:     ins.Confidence,
		Payload:        ins.Payload,
		AdminDeepLink:  ins.AdminDeepLink,
		ActionedAt:     ins.ActionedAt,
		ExpiresAt:      ins.ExpiresAt,
		CreatedAt:      ins.CreatedAt,
		UpdatedAt:      ins.UpdatedAt,
	}
}

// RefreshResult reports what one engine run changed
type RefreshResult struct {
	Computed  int `json:"computed"`
	Created   int `json:"created"`
	Refreshed int `json:"refreshed"`
}
