package insight

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecomdash/backend/internal/domain/catalog"
	"github.com/ecomdash/backend/internal/domain/insight"
	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/ecomdash/backend/internal/domain/trade"
)

// Service computes, stores and serves insights for a tenant
type Service struct {
	products catalog.ProductRepository
	orders   trade.OrderRepository
	insights insight.InsightRepository
	engine   *Engine
	logger   *zap.Logger
}

// NewService creates an insight service
func NewService(
	products catalog.ProductRepository,
	orders trade.OrderRepository,
	insights insight.InsightRepository,
	engine *Engine,
	logger *zap.Logger,
) *Service {
	return &Service{
		products: products,
		orders:   orders,
		insights: insights,
		engine:   engine,
		logger:   logger,
	}
}

// Refresh recomputes a tenant's insights from current mirror state. Each
// draft lands on the existing open insight of its (type, subject) identity or
// opens a new one; a re-run on unchanged data changes numbers, never row
// count.
func (s *Service) Refresh(ctx context.Context, tenantID uuid.UUID) (*RefreshResult, error) {
	now := time.Now()

	products, err := s.products.ListByTenant(ctx, tenantID, shared.Filter{})
	if err != nil {
		return nil, err
	}
	since := now.AddDate(0, 0, -s.engine.config.WindowDays)
	orders, err := s.orders.ListSince(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}

	drafts := s.engine.Compute(tenantID, products, orders, now)
	result := &RefreshResult{Computed: len(drafts)}

	for _, draft := range drafts {
		existing, err := s.insights.FindOpen(ctx, tenantID, draft.Type, draft.SubjectID)
		switch {
		case err == nil:
			if err := existing.Refresh(draft); err != nil {
				s.logger.Warn("Skipping insight refresh",
					zap.String("tenant_id", tenantID.String()),
					zap.String("type", draft.Type.String()),
					zap.String("subject_id", draft.SubjectID),
					zap.Error(err),
				)
				continue
			}
			if err := s.insights.Save(ctx, existing); err != nil {
				return result, err
			}
			result.Refreshed++
		case errors.Is(err, shared.ErrNotFound):
			created, err := insight.NewInsight(tenantID, draft)
			if err != nil {
				s.logger.Warn("Skipping invalid insight draft",
					zap.String("tenant_id", tenantID.String()),
					zap.String("type", draft.Type.String()),
					zap.Error(err),
				)
				continue
			}
			if err := s.insights.Save(ctx, created); err != nil {
				return result, err
			}
			result.Created++
		default:
			return result, err
		}
	}

	s.logger.Info("Insights refreshed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("computed", result.Computed),
		zap.Int("created", result.Created),
		zap.Int("refreshed", result.Refreshed),
	)

	return result, nil
}

// List returns the tenant's active insights matching the query, newest first
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, query ListQuery) (*shared.Paginated[Response], error) {
	filter, err := query.ToFilter()
	if err != nil {
		return nil, err
	}

	rows, err := s.insights.ListActive(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.insights.CountActive(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]Response, len(rows))
	for i := range rows {
		responses[i] = *ToResponse(&rows[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns one insight of the tenant
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*Response, error) {
	ins, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToResponse(ins), nil
}

// Dismiss hides an insight from the active set. Idempotent.
func (s *Service) Dismiss(ctx context.Context, tenantID, id uuid.UUID) error {
	ins, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if ins.DismissedAt != nil {
		return nil
	}
	ins.Dismiss()
	return s.insights.Save(ctx, ins)
}

// MarkActioned records that the merchant acted on an insight. Idempotent.
func (s *Service) MarkActioned(ctx context.Context, tenantID, id uuid.UUID) error {
	ins, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if ins.ActionedAt != nil {
		return nil
	}
	ins.MarkActioned()
	return s.insights.Save(ctx, ins)
}

// Stats aggregates the tenant's active insight set
func (s *Service) Stats(ctx context.Context, tenantID uuid.UUID) (*insight.Stats, error) {
	return s.insights.StatsByTenant(ctx, tenantID)
}

// find loads an insight and verifies it belongs to the tenant. Another
// tenant's insight is reported as not found, never as forbidden.
func (s *Service) find(ctx context.Context, tenantID, id uuid.UUID) (*insight.Insight, error) {
	ins, err := s.insights.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ins.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return ins, nil
}
