package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/ecomdash/backend/internal/domain/insight"
	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInsightRepository implements InsightRepository using GORM
type GormInsightRepository struct {
	db *gorm.DB
}

// NewGormInsightRepository creates a new GormInsightRepository
func NewGormInsightRepository(db *gorm.DB) *GormInsightRepository {
	return &GormInsightRepository{db: db}
}

// FindByID finds an insight by its ID
func (r *GormInsightRepository) FindByID(ctx context.Context, id uuid.UUID) (*insight.Insight, error) {
	var ins insight.Insight
	if err := dbConn(ctx, r.db).First(&ins, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ins, nil
}

// FindOpen finds the open insight of an identity. Dismissed rows fall out
// of the identity so the same finding can resurface later as a new row.
func (r *GormInsightRepository) FindOpen(ctx context.Context, tenantID uuid.UUID, insightType insight.InsightType, subjectID string) (*insight.Insight, error) {
	var ins insight.Insight
	if err := dbConn(ctx, r.db).
		Where("tenant_id = ? AND type = ? AND subject_id = ?", tenantID, insightType, subjectID).
		Where("dismissed_at IS NULL").
		Order("created_at DESC").
		First(&ins).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ins, nil
}

// ListActive lists non-dismissed, non-expired insights, newest first
func (r *GormInsightRepository) ListActive(ctx context.Context, tenantID uuid.UUID, filter insight.Filter) ([]insight.Insight, error) {
	filter.Normalize()

	var insights []insight.Insight
	query := r.activeQuery(ctx, tenantID, filter).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize)

	if err := query.Find(&insights).Error; err != nil {
		return nil, err
	}
	return insights, nil
}

// CountActive counts the rows ListActive would return across all pages
func (r *GormInsightRepository) CountActive(ctx context.Context, tenantID uuid.UUID, filter insight.Filter) (int64, error) {
	var count int64
	if err := r.activeQuery(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an insight
func (r *GormInsightRepository) Save(ctx context.Context, ins *insight.Insight) error {
	return dbConn(ctx, r.db).Save(ins).Error
}

// DeleteByTenant removes all insights of a tenant
func (r *GormInsightRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	result := dbConn(ctx, r.db).Delete(&insight.Insight{}, "tenant_id = ?", tenantID)
	return result.RowsAffected, result.Error
}

// StatsByTenant aggregates the active set by severity and type
func (r *GormInsightRepository) StatsByTenant(ctx context.Context, tenantID uuid.UUID) (*insight.Stats, error) {
	stats := &insight.Stats{
		BySeverity: make(map[insight.InsightSeverity]int64),
		ByType:     make(map[insight.InsightType]int64),
	}

	var severityRows []struct {
		Severity insight.InsightSeverity
		Count    int64
	}
	if err := r.activeQuery(ctx, tenantID, insight.Filter{}).
		Select("severity, COUNT(*) AS count").
		Group("severity").
		Scan(&severityRows).Error; err != nil {
		return nil, err
	}
	for _, row := range severityRows {
		stats.BySeverity[row.Severity] = row.Count
		stats.Total += row.Count
	}

	var typeRows []struct {
		Type  insight.InsightType
		Count int64
	}
	if err := r.activeQuery(ctx, tenantID, insight.Filter{}).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&typeRows).Error; err != nil {
		return nil, err
	}
	for _, row := range typeRows {
		stats.ByType[row.Type] = row.Count
	}

	return stats, nil
}

// activeQuery builds the base query for the active insight set
func (r *GormInsightRepository) activeQuery(ctx context.Context, tenantID uuid.UUID, filter insight.Filter) *gorm.DB {
	query := dbConn(ctx, r.db).
		Model(&insight.Insight{}).
		Where("tenant_id = ?", tenantID).
		Where("dismissed_at IS NULL").
		Where("expires_at IS NULL OR expires_at > ?", time.Now().UTC())

	if len(filter.Types) > 0 {
		query = query.Where("type IN ?", filter.Types)
	}
	if len(filter.Severities) > 0 {
		query = query.Where("severity IN ?", filter.Severities)
	}

	return query
}

// Ensure GormInsightRepository implements InsightRepository
var _ insight.InsightRepository = (*GormInsightRepository)(nil)
