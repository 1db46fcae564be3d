package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks sync throughput, webhook ingestion and insight
// generation.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	syncPagesTotal   *Counter
	syncRecordsTotal *Counter
	syncRunsTotal    *Counter
	syncRunDuration  *Histogram
	webhooksTotal    *Counter
	insightsTotal    *Counter

	lowStockGauge    *Gauge
	openInsightGauge *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	mirrorProvider MirrorMetricsProvider
}

// MirrorMetricsProvider answers point-in-time questions about a tenant's
// mirrored data for periodic gauge collection
type MirrorMetricsProvider interface {
	// LowStockCount returns how many active tracked products sit at or
	// below the low inventory threshold
	LowStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// OpenInsightCount returns how many insights are currently surfaced
	OpenInsightCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// TenantProvider provides tenant IDs for periodic metrics collection
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// BusinessMetricsConfig holds configuration for business metrics
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	MirrorProvider  MirrorMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		mirrorProvider: cfg.MirrorProvider,
	}

	var err error

	bm.syncPagesTotal, err = NewCounter(
		cfg.Meter,
		"sync_pages_fetched_total",
		"Total upstream pages fetched by sync runs",
		"{pages}",
	)
	if err != nil {
		return nil, err
	}

	bm.syncRecordsTotal, err = NewCounter(
		cfg.Meter,
		"sync_records_upserted_total",
		"Total records upserted into the local mirror",
		"{records}",
	)
	if err != nil {
		return nil, err
	}

	bm.syncRunsTotal, err = NewCounter(
		cfg.Meter,
		"sync_runs_total",
		"Total sync runs by terminal status",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	bm.syncRunDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "sync_run_duration_seconds",
		Description: "Wall-clock duration of sync runs",
		Unit:        "s",
		Boundaries:  []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})
	if err != nil {
		return nil, err
	}

	bm.webhooksTotal, err = NewCounter(
		cfg.Meter,
		"webhook_deliveries_total",
		"Total webhook deliveries by topic and outcome",
		"{deliveries}",
	)
	if err != nil {
		return nil, err
	}

	bm.insightsTotal, err = NewCounter(
		cfg.Meter,
		"insights_generated_total",
		"Total insights created or refreshed",
		"{insights}",
	)
	if err != nil {
		return nil, err
	}

	bm.lowStockGauge, err = NewGauge(
		cfg.Meter,
		"catalog_low_stock_count",
		"Number of mirrored products at or below the low inventory threshold",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	bm.openInsightGauge, err = NewGauge(
		cfg.Meter,
		"insight_open_count",
		"Number of currently surfaced insights",
		"{insights}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Sync Metrics
// =============================================================================

// RecordSyncPage records one fetched page and the records it carried
func (bm *BusinessMetrics) RecordSyncPage(ctx context.Context, tenantID uuid.UUID, resource string, records int64) {
	attrs := []attribute.KeyValue{
		AttrTenantID.String(tenantID.String()),
		AttrSyncResource.String(resource),
	}
	bm.syncPagesTotal.Inc(ctx, attrs...)
	bm.syncRecordsTotal.Add(ctx, records, attrs...)
}

// RecordSyncRun records a finished run with its terminal status
func (bm *BusinessMetrics) RecordSyncRun(ctx context.Context, tenantID uuid.UUID, resource, status string, duration time.Duration) {
	bm.syncRunsTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrSyncResource.String(resource),
		AttrSyncStatus.String(status),
	)
	bm.syncRunDuration.RecordDuration(ctx, duration,
		AttrSyncResource.String(resource),
		AttrSyncStatus.String(status),
	)
}

// =============================================================================
// Webhook Metrics
// =============================================================================

// RecordWebhook records one delivery. Outcome is accepted, rejected or
// duplicate; topic may be empty for rejected deliveries.
func (bm *BusinessMetrics) RecordWebhook(ctx context.Context, topic, outcome string) {
	bm.webhooksTotal.Inc(ctx,
		AttrWebhookTopic.String(topic),
		AttrWebhookOutcome.String(outcome),
	)
}

// =============================================================================
// Insight Metrics
// =============================================================================

// RecordInsightsGenerated records insights produced by one refresh pass
func (bm *BusinessMetrics) RecordInsightsGenerated(ctx context.Context, tenantID uuid.UUID, insightType string, count int64) {
	if count == 0 {
		return
	}
	bm.insightsTotal.Add(ctx, count,
		AttrTenantID.String(tenantID.String()),
		AttrInsightType.String(insightType),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// Non-blocking; use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectMirrorMetrics(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectMirrorMetrics(ctx, tenantProvider)
		}
	}
}

func (bm *BusinessMetrics) collectMirrorMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if bm.mirrorProvider == nil {
		bm.logger.Debug("No mirror provider configured, skipping gauge collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		bm.collectTenantMirrorMetrics(ctx, tenantID)
	}
}

func (bm *BusinessMetrics) collectTenantMirrorMetrics(ctx context.Context, tenantID uuid.UUID) {
	lowStock, err := bm.mirrorProvider.LowStockCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get low stock count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.lowStockGauge.Record(ctx, lowStock, AttrTenantID.String(tenantID.String()))
	}

	openInsights, err := bm.mirrorProvider.OpenInsightCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get open insight count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.openInsightGauge.Record(ctx, openInsights, AttrTenantID.String(tenantID.String()))
	}
}

// Stop stops the periodic collection
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// MetricsError represents an error in metrics setup or recording.
type MetricsError struct {
	Op  string
	Err string
}

// Error implements the error interface.
func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}
