package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/ecomdash/backend/internal/infrastructure/telemetry"
)

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func newTestMetrics(t *testing.T) *telemetry.BusinessMetrics {
	t.Helper()
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	return bm
}

func TestBusinessMetrics_RecordSyncPage(t *testing.T) {
	bm := newTestMetrics(t)
	ctx := context.Background()
	tenantID := uuid.New()

	bm.RecordSyncPage(ctx, tenantID, "products", 50)
	bm.RecordSyncPage(ctx, tenantID, "orders", 12)
}

func TestBusinessMetrics_RecordSyncRun(t *testing.T) {
	bm := newTestMetrics(t)
	ctx := context.Background()
	tenantID := uuid.New()

	bm.RecordSyncRun(ctx, tenantID, "products", "completed", 42*time.Second)
	bm.RecordSyncRun(ctx, tenantID, "orders", "failed", 3*time.Second)
}

func TestBusinessMetrics_RecordWebhook(t *testing.T) {
	bm := newTestMetrics(t)
	ctx := context.Background()

	bm.RecordWebhook(ctx, "orders/create", "accepted")
	bm.RecordWebhook(ctx, "orders/create", "duplicate")
	bm.RecordWebhook(ctx, "", "rejected")
}

func TestBusinessMetrics_RecordInsightsGenerated(t *testing.T) {
	bm := newTestMetrics(t)
	ctx := context.Background()
	tenantID := uuid.New()

	bm.RecordInsightsGenerated(ctx, tenantID, "understocked_winner", 3)
	// Zero counts are not recorded.
	bm.RecordInsightsGenerated(ctx, tenantID, "overstock_risk", 0)
}

// ============================================================================
// Periodic Collection Tests
// ============================================================================

type mockTenantProvider struct {
	tenantIDs []uuid.UUID
}

func (m *mockTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.tenantIDs, nil
}

type mockMirrorProvider struct {
	lowStock     int64
	openInsights int64
}

func (m *mockMirrorProvider) LowStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return m.lowStock, nil
}

func (m *mockMirrorProvider) OpenInsightCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return m.openInsights, nil
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:          meter,
		Logger:         zap.NewNop(),
		MirrorProvider: &mockMirrorProvider{lowStock: 5, openInsights: 9},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tenantProvider := &mockTenantProvider{
		tenantIDs: []uuid.UUID{uuid.New()},
	}

	// Start periodic collection with short interval for testing
	bm.StartPeriodicCollection(ctx, tenantProvider, 100*time.Millisecond)

	// Wait for at least one collection cycle
	time.Sleep(150 * time.Millisecond)

	bm.Stop()
}

func TestBusinessMetrics_PeriodicCollection_NoProvider(t *testing.T) {
	bm := newTestMetrics(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tenantProvider := &mockTenantProvider{
		tenantIDs: []uuid.UUID{uuid.New()},
	}

	// Should not panic with no mirror provider
	bm.StartPeriodicCollection(ctx, tenantProvider, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	bm.Stop()
}

func TestBusinessMetrics_Stop_Idempotent(t *testing.T) {
	bm := newTestMetrics(t)

	// Calling Stop multiple times should not panic
	bm.Stop()
	bm.Stop()
	bm.Stop()
}

func TestBusinessMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	bm := newTestMetrics(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tenantProvider := &mockTenantProvider{
		tenantIDs: []uuid.UUID{},
	}

	// Calling StartPeriodicCollection multiple times should only start once
	bm.StartPeriodicCollection(ctx, tenantProvider, time.Hour)
	bm.StartPeriodicCollection(ctx, tenantProvider, time.Minute)
	bm.StartPeriodicCollection(ctx, tenantProvider, time.Second)

	bm.Stop()
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}
