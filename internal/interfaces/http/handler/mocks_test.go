package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ecomdash/backend/internal/domain/catalog"
	"github.com/ecomdash/backend/internal/domain/insight"
	"github.com/ecomdash/backend/internal/domain/integration"
	"github.com/ecomdash/backend/internal/domain/merchant"
	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/ecomdash/backend/internal/domain/trade"
)

// MockShopRepository implements merchant.ShopRepository for testing
type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*merchant.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Shop), args.Error(1)
}

func (m *MockShopRepository) FindByDomain(ctx context.Context, domain string) (*merchant.Shop, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*merchant.Shop), args.Error(1)
}

func (m *MockShopRepository) FindAll(ctx context.Context, filter shared.Filter) ([]merchant.Shop, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]merchant.Shop), args.Error(1)
}

func (m *MockShopRepository) FindByStatus(ctx context.Context, status merchant.ShopStatus) ([]merchant.Shop, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]merchant.Shop), args.Error(1)
}

func (m *MockShopRepository) FindActive(ctx context.Context) ([]merchant.Shop, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]merchant.Shop), args.Error(1)
}

func (m *MockShopRepository) FindSyncable(ctx context.Context, resource merchant.SyncResource, limit int) ([]merchant.Shop, error) {
	args := m.Called(ctx, resource, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]merchant.Shop), args.Error(1)
}

func (m *MockShopRepository) Save(ctx context.Context, shop *merchant.Shop) error {
	args := m.Called(ctx, shop)
	return args.Error(0)
}

func (m *MockShopRepository) UpdateSyncState(ctx context.Context, shopID uuid.UUID, resource merchant.SyncResource, state merchant.SyncState) error {
	args := m.Called(ctx, shopID, resource, state)
	return args.Error(0)
}

func (m *MockShopRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockShopRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShopRepository) CountByStatus(ctx context.Context, status merchant.ShopStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShopRepository) ExistsByDomain(ctx context.Context, domain string) (bool, error) {
	args := m.Called(ctx, domain)
	return args.Bool(0), args.Error(1)
}

// MockProductRepository implements catalog.ProductRepository for testing
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByUpstreamID(ctx context.Context, tenantID uuid.UUID, upstreamID string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, upstreamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) UpsertBatch(ctx context.Context, products []*catalog.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteByUpstreamID(ctx context.Context, tenantID uuid.UUID, upstreamID string) error {
	args := m.Called(ctx, tenantID, upstreamID)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) LowStock(ctx context.Context, tenantID uuid.UUID, max int64) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, max)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

// MockOrderRepository implements trade.OrderRepository for testing
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUpstreamID(ctx context.Context, tenantID uuid.UUID, upstreamID string) (*trade.Order, error) {
	args := m.Called(ctx, tenantID, upstreamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.Order, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) ListSince(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]trade.Order, error) {
	args := m.Called(ctx, tenantID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) UpsertBatch(ctx context.Context, orders []*trade.Order) error {
	args := m.Called(ctx, orders)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) SalesTotals(ctx context.Context, tenantID uuid.UUID, since time.Time) (trade.SalesTotals, error) {
	args := m.Called(ctx, tenantID, since)
	return args.Get(0).(trade.SalesTotals), args.Error(1)
}

// MockInsightRepository implements insight.InsightRepository for testing
type MockInsightRepository struct {
	mock.Mock
}

func (m *MockInsightRepository) FindByID(ctx context.Context, id uuid.UUID) (*insight.Insight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*insight.Insight), args.Error(1)
}

func (m *MockInsightRepository) FindOpen(ctx context.Context, tenantID uuid.UUID, insightType insight.InsightType, subjectID string) (*insight.Insight, error) {
	args := m.Called(ctx, tenantID, insightType, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*insight.Insight), args.Error(1)
}

func (m *MockInsightRepository) ListActive(ctx context.Context, tenantID uuid.UUID, filter insight.Filter) ([]insight.Insight, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]insight.Insight), args.Error(1)
}

func (m *MockInsightRepository) CountActive(ctx context.Context, tenantID uuid.UUID, filter insight.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInsightRepository) Save(ctx context.Context, ins *insight.Insight) error {
	args := m.Called(ctx, ins)
	return args.Error(0)
}

func (m *MockInsightRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInsightRepository) StatsByTenant(ctx context.Context, tenantID uuid.UUID) (*insight.Stats, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*insight.Stats), args.Error(1)
}

// MockWebhookEventRepository implements integration.WebhookEventRepository for testing
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) Save(ctx context.Context, event *integration.WebhookEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) ExistsByFingerprint(ctx context.Context, tenantID uuid.UUID, fingerprint string) (bool, error) {
	args := m.Called(ctx, tenantID, fingerprint)
	return args.Bool(0), args.Error(1)
}

func (m *MockWebhookEventRepository) FindByFingerprint(ctx context.Context, tenantID uuid.UUID, fingerprint string) (*integration.WebhookEvent, error) {
	args := m.Called(ctx, tenantID, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.WebhookEvent), args.Error(1)
}

func (m *MockWebhookEventRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]integration.WebhookEvent, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.WebhookEvent), args.Error(1)
}

func (m *MockWebhookEventRepository) DeleteByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWebhookEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher implements shared.EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// passthroughTx runs the function without any real transaction
type passthroughTx struct{}

func (passthroughTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// plainSealer stores tokens with a marker prefix instead of real encryption
type plainSealer struct{}

func (plainSealer) Seal(plaintext string) (string, error) {
	return "sealed:" + plaintext, nil
}
