package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinsight "github.com/ecomdash/backend/internal/application/insight"
	appmerchant "github.com/ecomdash/backend/internal/application/merchant"
	"github.com/ecomdash/backend/internal/domain/merchant"
	"github.com/ecomdash/backend/internal/domain/shared"
)

// InsightRefresher recomputes a tenant's insights from its mirrored data
type InsightRefresher interface {
	Refresh(ctx context.Context, tenantID uuid.UUID) (*appinsight.RefreshResult, error)
}

// InsightRefreshHandler regenerates insights after a sync run lands fresh
// data. Failures are returned so outbox-delivered events retry.
type InsightRefreshHandler struct {
	insights InsightRefresher
	logger   *zap.Logger
}

// NewInsightRefreshHandler creates the handler
func NewInsightRefreshHandler(insights InsightRefresher, logger *zap.Logger) *InsightRefreshHandler {
	return &InsightRefreshHandler{insights: insights, logger: logger}
}

// Handle processes a sync completion
func (h *InsightRefreshHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*merchant.ShopSyncCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}

	result, err := h.insights.Refresh(ctx, completed.TenantID())
	if err != nil {
		return fmt.Errorf("failed to refresh insights: %w", err)
	}

	h.logger.Info("insights refreshed after sync",
		zap.String("tenant_id", completed.TenantID().String()),
		zap.String("resource", completed.Resource.String()),
		zap.Int("computed", result.Computed),
		zap.Int("created", result.Created),
	)
	return nil
}

// EventTypes returns the handled event types
func (h *InsightRefreshHandler) EventTypes() []string {
	return []string{merchant.EventTypeShopSyncCompleted}
}

// TenantPurger removes a tenant's mirrored data
type TenantPurger interface {
	PurgeTenant(ctx context.Context, tenantID uuid.UUID) (*appmerchant.PurgeResult, error)
}

// TenantPurgeHandler purges mirrored data when a shop uninstalls. Webhook
// ingestion purges synchronously when it can; this handler drains the
// outbox entries queued when that purge failed.
type TenantPurgeHandler struct {
	purger TenantPurger
	logger *zap.Logger
}

// NewTenantPurgeHandler creates the handler
func NewTenantPurgeHandler(purger TenantPurger, logger *zap.Logger) *TenantPurgeHandler {
	return &TenantPurgeHandler{purger: purger, logger: logger}
}

// Handle processes an uninstall
func (h *TenantPurgeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	uninstalled, ok := event.(*merchant.ShopUninstalledEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}

	result, err := h.purger.PurgeTenant(ctx, uninstalled.TenantID())
	if err != nil {
		return fmt.Errorf("failed to purge tenant: %w", err)
	}

	h.logger.Info("tenant data purged after uninstall",
		zap.String("tenant_id", uninstalled.TenantID().String()),
		zap.String("domain", uninstalled.Domain),
		zap.Int64("products", result.Products),
		zap.Int64("orders", result.Orders),
		zap.Int64("insights", result.Insights),
	)
	return nil
}

// EventTypes returns the handled event types
func (h *TenantPurgeHandler) EventTypes() []string {
	return []string{merchant.EventTypeShopUninstalled}
}

// ShopEraser deletes a shop and every row keyed to its tenant
type ShopEraser interface {
	Delete(ctx context.Context, id uuid.UUID) (*appmerchant.PurgeResult, error)
}

// TenantEraseHandler performs the irreversible cascade a redact delivery
// demands: mirrors, insights, ledger and the shop row itself. Ingestion only
// queues the erase; the cascade runs here, after the delivery's own ledger
// insert has committed.
type TenantEraseHandler struct {
	eraser ShopEraser
	logger *zap.Logger
}

// NewTenantEraseHandler creates the handler
func NewTenantEraseHandler(eraser ShopEraser, logger *zap.Logger) *TenantEraseHandler {
	return &TenantEraseHandler{eraser: eraser, logger: logger}
}

// Handle processes a redact demand. A missing shop means a prior delivery
// already erased it.
func (h *TenantEraseHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	redacted, ok := event.(*merchant.ShopDataRedactedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}

	result, err := h.eraser.Delete(ctx, redacted.TenantID())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Info("shop already erased",
				zap.String("tenant_id", redacted.TenantID().String()),
				zap.String("domain", redacted.Domain),
			)
			return nil
		}
		return fmt.Errorf("failed to erase tenant: %w", err)
	}

	h.logger.Info("tenant erased after redact",
		zap.String("tenant_id", redacted.TenantID().String()),
		zap.String("domain", redacted.Domain),
		zap.Int64("products", result.Products),
		zap.Int64("orders", result.Orders),
		zap.Int64("insights", result.Insights),
	)
	return nil
}

// EventTypes returns the handled event types
func (h *TenantEraseHandler) EventTypes() []string {
	return []string{merchant.EventTypeShopDataRedacted}
}
