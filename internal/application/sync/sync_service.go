// Package sync implements the incremental, cursor-paginated pull engine that
// mirrors upstream catalog and order data into local storage.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecomdash/backend/internal/domain/catalog"
	"github.com/ecomdash/backend/internal/domain/integration"
	"github.com/ecomdash/backend/internal/domain/merchant"
	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/ecomdash/backend/internal/domain/trade"
)

// Config holds sync engine tuning
type Config struct {
	PageSize         int
	OrdersWindowDays int
	// Lease is the age after which a persisted syncing marker left by a
	// dead run is reclaimable.
	Lease time.Duration
}

// Validate validates the configuration and applies defaults
func (c *Config) Validate() error {
	if c.PageSize < 1 || c.PageSize > 250 {
		c.PageSize = 50
	}
	if c.OrdersWindowDays <= 0 {
		c.OrdersWindowDays = 90
	}
	if c.Lease <= 0 {
		c.Lease = 30 * time.Minute
	}
	return nil
}

// OrdersWindow returns the trailing order pull window
func (c *Config) OrdersWindow() time.Duration {
	return time.Duration(c.OrdersWindowDays) * 24 * time.Hour
}

// Service orchestrates full and incremental pulls. One active run per
// (shop, resource) pair: an in-process keyed lock covers this process, the
// persisted syncing marker covers restarts and siblings.
type Service struct {
	shops     merchant.ShopRepository
	products  catalog.ProductRepository
	orders    trade.OrderRepository
	clients   integration.ClientFactory
	publisher shared.EventPublisher
	config    Config
	logger    *zap.Logger

	queue JobQueue

	mu      sync.Mutex
	running map[string]bool
}

// NewService creates a sync service
func NewService(
	shops merchant.ShopRepository,
	products catalog.ProductRepository,
	orders trade.OrderRepository,
	clients integration.ClientFactory,
	publisher shared.EventPublisher,
	config Config,
	logger *zap.Logger,
) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		shops:     shops,
		products:  products,
		orders:    orders,
		clients:   clients,
		publisher: publisher,
		config:    config,
		logger:    logger,
		running:   make(map[string]bool),
	}, nil
}

// AttachQueue wires the background queue the trigger surface submits to.
// Called once at composition; the queue needs this service as its executor,
// so the two cannot be constructed in one step.
func (s *Service) AttachQueue(queue JobQueue) {
	s.queue = queue
}

// Trigger requests a sync and returns immediately. The actual work runs
// asynchronously; a pair already being synced is reported, not an error.
func (s *Service) Trigger(ctx context.Context, cmd TriggerCommand) (*TriggerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if s.queue == nil {
		return nil, shared.NewDomainError("SYNC_UNAVAILABLE", "Background sync workers are not running")
	}

	shop, err := s.shops.FindByID(ctx, cmd.ShopID)
	if err != nil {
		return nil, err
	}
	if !shop.IsActive() {
		return nil, shared.ErrInvalidState
	}

	state := shop.SyncStateFor(cmd.Resource)
	if state.InProgress() && !state.Stale(s.config.Lease) {
		return &TriggerResult{Accepted: false, Reason: "already in progress"}, nil
	}

	if err := s.queue.Submit(Job{ShopID: cmd.ShopID, Resource: cmd.Resource, Full: cmd.Full}); err != nil {
		return nil, err
	}

	return &TriggerResult{Accepted: true}, nil
}

// Status returns the sync state snapshot of a shop
func (s *Service) Status(ctx context.Context, shopID uuid.UUID) (*StatusResponse, error) {
	shop, err := s.shops.FindByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return ToStatusResponse(shop), nil
}

// Execute runs one sync job to completion. Implements the executor side of
// the background queue.
//
// The loop upserts each page before persisting the advanced cursor, strictly
// in that order: a crash between the two re-fetches the last page instead of
// skipping it, and the idempotent upsert absorbs the replay.
func (s *Service) Execute(ctx context.Context, job Job) (*RunResult, error) {
	key := job.ShopID.String() + "/" + job.Resource.String()
	if !s.acquire(key) {
		return nil, shared.ErrSyncInProgress
	}
	defer s.release(key)

	shop, err := s.shops.FindByID(ctx, job.ShopID)
	if err != nil {
		return nil, err
	}

	if err := shop.BeginSync(job.Resource, s.config.Lease); err != nil {
		return nil, err
	}
	if job.Full {
		shop.ResetCursor(job.Resource)
	}
	state := shop.SyncStateFor(job.Resource)
	// A fresh run anchors its lower-bound filter now; a resumed run keeps the
	// persisted anchor, because the stored cursor is only valid within the
	// exact query that minted it.
	if state.Cursor == "" {
		shop.AnchorWindow(job.Resource, s.windowStart(job, state))
	}
	if err := s.shops.UpdateSyncState(ctx, shop.ID, job.Resource, *state); err != nil {
		return nil, err
	}

	client, err := s.clients.ForShop(ctx, shop.Domain)
	if err != nil {
		return nil, s.fail(ctx, shop, job.Resource, err)
	}

	request := s.pageRequest(job, state)
	cursor := state.Cursor
	result := &RunResult{}

	for {
		// Cancellation is observed here, at the page boundary.
		if err := ctx.Err(); err != nil {
			return result, s.fail(ctx, shop, job.Resource, err)
		}

		request.Cursor = cursor
		page, err := client.FetchPage(ctx, request)
		if err != nil {
			return result, s.fail(ctx, shop, job.Resource, err)
		}

		upserted, err := s.upsertPage(ctx, shop.ID, job.Resource, page)
		if err != nil {
			return result, s.fail(ctx, shop, job.Resource, err)
		}
		result.Pages++
		result.Records += upserted

		if page.NextCursor != "" {
			cursor = page.NextCursor
			shop.AdvanceCursor(job.Resource, cursor)
			if err := s.shops.UpdateSyncState(ctx, shop.ID, job.Resource, *state); err != nil {
				return result, s.fail(ctx, shop, job.Resource, err)
			}
		} else if page.HasMore {
			// A page claiming more data without a cursor to reach it would
			// loop on the same page forever.
			return result, s.fail(ctx, shop, job.Resource,
				fmt.Errorf("%w: page reports more results but no next cursor", integration.ErrInvalidResponse))
		}

		if !page.HasMore {
			break
		}
	}

	shop.CompleteSync(job.Resource)
	if err := s.shops.UpdateSyncState(ctx, shop.ID, job.Resource, *state); err != nil {
		return result, err
	}
	s.publishEvents(ctx, shop)

	s.logger.Info("Sync run completed",
		zap.String("shop_domain", shop.Domain),
		zap.String("resource", job.Resource.String()),
		zap.Bool("full", job.Full),
		zap.Int("pages", result.Pages),
		zap.Int("records", result.Records),
	)

	return result, nil
}

// windowStart computes the lower-bound filter a fresh run anchors itself to.
// Incremental product pulls are narrowed to records modified since the last
// success; incremental order pulls are bounded to the trailing window to cap
// quota and storage. A full pull carries no bound.
func (s *Service) windowStart(job Job, state *merchant.SyncState) *time.Time {
	if job.Full {
		return nil
	}

	switch job.Resource {
	case merchant.SyncResourceProducts:
		return state.SyncedAt
	case merchant.SyncResourceOrders:
		since := time.Now().Add(-s.config.OrdersWindow())
		return &since
	}
	return nil
}

// pageRequest builds the base page request for a run from the anchored
// window, so a resumed run re-issues the exact query its cursor came from.
func (s *Service) pageRequest(job Job, state *merchant.SyncState) integration.PageRequest {
	request := integration.PageRequest{
		Resource: integration.ResourceKind(job.Resource),
		PageSize: s.config.PageSize,
	}

	switch job.Resource {
	case merchant.SyncResourceProducts:
		request.UpdatedSince = state.WindowStart
	case merchant.SyncResourceOrders:
		request.ProcessedSince = state.WindowStart
	}

	return request
}

// upsertPage converts a page's records and writes them in one batch
func (s *Service) upsertPage(ctx context.Context, tenantID uuid.UUID, resource merchant.SyncResource, page *integration.PageResult) (int, error) {
	switch resource {
	case merchant.SyncResourceProducts:
		rows, skipped := productRows(tenantID, page.Products)
		if skipped > 0 {
			s.logger.Warn("Skipped malformed upstream products",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("skipped", skipped),
			)
		}
		if len(rows) == 0 {
			return 0, nil
		}
		return len(rows), s.products.UpsertBatch(ctx, rows)
	case merchant.SyncResourceOrders:
		rows, skipped := orderRows(tenantID, page.Orders)
		if skipped > 0 {
			s.logger.Warn("Skipped malformed upstream orders",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("skipped", skipped),
			)
		}
		if len(rows) == 0 {
			return 0, nil
		}
		return len(rows), s.orders.UpsertBatch(ctx, rows)
	}
	return 0, shared.NewDomainError("INVALID_RESOURCE", "Unknown sync resource")
}

// fail transitions the resource to failed and persists the message. The
// cursor from already-committed pages is retained so the next run resumes.
func (s *Service) fail(ctx context.Context, shop *merchant.Shop, resource merchant.SyncResource, cause error) error {
	message := failureMessage(cause)
	shop.FailSync(resource, message)
	state := shop.SyncStateFor(resource)

	// Persisting the failure must survive the (possibly cancelled) run
	// context, otherwise the syncing marker leaks until the lease expires.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.shops.UpdateSyncState(persistCtx, shop.ID, resource, *state); err != nil {
		s.logger.Error("Failed to persist sync failure",
			zap.String("shop_domain", shop.Domain),
			zap.String("resource", resource.String()),
			zap.Error(err),
		)
	}

	s.logger.Warn("Sync run failed",
		zap.String("shop_domain", shop.Domain),
		zap.String("resource", resource.String()),
		zap.String("message", message),
		zap.Error(cause),
	)

	return cause
}

// publishEvents flushes the shop's recorded domain events
func (s *Service) publishEvents(ctx context.Context, shop *merchant.Shop) {
	events := shop.GetDomainEvents()
	if len(events) == 0 || s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish sync events",
			zap.String("shop_domain", shop.Domain),
			zap.Error(err),
		)
	}
	shop.ClearDomainEvents()
}

func (s *Service) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[key] {
		return false
	}
	s.running[key] = true
	return true
}

func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, key)
}

// failureMessage maps a terminal error to the message persisted on the shop
func failureMessage(err error) string {
	switch {
	case errors.Is(err, integration.ErrAuthRevoked):
		return "Upstream credential revoked; re-authentication with the platform is required"
	case errors.Is(err, integration.ErrRateLimited):
		return "Upstream rate limit exhausted after bounded retries"
	case errors.Is(err, integration.ErrUpstreamUnavailable):
		return "Upstream API unavailable after bounded retries"
	case errors.Is(err, integration.ErrInvalidCursor):
		return "Stored cursor rejected by upstream; trigger a full sync to rebuild it"
	case errors.Is(err, integration.ErrInvalidResponse):
		return "Upstream returned a malformed page; sync aborted"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Sync cancelled before completion"
	default:
		return fmt.Sprintf("Sync failed: %v", err)
	}
}

// productRows converts upstream products to mirror rows, skipping records
// the domain rejects instead of aborting the page
func productRows(tenantID uuid.UUID, items []integration.UpstreamProduct) ([]*catalog.Product, int) {
	rows := make([]*catalog.Product, 0, len(items))
	skipped := 0
	for _, item := range items {
		product, err := catalog.NewProductFromSnapshot(tenantID, catalog.ProductSnapshot{
			UpstreamID:        item.ID,
			LegacyID:          item.LegacyID,
			Title:             item.Title,
			Handle:            item.Handle,
			ProductType:       item.ProductType,
			Vendor:            item.Vendor,
			Status:            catalog.ParseProductStatus(item.Status),
			TotalInventory:    item.TotalInventory,
			InventoryTracked:  item.InventoryTracked,
			PriceMin:          item.PriceMin,
			PriceMax:          item.PriceMax,
			FeaturedImageURL:  item.FeaturedImageURL,
			UpstreamUpdatedAt: item.UpdatedAt,
		})
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, product)
	}
	return rows, skipped
}

// orderRows converts upstream orders to mirror rows
func orderRows(tenantID uuid.UUID, items []integration.UpstreamOrder) ([]*trade.Order, int) {
	rows := make([]*trade.Order, 0, len(items))
	skipped := 0
	for _, item := range items {
		lineItems := make(trade.LineItems, 0, len(item.LineItems))
		for _, li := range item.LineItems {
			lineItems = append(lineItems, trade.LineItem{
				ProductUpstreamID: li.ProductID,
				Title:             li.Title,
				Quantity:          li.Quantity,
				UnitAmount:        li.UnitAmount,
			})
		}

		order, err := trade.NewOrderFromSnapshot(tenantID, trade.OrderSnapshot{
			UpstreamID:        item.ID,
			Number:            item.Number,
			Name:              item.Name,
			FinancialStatus:   trade.FinancialStatus(trade.NormalizeStatus(item.FinancialStatus, string(trade.FinancialStatusPending))),
			FulfillmentStatus: trade.FulfillmentStatus(trade.NormalizeStatus(item.FulfillmentStatus, string(trade.FulfillmentStatusUnfulfilled))),
			Currency:          item.Currency,
			SubtotalAmount:    item.SubtotalAmount,
			TaxAmount:         item.TaxAmount,
			DiscountAmount:    item.DiscountAmount,
			TotalAmount:       item.TotalAmount,
			CustomerID:        item.CustomerID,
			CustomerEmail:     item.CustomerEmail,
			LineItems:         lineItems,
			DiscountCodes:     trade.DiscountCodes(item.DiscountCodes),
			ProcessedAt:       item.ProcessedAt,
		})
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, order)
	}
	return rows, skipped
}
