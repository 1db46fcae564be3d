package merchant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecomdash/backend/internal/domain/catalog"
	"github.com/ecomdash/backend/internal/domain/insight"
	"github.com/ecomdash/backend/internal/domain/integration"
	"github.com/ecomdash/backend/internal/domain/merchant"
	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/ecomdash/backend/internal/domain/trade"
)

// TokenSealer encrypts upstream credentials before they are persisted.
// Plaintext tokens never reach a repository.
type TokenSealer interface {
	Seal(plaintext string) (string, error)
}

// Service handles shop lifecycle use cases
type Service struct {
	shops     merchant.ShopRepository
	products  catalog.ProductRepository
	orders    trade.OrderRepository
	insights  insight.InsightRepository
	ledger    integration.WebhookEventRepository
	tx        shared.TransactionManager
	sealer    TokenSealer
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates a new shop service
func NewService(
	shops merchant.ShopRepository,
	products catalog.ProductRepository,
	orders trade.OrderRepository,
	insights insight.InsightRepository,
	ledger integration.WebhookEventRepository,
	tx shared.TransactionManager,
	sealer TokenSealer,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		shops:     shops,
		products:  products,
		orders:    orders,
		insights:  insights,
		ledger:    ledger,
		tx:        tx,
		sealer:    sealer,
		publisher: publisher,
		logger:    logger,
	}
}

// Register onboards a shop after a completed OAuth exchange. Registering a
// domain that already exists is rejected; re-authentication of an existing
// shop goes through UpdateCredential instead.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*ShopResponse, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	domain := merchant.NormalizeDomain(cmd.Domain)
	exists, err := s.shops.ExistsByDomain(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to check shop domain: %w", err)
	}
	if exists {
		return nil, shared.ErrAlreadyExists
	}

	ciphertext, err := s.sealer.Seal(cmd.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to seal access token: %w", err)
	}

	shop, err := merchant.NewShop(domain, ciphertext, cmd.Scopes)
	if err != nil {
		return nil, err
	}
	if cmd.WebhookSecret != "" {
		shop.SetWebhookSecret(cmd.WebhookSecret)
	}

	if err := s.shops.Save(ctx, shop); err != nil {
		return nil, fmt.Errorf("failed to save shop: %w", err)
	}

	s.publishEvents(ctx, shop)

	s.logger.Info("shop registered",
		zap.String("shop_id", shop.ID.String()),
		zap.String("domain", shop.Domain))

	return ToShopResponse(shop), nil
}

// Get returns one shop by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ShopResponse, error) {
	shop, err := s.shops.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToShopResponse(shop), nil
}

// GetByDomain returns one shop by its normalized domain
func (s *Service) GetByDomain(ctx context.Context, domain string) (*ShopResponse, error) {
	shop, err := s.shops.FindByDomain(ctx, merchant.NormalizeDomain(domain))
	if err != nil {
		return nil, err
	}
	return ToShopResponse(shop), nil
}

// List returns shops page by page
func (s *Service) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[ShopResponse], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	shops, err := s.shops.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	total, err := s.shops.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count shops: %w", err)
	}

	items := make([]ShopResponse, 0, len(shops))
	for i := range shops {
		items = append(items, *ToShopResponse(&shops[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateCredential rotates a shop's access token after re-authentication.
// An uninstalled shop becomes active again, which is the re-install path.
func (s *Service) UpdateCredential(ctx context.Context, id uuid.UUID, cmd UpdateCredentialCommand) (*ShopResponse, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	shop, err := s.shops.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ciphertext, err := s.sealer.Seal(cmd.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to seal access token: %w", err)
	}
	if err := shop.RotateCredential(ciphertext, cmd.Scopes); err != nil {
		return nil, err
	}
	if cmd.WebhookSecret != "" {
		shop.SetWebhookSecret(cmd.WebhookSecret)
	}
	shop.Reactivate()

	if err := s.shops.Save(ctx, shop); err != nil {
		return nil, fmt.Errorf("failed to save shop: %w", err)
	}

	s.logger.Info("shop credential rotated", zap.String("shop_id", shop.ID.String()))

	return ToShopResponse(shop), nil
}

// Delete removes a shop together with every row keyed to its tenant:
// mirrored products and orders, insights and the webhook ledger. Everything
// goes in one transaction so a failure leaves the tenant fully intact.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*PurgeResult, error) {
	shop, err := s.shops.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var result PurgeResult
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if result.Products, err = s.products.DeleteByTenant(ctx, shop.ID); err != nil {
			return fmt.Errorf("failed to purge products: %w", err)
		}
		if result.Orders, err = s.orders.DeleteByTenant(ctx, shop.ID); err != nil {
			return fmt.Errorf("failed to purge orders: %w", err)
		}
		if result.Insights, err = s.insights.DeleteByTenant(ctx, shop.ID); err != nil {
			return fmt.Errorf("failed to purge insights: %w", err)
		}
		if result.WebhookEvents, err = s.ledger.DeleteByTenant(ctx, shop.ID); err != nil {
			return fmt.Errorf("failed to purge webhook ledger: %w", err)
		}
		return s.shops.Delete(ctx, shop.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shop deleted",
		zap.String("shop_id", shop.ID.String()),
		zap.String("domain", shop.Domain),
		zap.Int64("products_purged", result.Products),
		zap.Int64("orders_purged", result.Orders))

	return &result, nil
}

// PurgeTenant removes a tenant's mirrored data while keeping the shop row
// and webhook ledger. The uninstall flow uses it so redelivered webhooks
// still deduplicate against the tombstone; the redact flow ends in Delete.
func (s *Service) PurgeTenant(ctx context.Context, tenantID uuid.UUID) (*PurgeResult, error) {
	if _, err := s.shops.FindByID(ctx, tenantID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	var result PurgeResult
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if result.Products, err = s.products.DeleteByTenant(ctx, tenantID); err != nil {
			return fmt.Errorf("failed to purge products: %w", err)
		}
		if result.Orders, err = s.orders.DeleteByTenant(ctx, tenantID); err != nil {
			return fmt.Errorf("failed to purge orders: %w", err)
		}
		if result.Insights, err = s.insights.DeleteByTenant(ctx, tenantID); err != nil {
			return fmt.Errorf("failed to purge insights: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) publishEvents(ctx context.Context, shop *merchant.Shop) {
	events := shop.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish shop events",
			zap.String("shop_id", shop.ID.String()),
			zap.Error(err))
	}
	shop.ClearDomainEvents()
}
