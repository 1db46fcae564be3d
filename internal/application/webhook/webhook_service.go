// Package webhook implements the push-side ingestion pipeline: verified,
// deduplicated webhook deliveries applied to the same mirror rows the sync
// engine writes.
package webhook

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecomdash/backend/internal/domain/catalog"
	"github.com/ecomdash/backend/internal/domain/insight"
	"github.com/ecomdash/backend/internal/domain/integration"
	"github.com/ecomdash/backend/internal/domain/merchant"
	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/ecomdash/backend/internal/domain/trade"
)

// SignatureVerifier checks a delivery's authenticity over its raw bytes
type SignatureVerifier interface {
	Verify(secret string, rawBody []byte, signature string) bool
}

// PayloadArchiver stores raw delivery payloads in object storage. Archival is
// best effort and runs after the delivery's effect has committed.
type PayloadArchiver interface {
	Archive(ctx context.Context, tenantID uuid.UUID, topic string, eventID uuid.UUID, rawBody []byte) error
}

// Config holds webhook pipeline settings
type Config struct {
	// AppSecret signs deliveries for shops without a per-shop secret override
	AppSecret string
}

// Service runs the ingest pipeline. The order of its steps is fixed: resolve,
// verify over raw bytes, deduplicate, then apply together with the ledger
// insert in one transaction. Verification always precedes parsing.
type Service struct {
	shops     merchant.ShopRepository
	products  catalog.ProductRepository
	orders    trade.OrderRepository
	insights  insight.InsightRepository
	ledger    integration.WebhookEventRepository
	tx        shared.TransactionManager
	verifier  SignatureVerifier
	archiver  PayloadArchiver
	outbox    shared.OutboxRepository
	publisher shared.EventPublisher
	config    Config
	logger    *zap.Logger
}

// NewService creates a webhook service. The archiver is optional; a nil
// archiver disables payload archival.
func NewService(
	shops merchant.ShopRepository,
	products catalog.ProductRepository,
	orders trade.OrderRepository,
	insights insight.InsightRepository,
	ledger integration.WebhookEventRepository,
	tx shared.TransactionManager,
	verifier SignatureVerifier,
	archiver PayloadArchiver,
	outbox shared.OutboxRepository,
	publisher shared.EventPublisher,
	config Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		shops:     shops,
		products:  products,
		orders:    orders,
		insights:  insights,
		ledger:    ledger,
		tx:        tx,
		verifier:  verifier,
		archiver:  archiver,
		outbox:    outbox,
		publisher: publisher,
		config:    config,
		logger:    logger,
	}
}

// Ingest handles one delivery. Rejections and duplicates are outcomes, not
// errors; an error return means the effect could not be persisted and the
// platform should redeliver.
func (s *Service) Ingest(ctx context.Context, cmd IngestCommand) (*IngestResult, error) {
	if cmd.ShopDomain == "" {
		return rejected("missing shop domain"), nil
	}
	if len(cmd.RawBody) == 0 {
		return rejected("empty payload"), nil
	}

	shop, err := s.shops.FindByDomain(ctx, merchant.NormalizeDomain(cmd.ShopDomain))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Webhook for unknown shop",
				zap.String("shop_domain", cmd.ShopDomain),
				zap.String("topic", cmd.Topic),
			)
			return rejected("unknown shop domain"), nil
		}
		return nil, err
	}

	secret := shop.WebhookSecret
	if secret == "" {
		secret = s.config.AppSecret
	}
	if !s.verifier.Verify(secret, cmd.RawBody, cmd.Signature) {
		s.logger.Warn("Webhook signature mismatch",
			zap.String("shop_domain", shop.Domain),
			zap.String("topic", cmd.Topic),
		)
		return rejected("signature mismatch"), nil
	}

	fingerprint := integration.Fingerprint(shop.ID, cmd.RawBody)
	seen, err := s.ledger.ExistsByFingerprint(ctx, shop.ID, fingerprint)
	if err != nil {
		return nil, err
	}
	if seen {
		return &IngestResult{Outcome: OutcomeDuplicate}, nil
	}

	topic := integration.WebhookTopic(cmd.Topic)
	entry, err := integration.NewWebhookEvent(shop.ID, topic, cmd.EventID, cmd.RawBody)
	if err != nil {
		return rejected(err.Error()), nil
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.apply(ctx, shop, topic, cmd.RawBody, entry); err != nil {
			return err
		}
		return s.ledger.Save(ctx, entry)
	})
	if err != nil {
		// A concurrent delivery of the same payload won the ledger insert;
		// its effect is durable, so this one is a duplicate.
		if errors.Is(err, integration.ErrWebhookDuplicate) {
			return &IngestResult{Outcome: OutcomeDuplicate}, nil
		}
		return nil, err
	}

	s.archive(ctx, shop.ID, topic, entry, cmd.RawBody)
	s.publishEvents(ctx, shop)

	s.logger.Info("Webhook processed",
		zap.String("shop_domain", shop.Domain),
		zap.String("topic", topic.String()),
		zap.String("status", string(entry.Status)),
	)

	return &IngestResult{Outcome: OutcomeAccepted}, nil
}

// apply mutates storage for one verified delivery. A malformed payload on a
// known topic is ledgered as skipped rather than bounced: the signature
// already proved its origin, so redelivery would not improve it.
func (s *Service) apply(ctx context.Context, shop *merchant.Shop, topic integration.WebhookTopic, raw []byte, entry *integration.WebhookEvent) error {
	switch topic {
	case integration.TopicProductsCreate, integration.TopicProductsUpdate:
		snapshot, err := parseProductPayload(raw)
		if err != nil {
			return s.skip(entry, shop, topic, err)
		}
		product, err := catalog.NewProductFromSnapshot(shop.ID, snapshot)
		if err != nil {
			return s.skip(entry, shop, topic, err)
		}
		if err := s.products.UpsertBatch(ctx, []*catalog.Product{product}); err != nil {
			return err
		}
		entry.MarkProcessed()
		return nil

	case integration.TopicProductsDelete:
		upstreamID, err := parseProductDeletePayload(raw)
		if err != nil {
			return s.skip(entry, shop, topic, err)
		}
		if err := s.products.DeleteByUpstreamID(ctx, shop.ID, upstreamID); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		entry.MarkProcessed()
		return nil

	case integration.TopicOrdersCreate, integration.TopicOrdersUpdated:
		snapshot, err := parseOrderPayload(raw)
		if err != nil {
			return s.skip(entry, shop, topic, err)
		}
		order, err := trade.NewOrderFromSnapshot(shop.ID, snapshot)
		if err != nil {
			return s.skip(entry, shop, topic, err)
		}
		if err := s.orders.UpsertBatch(ctx, []*trade.Order{order}); err != nil {
			return err
		}
		entry.MarkProcessed()
		return nil

	case integration.TopicAppUninstalled:
		if err := shop.MarkUninstalled(); err != nil {
			if !errors.Is(err, shared.ErrInvalidState) {
				return err
			}
		} else if err := s.shops.Save(ctx, shop); err != nil {
			return err
		}
		return s.purge(ctx, shop, entry)

	case integration.TopicShopRedact:
		// Final erasure. The mirrors go now, but the shop row and ledger
		// cannot be dropped inside this transaction: the ledger insert that
		// follows apply still references the shop row. The outbox entry
		// drives the full cascade after commit; outbox rows carry no foreign
		// key, so the entry outlives the row it erases.
		if err := s.purgeTenant(ctx, shop.ID); err != nil {
			return err
		}
		if err := s.enqueueErase(ctx, shop); err != nil {
			return err
		}
		entry.MarkQueued()
		return nil

	default:
		s.logger.Info("Webhook topic not handled",
			zap.String("shop_domain", shop.Domain),
			zap.String("topic", topic.String()),
		)
		entry.MarkSkipped()
		return nil
	}
}

// purge removes the tenant's mirrored data synchronously. When that fails the
// purge is handed to the outbox instead, so it still completes within the
// compliance window rather than being dropped.
func (s *Service) purge(ctx context.Context, shop *merchant.Shop, entry *integration.WebhookEvent) error {
	if err := s.purgeTenant(ctx, shop.ID); err != nil {
		s.logger.Warn("Synchronous purge failed, queuing purge job",
			zap.String("shop_domain", shop.Domain),
			zap.Error(err),
		)
		if qErr := s.enqueuePurge(ctx, shop); qErr != nil {
			return err
		}
		entry.MarkQueued()
		return nil
	}
	entry.MarkProcessed()
	return nil
}

func (s *Service) purgeTenant(ctx context.Context, tenantID uuid.UUID) error {
	if _, err := s.products.DeleteByTenant(ctx, tenantID); err != nil {
		return err
	}
	if _, err := s.orders.DeleteByTenant(ctx, tenantID); err != nil {
		return err
	}
	_, err := s.insights.DeleteByTenant(ctx, tenantID)
	return err
}

func (s *Service) enqueuePurge(ctx context.Context, shop *merchant.Shop) error {
	event := merchant.NewShopUninstalledEvent(shop)
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.outbox.Save(ctx, shared.NewOutboxEntry(shop.ID, event, payload))
}

// enqueueErase hands the irreversible tenant cascade to the outbox
func (s *Service) enqueueErase(ctx context.Context, shop *merchant.Shop) error {
	event := merchant.NewShopDataRedactedEvent(shop)
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.outbox.Save(ctx, shared.NewOutboxEntry(shop.ID, event, payload))
}

// archive stores the raw payload after commit. Failures are logged and never
// fail the delivery.
func (s *Service) archive(ctx context.Context, tenantID uuid.UUID, topic integration.WebhookTopic, entry *integration.WebhookEvent, raw []byte) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.Archive(ctx, tenantID, topic.String(), entry.ID, raw); err != nil {
		s.logger.Warn("Webhook payload archival failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("topic", topic.String()),
			zap.Error(err),
		)
	}
}

// skip ledgers a malformed but authentic delivery without effect
func (s *Service) skip(entry *integration.WebhookEvent, shop *merchant.Shop, topic integration.WebhookTopic, cause error) error {
	s.logger.Warn("Webhook payload not applicable, ledgering as skipped",
		zap.String("shop_domain", shop.Domain),
		zap.String("topic", topic.String()),
		zap.Error(cause),
	)
	entry.MarkSkipped()
	return nil
}

func (s *Service) publishEvents(ctx context.Context, shop *merchant.Shop) {
	events := shop.GetDomainEvents()
	if len(events) == 0 || s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish webhook events",
			zap.String("shop_domain", shop.Domain),
			zap.Error(err),
		)
	}
	shop.ClearDomainEvents()
}
