package shopify

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ecomdash/backend/internal/domain/integration"
	"github.com/ecomdash/backend/internal/domain/merchant"
	"github.com/ecomdash/backend/internal/infrastructure/crypto"
)

// ClientFactory builds per-shop clients. The stored ciphertext is decrypted
// here and lives only inside the returned client; it is never attached to
// the shop aggregate or logged.
type ClientFactory struct {
	shops  merchant.ShopRepository
	cipher *crypto.TokenCipher
	config Config
	logger *zap.Logger
}

// NewClientFactory creates a factory over the credential store
func NewClientFactory(shops merchant.ShopRepository, cipher *crypto.TokenCipher, config Config, logger *zap.Logger) (*ClientFactory, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ClientFactory{
		shops:  shops,
		cipher: cipher,
		config: config,
		logger: logger,
	}, nil
}

// ForShop returns a client for the given shop domain
func (f *ClientFactory) ForShop(ctx context.Context, shopDomain string) (integration.PlatformClient, error) {
	shop, err := f.shops.FindByDomain(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	token, err := f.cipher.Open(shop.AccessTokenCiphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: stored credential cannot be decrypted", integration.ErrAuthRevoked)
	}

	return NewClient(shop.Domain, token, f.config, f.logger)
}

// Ensure ClientFactory implements the port
var _ integration.ClientFactory = (*ClientFactory)(nil)

// Registry is a threadsafe ClientRegistry keyed by platform code
type Registry struct {
	mu        sync.RWMutex
	factories map[integration.PlatformCode]integration.ClientFactory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[integration.PlatformCode]integration.ClientFactory),
	}
}

// Register adds a factory for a platform code, replacing any previous one
func (r *Registry) Register(code integration.PlatformCode, factory integration.ClientFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[code] = factory
}

// Factory returns the factory registered for the code
func (r *Registry) Factory(code integration.PlatformCode) (integration.ClientFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrPlatformNotRegistered, code)
	}
	return factory, nil
}

// Codes lists registered platform codes
func (r *Registry) Codes() []integration.PlatformCode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]integration.PlatformCode, 0, len(r.factories))
	for code := range r.factories {
		codes = append(codes, code)
	}
	return codes
}

// Ensure Registry implements the port
var _ integration.ClientRegistry = (*Registry)(nil)
