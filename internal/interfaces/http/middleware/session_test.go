package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomdash/backend/internal/domain/merchant"
	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/ecomdash/backend/internal/infrastructure/auth"
	"github.com/ecomdash/backend/internal/infrastructure/config"
)

// stubShopRepo implements only the lookup the middleware needs. Calls to any
// other repository method panic via the embedded nil interface.
type stubShopRepo struct {
	merchant.ShopRepository
	shops map[string]*merchant.Shop
}

func (s *stubShopRepo) FindByDomain(_ context.Context, domain string) (*merchant.Shop, error) {
	if shop, ok := s.shops[domain]; ok {
		return shop, nil
	}
	return nil, shared.ErrNotFound
}

func newSessionFixture(t *testing.T) (*auth.SessionTokenService, *stubShopRepo, *merchant.Shop) {
	t.Helper()

	tokens := auth.NewSessionTokenService(
		config.ShopifyConfig{APIKey: "test-api-key", APISecret: "test-api-secret"},
		config.SessionConfig{ClockSkew: 5 * time.Second},
	)

	shop, err := merchant.NewShop("demo.myshopify.com", "sealed:shpat_token", "read_products,read_orders")
	require.NoError(t, err)
	shop.ClearDomainEvents()

	repo := &stubShopRepo{shops: map[string]*merchant.Shop{shop.Domain: shop}}
	return tokens, repo, shop
}

func sessionRouter(tokens *auth.SessionTokenService, repo *stubShopRepo, capture func(c *gin.Context)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionAuthMiddleware(tokens, repo))
	r.GET("/api/v1/shops", func(c *gin.Context) {
		if capture != nil {
			capture(c)
		}
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/v1/webhooks/shopify", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func authErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.False(t, resp.Success)
	return resp.Error.Code
}

func TestSessionAuthMiddleware_ValidToken(t *testing.T) {
	tokens, repo, shop := newSessionFixture(t)

	var gotTenant, gotUser, gotDomain string
	var gotClaims *auth.SessionClaims
	r := sessionRouter(tokens, repo, func(c *gin.Context) {
		gotTenant = GetSessionTenantID(c)
		gotUser = GetSessionUserID(c)
		gotDomain = GetSessionShopDomain(c)
		gotClaims = GetSessionClaims(c)
	})

	token, err := tokens.Mint(shop.Domain, "user-7", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shops", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, shop.ID.String(), gotTenant)
	assert.Equal(t, "user-7", gotUser)
	assert.Equal(t, shop.Domain, gotDomain)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "https://"+shop.Domain, gotClaims.Dest)
}

func TestSessionAuthMiddleware_MissingHeader(t *testing.T) {
	tokens, repo, _ := newSessionFixture(t)
	r := sessionRouter(tokens, repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shops", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", authErrorCode(t, w.Body.Bytes()))
}

func TestSessionAuthMiddleware_MalformedHeader(t *testing.T) {
	tokens, repo, _ := newSessionFixture(t)
	r := sessionRouter(tokens, repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shops", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionAuthMiddleware_InvalidToken(t *testing.T) {
	tokens, repo, _ := newSessionFixture(t)
	r := sessionRouter(tokens, repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shops", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", authErrorCode(t, w.Body.Bytes()))
}

func TestSessionAuthMiddleware_ExpiredToken(t *testing.T) {
	tokens, repo, shop := newSessionFixture(t)
	r := sessionRouter(tokens, repo, nil)

	token, err := tokens.Mint(shop.Domain, "user-7", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shops", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_EXPIRED", authErrorCode(t, w.Body.Bytes()))
}

func TestSessionAuthMiddleware_UnknownShop(t *testing.T) {
	tokens, repo, _ := newSessionFixture(t)
	r := sessionRouter(tokens, repo, nil)

	token, err := tokens.Mint("stranger.myshopify.com", "user-7", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shops", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNKNOWN_SHOP", authErrorCode(t, w.Body.Bytes()))
}

func TestSessionAuthMiddleware_SkipPaths(t *testing.T) {
	tokens, repo, _ := newSessionFixture(t)
	r := sessionRouter(tokens, repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionAuthMiddleware_SkipWebhookPrefix(t *testing.T) {
	tokens, repo, _ := newSessionFixture(t)
	r := sessionRouter(tokens, repo, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/shopify", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionAuthMiddleware_OnErrorOverride(t *testing.T) {
	tokens, repo, _ := newSessionFixture(t)

	cfg := DefaultSessionConfig(tokens, repo)
	cfg.OnError = func(c *gin.Context, err error) {
		c.AbortWithStatus(http.StatusTeapot)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionAuthMiddlewareWithConfig(cfg))
	r.GET("/api/v1/shops", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shops", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestSessionAccessors_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetSessionClaims(c))
	assert.Empty(t, GetSessionUserID(c))
	assert.Empty(t, GetSessionTenantID(c))
	assert.Empty(t, GetSessionShopDomain(c))
}
