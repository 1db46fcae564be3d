package middleware

import (
	"net/http"
	"strings"

	"github.com/ecomdash/backend/internal/domain/merchant"
	"github.com/ecomdash/backend/internal/infrastructure/auth"
	"github.com/ecomdash/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Session context keys
const (
	SessionClaimsKey     = "session_claims"
	SessionUserIDKey     = "session_user_id"
	SessionTenantIDKey   = "session_tenant_id"
	SessionShopDomainKey = "session_shop_domain"
	AuthHeaderKey        = "Authorization"
	BearerPrefix         = "Bearer "
)

// SessionMiddlewareConfig holds configuration for session token middleware
type SessionMiddlewareConfig struct {
	// Tokens is required for token validation
	Tokens *auth.SessionTokenService
	// Shops resolves the dest shop domain to a registered shop
	Shops merchant.ShopRepository
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultSessionConfig returns default session middleware configuration.
// Webhook ingestion stays open: it authenticates with its own HMAC signature,
// not a session token.
func DefaultSessionConfig(tokens *auth.SessionTokenService, shops merchant.ShopRepository) SessionMiddlewareConfig {
	return SessionMiddlewareConfig{
		Tokens: tokens,
		Shops:  shops,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
			"/api/v1/health",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api-docs",
			"/api/v1/webhooks",
			"/api/v1/system",
		},
		OnError: nil,
		Logger:  nil,
	}
}

// SessionAuthMiddleware creates session token authentication middleware
func SessionAuthMiddleware(tokens *auth.SessionTokenService, shops merchant.ShopRepository) gin.HandlerFunc {
	return SessionAuthMiddlewareWithConfig(DefaultSessionConfig(tokens, shops))
}

// SessionAuthMiddlewareWithConfig creates session token middleware with custom config
func SessionAuthMiddlewareWithConfig(cfg SessionMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		// Check skip paths
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		// Check skip path prefixes
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		// Extract token from Authorization header
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}

		// Check Bearer prefix
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		// Validate token
		claims, err := cfg.Tokens.Validate(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		shopDomain, err := claims.ShopDomain()
		if err != nil {
			handleAuthError(c, cfg, err, "Token dest is not a shop domain")
			return
		}

		// Resolve the dest domain to a registered shop. The shop ID is the
		// tenant ID for everything downstream.
		shop, err := cfg.Shops.FindByDomain(c.Request.Context(), shopDomain)
		if err != nil {
			handleAuthError(c, cfg, auth.ErrUnknownShop, "Shop is not registered")
			return
		}

		// Store session info in context for downstream use
		c.Set(SessionClaimsKey, claims)
		c.Set(SessionUserIDKey, claims.Subject)
		c.Set(SessionTenantIDKey, shop.ID.String())
		c.Set(SessionShopDomainKey, shop.Domain)

		// Also set in request context for logger
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, claims.Subject)
		ctx, _ = logger.WithTenantID(ctx, log, shop.ID.String())
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Session authentication successful",
				zap.String("shop_domain", shop.Domain),
				zap.String("tenant_id", shop.ID.String()),
				zap.String("user_id", claims.Subject),
			)
		}

		c.Next()
	}
}

// handleAuthError handles authentication errors
func handleAuthError(c *gin.Context, cfg SessionMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("Session authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := "UNAUTHORIZED"
	errorMessage := "Authentication required"

	switch err {
	case auth.ErrExpiredToken:
		errorCode = "TOKEN_EXPIRED"
		errorMessage = "Session token has expired"
	case auth.ErrInvalidToken:
		errorCode = "INVALID_TOKEN"
		errorMessage = "Invalid session token"
	case auth.ErrTokenNotYetValid:
		errorCode = "TOKEN_NOT_VALID"
		errorMessage = "Session token is not yet valid"
	case auth.ErrInvalidAudience:
		errorCode = "INVALID_TOKEN"
		errorMessage = "Session token was issued for a different app"
	case auth.ErrUnknownShop:
		errorCode = "UNKNOWN_SHOP"
		errorMessage = "Shop is not registered"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

// GetSessionClaims retrieves session claims from gin.Context
func GetSessionClaims(c *gin.Context) *auth.SessionClaims {
	if claims, exists := c.Get(SessionClaimsKey); exists {
		if sessionClaims, ok := claims.(*auth.SessionClaims); ok {
			return sessionClaims
		}
	}
	return nil
}

// GetSessionUserID retrieves the platform user ID from the session in context
func GetSessionUserID(c *gin.Context) string {
	if userID, exists := c.Get(SessionUserIDKey); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// GetSessionTenantID retrieves the tenant ID from the session in context
func GetSessionTenantID(c *gin.Context) string {
	if tenantID, exists := c.Get(SessionTenantIDKey); exists {
		if id, ok := tenantID.(string); ok {
			return id
		}
	}
	return ""
}

// GetSessionShopDomain retrieves the shop domain from the session in context
func GetSessionShopDomain(c *gin.Context) string {
	if domain, exists := c.Get(SessionShopDomainKey); exists {
		if d, ok := domain.(string); ok {
			return d
		}
	}
	return ""
}
