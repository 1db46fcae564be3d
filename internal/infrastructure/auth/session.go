package auth

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/ecomdash/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrInvalidAudience  = errors.New("token audience does not match app key")
	ErrMissingDest      = errors.New("missing dest in claims")
	ErrIssuerMismatch   = errors.New("token issuer does not match dest shop")
	ErrUnknownShop      = errors.New("shop is not registered")
)

// SessionClaims represents the claims carried by an embedded-app session token.
// The platform signs these with the app's shared secret; dest identifies the
// shop the token was minted for.
type SessionClaims struct {
	jwt.RegisteredClaims
	Dest      string `json:"dest"`
	SessionID string `json:"sid,omitempty"`
}

// ShopDomain extracts the normalized shop domain from the dest claim.
func (c *SessionClaims) ShopDomain() (string, error) {
	if c.Dest == "" {
		return "", ErrMissingDest
	}
	u, err := url.Parse(c.Dest)
	if err != nil || u.Host == "" {
		return "", ErrInvalidClaims
	}
	return strings.ToLower(u.Host), nil
}

// GetIssuedAtTime returns the token's issued-at time as time.Time
func (c *SessionClaims) GetIssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// GetExpiresAtTime returns the token's expiration time as time.Time
func (c *SessionClaims) GetExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// SessionTokenService validates embedded-app session tokens. Tokens are
// short-lived HS256 JWTs signed with the app secret, with the app API key as
// audience.
type SessionTokenService struct {
	secret    []byte
	audience  string
	clockSkew time.Duration
}

// NewSessionTokenService creates a session token service from app credentials.
func NewSessionTokenService(shopify config.ShopifyConfig, session config.SessionConfig) *SessionTokenService {
	skew := session.ClockSkew
	if skew <= 0 {
		skew = 5 * time.Second
	}
	return &SessionTokenService{
		secret:    []byte(shopify.APISecret),
		audience:  shopify.APIKey,
		clockSkew: skew,
	}
}

// Validate parses and verifies a session token and returns its claims.
// The issuer host must match the dest host so a token minted for one shop
// cannot be replayed against another.
func (s *SessionTokenService) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithLeeway(s.clockSkew), jwt.WithAudience(s.audience))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, ErrInvalidAudience
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	destDomain, err := claims.ShopDomain()
	if err != nil {
		return nil, err
	}

	if claims.Issuer != "" {
		issuerURL, err := url.Parse(claims.Issuer)
		if err != nil || !strings.EqualFold(issuerURL.Host, destDomain) {
			return nil, ErrIssuerMismatch
		}
	}

	return claims, nil
}

// Mint signs a session token for the given shop. Used by tooling and tests;
// production tokens come from the platform's App Bridge.
func (s *SessionTokenService) Mint(shopDomain, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	dest := "https://" + strings.ToLower(shopDomain)
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    dest + "/admin",
			Subject:   subject,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Dest: dest,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
