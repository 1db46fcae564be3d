// Package shopify adapts the Shopify Admin GraphQL API to the
// integration.PlatformClient port: cursor pagination, leaky-bucket pacing
// from observed quota, bounded retries with exponential backoff, and webhook
// signature primitives.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ecomdash/backend/internal/domain/integration"
)

// defaultEstimatedCost is the pacing estimate in cost points for the next
// call before any quota has been observed. Refined from the actual cost the
// platform reports on each response.
const defaultEstimatedCost = 50.0

// Config holds client tuning for one deployment
type Config struct {
	APIVersion       string
	Timeout          time.Duration
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
	MaxResponseBytes int64
	QuotaParser      string
}

// Validate validates the configuration and applies defaults
func (c *Config) Validate() error {
	if c.APIVersion == "" {
		c.APIVersion = "2024-01"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries < 1 {
		c.MaxRetries = 3
	}
	if c.RetryBackoffBase <= 0 {
		c.RetryBackoffBase = 500 * time.Millisecond
	}
	if c.RetryBackoffMax <= 0 {
		c.RetryBackoffMax = 10 * time.Second
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = 5 << 20
	}
	if _, err := NewQuotaParser(c.QuotaParser); err != nil {
		return err
	}
	return nil
}

// Client implements integration.PlatformClient for one shop. It carries that
// shop's decrypted credential; there is no process-wide client state.
type Client struct {
	domain      string
	accessToken string
	endpoint    string
	config      Config
	httpClient  *http.Client
	quotaParser integration.QuotaParser
	logger      *zap.Logger

	// mu guards the pacing state below
	mu        sync.Mutex
	lastQuota integration.QuotaStatus
	lastCost  float64
}

// NewClient creates a client bound to one shop domain and credential
func NewClient(domain, accessToken string, config Config, logger *zap.Logger) (*Client, error) {
	if domain == "" {
		return nil, errors.New("shopify: shop domain is required")
	}
	if accessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", integration.ErrAuthRevoked)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	parser, err := NewQuotaParser(config.QuotaParser)
	if err != nil {
		return nil, err
	}

	return &Client{
		domain:      domain,
		accessToken: accessToken,
		endpoint:    endpointURL(domain, config.APIVersion),
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		quotaParser: parser,
		logger:      logger,
		lastCost:    defaultEstimatedCost,
	}, nil
}

// ShopDomain returns the shop this client is bound to
func (c *Client) ShopDomain() string {
	return c.domain
}

// FetchPage retrieves one page of the requested resource. Transient failures
// (throttling, 5xx, transport errors) are retried internally with exponential
// backoff; an error escaping this method is final. Credential rejections are
// never retried, because the failure is not transient and retrying burns
// quota.
func (c *Client) FetchPage(ctx context.Context, req integration.PageRequest) (*integration.PageResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := productsQuery
	if req.Resource == integration.ResourceOrders {
		query = ordersQuery
	}

	variables := map[string]any{"first": req.PageSize}
	if req.Cursor != "" {
		variables["after"] = req.Cursor
	}
	if filter := buildQueryFilter(req); filter != "" {
		variables["query"] = filter
	}

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to encode request: %w", err)
	}

	if err := c.pace(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		result, err := c.fetchOnce(ctx, req, payload)
		if err == nil {
			return result, nil
		}

		// Fatal classes escape immediately without consuming attempts.
		if errors.Is(err, integration.ErrAuthRevoked) ||
			errors.Is(err, integration.ErrInvalidCursor) ||
			errors.Is(err, integration.ErrInvalidResponse) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		lastErr = err
		c.logger.Warn("Shopify page fetch failed, retrying",
			zap.String("shop_domain", c.domain),
			zap.String("resource", req.Resource.String()),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", c.config.MaxRetries),
			zap.Error(err),
		)
	}

	return nil, lastErr
}

// fetchOnce performs a single request/parse cycle
func (c *Client) fetchOnce(ctx context.Context, req integration.PageRequest, payload []byte) (*integration.PageResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", integration.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", integration.ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusPaymentRequired,
		resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrAuthRevoked, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: HTTP 429", integration.ErrRateLimited)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrUpstreamUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrInvalidResponse, resp.StatusCode)
	}

	quota, observed := c.quotaParser.Parse(resp.Header, body)
	if observed {
		c.observeQuota(quota, body)
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err)
	}

	if len(envelope.Errors) > 0 {
		if envelope.throttled() {
			return nil, fmt.Errorf("%w: %s", integration.ErrRateLimited, envelope.firstError())
		}
		if message := envelope.firstError(); strings.Contains(strings.ToLower(message), "cursor") {
			return nil, fmt.Errorf("%w: %s", integration.ErrInvalidCursor, message)
		}
		return nil, fmt.Errorf("%w: %s", integration.ErrInvalidResponse, envelope.firstError())
	}

	result := &integration.PageResult{Quota: quota}
	switch req.Resource {
	case integration.ResourceProducts:
		conn := envelope.Data.Products
		if conn == nil {
			return nil, fmt.Errorf("%w: missing products connection", integration.ErrInvalidResponse)
		}
		for _, edge := range conn.Edges {
			result.Products = append(result.Products, edge.Node.toUpstream())
		}
		result.NextCursor = conn.PageInfo.EndCursor
		result.HasMore = conn.PageInfo.HasNextPage
	case integration.ResourceOrders:
		conn := envelope.Data.Orders
		if conn == nil {
			return nil, fmt.Errorf("%w: missing orders connection", integration.ErrInvalidResponse)
		}
		for _, edge := range conn.Edges {
			result.Orders = append(result.Orders, edge.Node.toUpstream())
		}
		result.NextCursor = conn.PageInfo.EndCursor
		result.HasMore = conn.PageInfo.HasNextPage
	}

	return result, nil
}

// pace waits until the leaky bucket restores enough capacity for the next
// call, based on the last observed quota and cost. Never waits when no quota
// has been observed yet.
func (c *Client) pace(ctx context.Context) error {
	c.mu.Lock()
	wait := c.lastQuota.WaitFor(c.lastCost)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	c.logger.Debug("Pacing Shopify call for quota restore",
		zap.String("shop_domain", c.domain),
		zap.Duration("wait", wait),
	)
	return sleepContext(ctx, wait)
}

// observeQuota records the rate-limit state and actual cost of a response
func (c *Client) observeQuota(quota integration.QuotaStatus, body []byte) {
	cost := defaultEstimatedCost
	var envelope costEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Extensions.Cost.ActualQueryCost > 0 {
		cost = envelope.Extensions.Cost.ActualQueryCost
	}

	c.mu.Lock()
	c.lastQuota = quota
	c.lastCost = cost
	c.mu.Unlock()
}

// backoff returns the delay before the given retry, capped at the maximum
func (c *Client) backoff(retry int) time.Duration {
	delay := c.config.RetryBackoffBase * time.Duration(1<<(retry-1))
	if delay > c.config.RetryBackoffMax {
		delay = c.config.RetryBackoffMax
	}
	return delay
}

// sleepContext sleeps for the duration or until the context is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ensure Client implements the platform port
var _ integration.PlatformClient = (*Client)(nil)
