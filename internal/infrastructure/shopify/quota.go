package shopify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ecomdash/backend/internal/domain/integration"
)

// Quota parser names accepted in configuration.
const (
	QuotaParserGraphQLCost     = "graphql_cost"
	QuotaParserCallLimitHeader = "call_limit_header"
)

// NewQuotaParser resolves a configured parser name
func NewQuotaParser(name string) (integration.QuotaParser, error) {
	switch name {
	case QuotaParserGraphQLCost, "":
		return &GraphQLCostParser{}, nil
	case QuotaParserCallLimitHeader:
		return &CallLimitHeaderParser{}, nil
	default:
		return nil, fmt.Errorf("shopify: unknown quota parser %q", name)
	}
}

// GraphQLCostParser reads the leaky-bucket state from the GraphQL cost
// extension every Admin API response carries:
//
//	"extensions": {"cost": {"requestedQueryCost": 52, "throttleStatus":
//	  {"maximumAvailable": 1000, "currentlyAvailable": 948, "restoreRate": 50}}}
type GraphQLCostParser struct{}

type costEnvelope struct {
	Extensions struct {
		Cost struct {
			RequestedQueryCost float64 `json:"requestedQueryCost"`
			ActualQueryCost    float64 `json:"actualQueryCost"`
			ThrottleStatus     struct {
				MaximumAvailable   float64 `json:"maximumAvailable"`
				CurrentlyAvailable float64 `json:"currentlyAvailable"`
				RestoreRate        float64 `json:"restoreRate"`
			} `json:"throttleStatus"`
		} `json:"cost"`
	} `json:"extensions"`
}

// Name identifies the parser in config and logs
func (p *GraphQLCostParser) Name() string {
	return QuotaParserGraphQLCost
}

// Parse extracts throttle status from the response body
func (p *GraphQLCostParser) Parse(_ http.Header, body []byte) (integration.QuotaStatus, bool) {
	var envelope costEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return integration.QuotaStatus{}, false
	}

	throttle := envelope.Extensions.Cost.ThrottleStatus
	if throttle.MaximumAvailable == 0 {
		return integration.QuotaStatus{}, false
	}

	return integration.QuotaStatus{
		Available:   throttle.CurrentlyAvailable,
		Maximum:     throttle.MaximumAvailable,
		RestoreRate: throttle.RestoreRate,
	}, true
}

// CallLimitHeaderParser reads the REST-style call limit header
// "X-Shopify-Shop-Api-Call-Limit: 32/40". The header carries no restore
// rate; the platform documents 2 requests restored per second.
type CallLimitHeaderParser struct{}

const callLimitHeader = "X-Shopify-Shop-Api-Call-Limit"

// restRestoreRate is the documented leaky-bucket drain for REST endpoints
const restRestoreRate = 2.0

// Name identifies the parser in config and logs
func (p *CallLimitHeaderParser) Name() string {
	return QuotaParserCallLimitHeader
}

// Parse extracts the used/maximum pair from the call limit header
func (p *CallLimitHeaderParser) Parse(header http.Header, _ []byte) (integration.QuotaStatus, bool) {
	value := header.Get(callLimitHeader)
	if value == "" {
		return integration.QuotaStatus{}, false
	}

	parts := strings.SplitN(value, "/", 2)
	if len(parts) != 2 {
		return integration.QuotaStatus{}, false
	}

	used, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return integration.QuotaStatus{}, false
	}
	maximum, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || maximum == 0 {
		return integration.QuotaStatus{}, false
	}

	return integration.QuotaStatus{
		Available:   maximum - used,
		Maximum:     maximum,
		RestoreRate: restRestoreRate,
	}, true
}

// Ensure parsers implement the port
var (
	_ integration.QuotaParser = (*GraphQLCostParser)(nil)
	_ integration.QuotaParser = (*CallLimitHeaderParser)(nil)
)
