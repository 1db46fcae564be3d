package shopify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecomdash/backend/internal/domain/integration"
)

// productsQuery pages the catalog. Filters arrive through the $query search
// expression, e.g. "updated_at:>=2024-01-01T00:00:00Z".
const productsQuery = `
query Products($first: Int!, $after: String, $query: String) {
  products(first: $first, after: $after, query: $query, sortKey: UPDATED_AT) {
    edges {
      cursor
      node {
        id
        legacyResourceId
        title
        handle
        productType
        vendor
        status
        totalInventory
        tracksInventory
        updatedAt
        featuredImage { url }
        priceRangeV2 {
          minVariantPrice { amount }
          maxVariantPrice { amount }
        }
      }
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}`

// ordersQuery pages orders with their line items and discount codes. Line
// items are capped per order; mirrored analytics only need aggregates.
const ordersQuery = `
query Orders($first: Int!, $after: String, $query: String) {
  orders(first: $first, after: $after, query: $query, sortKey: PROCESSED_AT) {
    edges {
      cursor
      node {
        id
        legacyResourceId
        name
        displayFinancialStatus
        displayFulfillmentStatus
        currencyCode
        processedAt
        subtotalPriceSet { shopMoney { amount } }
        totalTaxSet { shopMoney { amount } }
        totalDiscountsSet { shopMoney { amount } }
        totalPriceSet { shopMoney { amount } }
        customer { id email }
        discountCodes
        lineItems(first: 50) {
          edges {
            node {
              title
              quantity
              product { id }
              originalUnitPriceSet { shopMoney { amount } }
            }
          }
        }
      }
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}`

// buildQueryFilter renders the search expression for a page request. Empty
// when the pull is unbounded (forced full sync without a window).
func buildQueryFilter(req integration.PageRequest) string {
	switch req.Resource {
	case integration.ResourceProducts:
		if req.UpdatedSince != nil {
			return "updated_at:>=" + req.UpdatedSince.UTC().Format(time.RFC3339)
		}
	case integration.ResourceOrders:
		if req.ProcessedSince != nil {
			return "processed_at:>=" + req.ProcessedSince.UTC().Format(time.RFC3339)
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Response envelope
// ---------------------------------------------------------------------------

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type moneySet struct {
	ShopMoney struct {
		Amount string `json:"amount"`
	} `json:"shopMoney"`
}

func (m moneySet) Decimal() decimal.Decimal {
	d, err := decimal.NewFromString(m.ShopMoney.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

type productNode struct {
	ID               string `json:"id"`
	LegacyResourceID string `json:"legacyResourceId"`
	Title            string `json:"title"`
	Handle           string `json:"handle"`
	ProductType      string `json:"productType"`
	Vendor           string `json:"vendor"`
	Status           string `json:"status"`
	TotalInventory   int64  `json:"totalInventory"`
	TracksInventory  bool   `json:"tracksInventory"`
	UpdatedAt        string `json:"updatedAt"`
	FeaturedImage    *struct {
		URL string `json:"url"`
	} `json:"featuredImage"`
	PriceRangeV2 struct {
		MinVariantPrice struct {
			Amount string `json:"amount"`
		} `json:"minVariantPrice"`
		MaxVariantPrice struct {
			Amount string `json:"amount"`
		} `json:"maxVariantPrice"`
	} `json:"priceRangeV2"`
}

type orderNode struct {
	ID                       string   `json:"id"`
	LegacyResourceID         string   `json:"legacyResourceId"`
	Name                     string   `json:"name"`
	DisplayFinancialStatus   string   `json:"displayFinancialStatus"`
	DisplayFulfillmentStatus string   `json:"displayFulfillmentStatus"`
	CurrencyCode             string   `json:"currencyCode"`
	ProcessedAt              string   `json:"processedAt"`
	SubtotalPriceSet         moneySet `json:"subtotalPriceSet"`
	TotalTaxSet              moneySet `json:"totalTaxSet"`
	TotalDiscountsSet        moneySet `json:"totalDiscountsSet"`
	TotalPriceSet            moneySet `json:"totalPriceSet"`
	Customer                 *struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"customer"`
	DiscountCodes []string `json:"discountCodes"`
	LineItems     struct {
		Edges []struct {
			Node struct {
				Title    string `json:"title"`
				Quantity int64  `json:"quantity"`
				Product  *struct {
					ID string `json:"id"`
				} `json:"product"`
				OriginalUnitPriceSet moneySet `json:"originalUnitPriceSet"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"lineItems"`
}

type productsConnection struct {
	Edges []struct {
		Cursor string      `json:"cursor"`
		Node   productNode `json:"node"`
	} `json:"edges"`
	PageInfo pageInfo `json:"pageInfo"`
}

type ordersConnection struct {
	Edges []struct {
		Cursor string    `json:"cursor"`
		Node   orderNode `json:"node"`
	} `json:"edges"`
	PageInfo pageInfo `json:"pageInfo"`
}

type graphQLResponse struct {
	Data struct {
		Products *productsConnection `json:"products"`
		Orders   *ordersConnection   `json:"orders"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// throttled reports whether the platform rejected the call for quota reasons
func (r *graphQLResponse) throttled() bool {
	for _, e := range r.Errors {
		if e.Extensions.Code == "THROTTLED" {
			return true
		}
	}
	return false
}

// firstError joins the error messages for diagnostics
func (r *graphQLResponse) firstError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	messages := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		messages = append(messages, e.Message)
	}
	return strings.Join(messages, "; ")
}

// ---------------------------------------------------------------------------
// Node conversion
// ---------------------------------------------------------------------------

func (n *productNode) toUpstream() integration.UpstreamProduct {
	product := integration.UpstreamProduct{
		ID:               n.ID,
		LegacyID:         parseInt64(n.LegacyResourceID),
		Title:            n.Title,
		Handle:           n.Handle,
		ProductType:      n.ProductType,
		Vendor:           n.Vendor,
		Status:           n.Status,
		TotalInventory:   n.TotalInventory,
		InventoryTracked: n.TracksInventory,
		PriceMin:         parseDecimal(n.PriceRangeV2.MinVariantPrice.Amount),
		PriceMax:         parseDecimal(n.PriceRangeV2.MaxVariantPrice.Amount),
		UpdatedAt:        parseTime(n.UpdatedAt),
	}
	if n.FeaturedImage != nil {
		product.FeaturedImageURL = n.FeaturedImage.URL
	}
	return product
}

func (n *orderNode) toUpstream() integration.UpstreamOrder {
	order := integration.UpstreamOrder{
		ID:                n.ID,
		Number:            parseOrderNumber(n.Name, n.LegacyResourceID),
		Name:              n.Name,
		FinancialStatus:   n.DisplayFinancialStatus,
		FulfillmentStatus: n.DisplayFulfillmentStatus,
		Currency:          n.CurrencyCode,
		SubtotalAmount:    n.SubtotalPriceSet.Decimal(),
		TaxAmount:         n.TotalTaxSet.Decimal(),
		DiscountAmount:    n.TotalDiscountsSet.Decimal(),
		TotalAmount:       n.TotalPriceSet.Decimal(),
		DiscountCodes:     n.DiscountCodes,
		ProcessedAt:       parseTime(n.ProcessedAt),
	}
	if n.Customer != nil {
		order.CustomerID = n.Customer.ID
		order.CustomerEmail = n.Customer.Email
	}
	for _, edge := range n.LineItems.Edges {
		item := integration.UpstreamLineItem{
			Title:      edge.Node.Title,
			Quantity:   edge.Node.Quantity,
			UnitAmount: edge.Node.OriginalUnitPriceSet.Decimal(),
		}
		if edge.Node.Product != nil {
			item.ProductID = edge.Node.Product.ID
		}
		order.LineItems = append(order.LineItems, item)
	}
	return order
}

// parseOrderNumber extracts the sequential number from the display name
// ("#1001"), falling back to the legacy resource id.
func parseOrderNumber(name, legacyID string) int64 {
	trimmed := strings.TrimFunc(name, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if n := parseInt64(trimmed); n != 0 {
		return n
	}
	return parseInt64(legacyID)
}

func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

// endpointURL builds the Admin GraphQL endpoint for a shop domain
func endpointURL(domain, apiVersion string) string {
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", domain, apiVersion)
}
