package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ShopSortFields contains allowed sort fields for shops
var ShopSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"domain":             true,
	"status":             true,
	"products_synced_at": true,
	"orders_synced_at":   true,
}

// ProductSortFields contains allowed sort fields for mirrored products
var ProductSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"upstream_id":         true,
	"title":               true,
	"handle":              true,
	"product_type":        true,
	"vendor":              true,
	"status":              true,
	"total_inventory":     true,
	"price_min":           true,
	"price_max":           true,
	"upstream_updated_at": true,
	"synced_at":           true,
}

// OrderSortFields contains allowed sort fields for mirrored orders
var OrderSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"upstream_id":        true,
	"number":             true,
	"name":               true,
	"financial_status":   true,
	"fulfillment_status": true,
	"total_amount":       true,
	"processed_at":       true,
	"synced_at":          true,
}

// InsightSortFields contains allowed sort fields for insights
var InsightSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"type":       true,
	"severity":   true,
	"confidence": true,
	"expires_at": true,
}

// WebhookEventSortFields contains allowed sort fields for webhook ledger rows
var WebhookEventSortFields = map[string]bool{
	"id":          true,
	"topic":       true,
	"status":      true,
	"received_at": true,
}
