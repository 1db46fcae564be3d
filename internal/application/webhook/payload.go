package webhook

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecomdash/backend/internal/domain/catalog"
	"github.com/ecomdash/backend/internal/domain/trade"
)

// Webhook payloads carry the platform's REST shape: numeric ids, lowercase
// statuses and decimal amounts as strings. The sync engine writes the same
// mirror rows from the GraphQL shape, so ids are normalized to the GID form
// here to keep (tenant_id, upstream_id) stable across both writers.

func productGID(id int64) string {
	return fmt.Sprintf("gid://shopify/Product/%d", id)
}

func orderGID(id int64) string {
	return fmt.Sprintf("gid://shopify/Order/%d", id)
}

type productPayload struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	ProductType string `json:"product_type"`
	Vendor      string `json:"vendor"`
	Status      string `json:"status"`
	UpdatedAt   string `json:"updated_at"`
	Image       *struct {
		Src string `json:"src"`
	} `json:"image"`
	Variants []struct {
		Price               string `json:"price"`
		InventoryQuantity   int64  `json:"inventory_quantity"`
		InventoryManagement string `json:"inventory_management"`
	} `json:"variants"`
}

func parseProductPayload(raw []byte) (catalog.ProductSnapshot, error) {
	var p productPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return catalog.ProductSnapshot{}, err
	}
	if p.ID == 0 {
		return catalog.ProductSnapshot{}, fmt.Errorf("product payload missing id")
	}

	snapshot := catalog.ProductSnapshot{
		UpstreamID:        productGID(p.ID),
		LegacyID:          p.ID,
		Title:             p.Title,
		Handle:            p.Handle,
		ProductType:       p.ProductType,
		Vendor:            p.Vendor,
		Status:            catalog.ParseProductStatus(p.Status),
		UpstreamUpdatedAt: parseTime(p.UpdatedAt),
	}
	if p.Image != nil {
		snapshot.FeaturedImageURL = p.Image.Src
	}

	for i, variant := range p.Variants {
		snapshot.TotalInventory += variant.InventoryQuantity
		if variant.InventoryManagement != "" {
			snapshot.InventoryTracked = true
		}
		price := parseAmount(variant.Price)
		if i == 0 {
			snapshot.PriceMin = price
			snapshot.PriceMax = price
			continue
		}
		if price.LessThan(snapshot.PriceMin) {
			snapshot.PriceMin = price
		}
		if price.GreaterThan(snapshot.PriceMax) {
			snapshot.PriceMax = price
		}
	}

	return snapshot, nil
}

// productDeletePayload is the minimal body of a products/delete delivery
type productDeletePayload struct {
	ID int64 `json:"id"`
}

func parseProductDeletePayload(raw []byte) (string, error) {
	var p productDeletePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", err
	}
	if p.ID == 0 {
		return "", fmt.Errorf("delete payload missing id")
	}
	return productGID(p.ID), nil
}

type orderPayload struct {
	ID                int64  `json:"id"`
	OrderNumber       int64  `json:"order_number"`
	Name              string `json:"name"`
	FinancialStatus   string `json:"financial_status"`
	FulfillmentStatus string `json:"fulfillment_status"`
	Currency          string `json:"currency"`
	SubtotalPrice     string `json:"subtotal_price"`
	TotalTax          string `json:"total_tax"`
	TotalDiscounts    string `json:"total_discounts"`
	TotalPrice        string `json:"total_price"`
	ProcessedAt       string `json:"processed_at"`
	Customer          *struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	} `json:"customer"`
	LineItems []struct {
		ProductID int64  `json:"product_id"`
		Title     string `json:"title"`
		Quantity  int64  `json:"quantity"`
		Price     string `json:"price"`
	} `json:"line_items"`
	DiscountCodes []struct {
		Code string `json:"code"`
	} `json:"discount_codes"`
}

func parseOrderPayload(raw []byte) (trade.OrderSnapshot, error) {
	var o orderPayload
	if err := json.Unmarshal(raw, &o); err != nil {
		return trade.OrderSnapshot{}, err
	}
	if o.ID == 0 {
		return trade.OrderSnapshot{}, fmt.Errorf("order payload missing id")
	}

	snapshot := trade.OrderSnapshot{
		UpstreamID:        orderGID(o.ID),
		Number:            o.OrderNumber,
		Name:              o.Name,
		FinancialStatus:   trade.FinancialStatus(trade.NormalizeStatus(o.FinancialStatus, string(trade.FinancialStatusPending))),
		FulfillmentStatus: trade.FulfillmentStatus(trade.NormalizeStatus(o.FulfillmentStatus, string(trade.FulfillmentStatusUnfulfilled))),
		Currency:          o.Currency,
		SubtotalAmount:    parseAmount(o.SubtotalPrice),
		TaxAmount:         parseAmount(o.TotalTax),
		DiscountAmount:    parseAmount(o.TotalDiscounts),
		TotalAmount:       parseAmount(o.TotalPrice),
		ProcessedAt:       parseTime(o.ProcessedAt),
		LineItems:         make(trade.LineItems, 0, len(o.LineItems)),
		DiscountCodes:     make(trade.DiscountCodes, 0, len(o.DiscountCodes)),
	}
	if o.Customer != nil {
		if o.Customer.ID != 0 {
			snapshot.CustomerID = fmt.Sprintf("gid://shopify/Customer/%d", o.Customer.ID)
		}
		snapshot.CustomerEmail = o.Customer.Email
	}
	for _, item := range o.LineItems {
		li := trade.LineItem{
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitAmount: parseAmount(item.Price),
		}
		if item.ProductID != 0 {
			li.ProductUpstreamID = productGID(item.ProductID)
		}
		snapshot.LineItems = append(snapshot.LineItems, li)
	}
	for _, dc := range o.DiscountCodes {
		if dc.Code != "" {
			snapshot.DiscountCodes = append(snapshot.DiscountCodes, dc.Code)
		}
	}

	return snapshot, nil
}

// parseAmount reads a decimal string, tolerating empty and malformed values
// as zero so one bad money field does not drop the whole delivery
func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
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
