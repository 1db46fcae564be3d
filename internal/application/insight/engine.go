// Package insight derives actionable findings from the mirrored catalog and
// order data. The engine is a pure function of storage state: re-running it
// refreshes existing open insights instead of growing duplicates.
package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ecomdash/backend/internal/domain/catalog"
	"github.com/ecomdash/backend/internal/domain/insight"
	"github.com/ecomdash/backend/internal/domain/trade"
)

// copyPrinter renders merchant-facing text. Counts in titles and action
// summaries get locale-aware grouping ("12,480 units"), not raw digits.
var copyPrinter = message.NewPrinter(language.English)

// Config holds the engine's thresholds
type Config struct {
	// WindowDays is the trailing analysis window
	WindowDays int
	// VelocityDaysThreshold is the days-of-stock level below which a seller
	// counts as understocked
	VelocityDaysThreshold float64
	// DiscountRateThreshold is the discounted-order fraction above which
	// discounting counts as cannibalizing
	DiscountRateThreshold float64
	// AOVChangeThreshold is the relative AOV change that counts as a trend
	AOVChangeThreshold float64
	// RevenueShareThreshold is the single-product revenue share that counts
	// as concentration
	RevenueShareThreshold float64
	// LowStockMax is the inventory level at or below which a product counts
	// as low stock
	LowStockMax int64
	// TTL is stamped on every draft; an open insight not reconfirmed within
	// it ages out. Zero means drafts never expire.
	TTL time.Duration
}

// Validate validates the configuration and applies defaults
func (c *Config) Validate() error {
	if c.WindowDays <= 0 {
		c.WindowDays = 30
	}
	if c.VelocityDaysThreshold <= 0 {
		c.VelocityDaysThreshold = 7
	}
	if c.DiscountRateThreshold <= 0 || c.DiscountRateThreshold >= 1 {
		c.DiscountRateThreshold = 0.40
	}
	if c.AOVChangeThreshold <= 0 {
		c.AOVChangeThreshold = 0.05
	}
	if c.RevenueShareThreshold <= 0 || c.RevenueShareThreshold >= 1 {
		c.RevenueShareThreshold = 0.20
	}
	if c.LowStockMax <= 0 {
		c.LowStockMax = 5
	}
	return nil
}

// Engine computes insight drafts from a tenant's mirrored state. All methods
// are deterministic for fixed inputs; time enters only through the caller's
// now.
type Engine struct {
	config Config
	logger *zap.Logger
}

// NewEngine creates an insight engine
func NewEngine(config Config, logger *zap.Logger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Engine{config: config, logger: logger}, nil
}

// productStats aggregates one product's window activity
type productStats struct {
	units            int64
	ordersTotal      int64
	ordersDiscounted int64
	revenue          decimal.Decimal
}

// Compute derives all insight drafts for a tenant. orders must already be
// restricted to the trailing window. A failure in one algorithm skips that
// type only; without products or orders there is nothing to say and the
// result is empty.
func (e *Engine) Compute(tenantID uuid.UUID, products []catalog.Product, orders []trade.Order, now time.Time) []insight.Draft {
	if len(products) == 0 || len(orders) == 0 {
		return nil
	}

	stats := e.aggregate(orders)

	type algorithm struct {
		name string
		run  func() []insight.Draft
	}
	algorithms := []algorithm{
		{"understocked_winner", func() []insight.Draft { return e.understockedWinners(products, stats) }},
		{"overstock_slow_mover", func() []insight.Draft { return e.overstockSlowMovers(products, stats) }},
		{"coupon_cannibalization", func() []insight.Draft { return e.couponCannibalization(products, stats) }},
		{"trend_detection", func() []insight.Draft { return e.aovTrend(orders, now) }},
		{"pricing_opportunity", func() []insight.Draft { return e.pricingOpportunity(products, stats) }},
		{"inventory_alert", func() []insight.Draft { return e.inventoryAlert(products) }},
	}

	var drafts []insight.Draft
	for _, alg := range algorithms {
		result := e.runSafely(tenantID, alg.name, alg.run)
		drafts = append(drafts, result...)
	}
	for i := range drafts {
		drafts[i].TTL = e.config.TTL
	}
	return drafts
}

// runSafely isolates one algorithm so a defect in it cannot take down the
// whole run
func (e *Engine) runSafely(tenantID uuid.UUID, name string, run func() []insight.Draft) (drafts []insight.Draft) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Insight algorithm panicked, skipping type",
				zap.String("tenant_id", tenantID.String()),
				zap.String("algorithm", name),
				zap.Any("panic", r),
			)
			drafts = nil
		}
	}()
	return run()
}

// aggregate folds the window's orders into per-product stats keyed by
// upstream product id
func (e *Engine) aggregate(orders []trade.Order) map[string]*productStats {
	stats := make(map[string]*productStats)
	for _, order := range orders {
		discounted := order.HasDiscount()
		seen := make(map[string]bool)
		for _, item := range order.LineItems {
			if item.ProductUpstreamID == "" {
				continue
			}
			ps := stats[item.ProductUpstreamID]
			if ps == nil {
				ps = &productStats{revenue: decimal.Zero}
				stats[item.ProductUpstreamID] = ps
			}
			ps.units += item.Quantity
			ps.revenue = ps.revenue.Add(item.Amount())
			if !seen[item.ProductUpstreamID] {
				seen[item.ProductUpstreamID] = true
				ps.ordersTotal++
				if discounted {
					ps.ordersDiscounted++
				}
			}
		}
	}
	return stats
}

// understockedWinners flags products selling fast enough to stock out within
// the velocity threshold. Only products at or above the tenant's median sales
// qualify, so a trickle seller never triggers it.
func (e *Engine) understockedWinners(products []catalog.Product, stats map[string]*productStats) []insight.Draft {
	medianUnits := quantile(unitValues(stats), 0.50)

	var drafts []insight.Draft
	for i := range products {
		p := &products[i]
		if !p.IsActive() || !p.InventoryTracked {
			continue
		}
		ps := stats[p.UpstreamID]
		if ps == nil || ps.units == 0 || float64(ps.units) < medianUnits {
			continue
		}

		dailySales := float64(ps.units) / float64(e.config.WindowDays)
		if dailySales <= 0 {
			continue
		}
		daysRemaining := float64(p.TotalInventory) / dailySales
		if daysRemaining >= e.config.VelocityDaysThreshold {
			continue
		}

		severity := insight.SeverityHigh
		if daysRemaining < e.config.VelocityDaysThreshold/2 {
			severity = insight.SeverityCritical
		}

		drafts = append(drafts, insight.Draft{
			Type:          insight.InsightTypeUnderstockedWinner,
			Severity:      severity,
			SubjectID:     p.UpstreamID,
			Title:         fmt.Sprintf("%s is about to stock out", p.Title),
			ActionSummary: fmt.Sprintf("Restock now: roughly %.1f days of inventory left at the current sales pace.", daysRemaining),
			Confidence:    0.85,
			Payload: insight.Payload{
				"product_id":        p.AdminID(),
				"product_title":     p.Title,
				"current_inventory": p.TotalInventory,
				"daily_sales":       round2(dailySales),
				"days_remaining":    round1(daysRemaining),
			},
			AdminDeepLink: fmt.Sprintf("/products/%s", p.AdminID()),
		})
	}
	return drafts
}

// overstockSlowMovers flags products holding a top-quintile pile of inventory
// while selling in the bottom quintile
func (e *Engine) overstockSlowMovers(products []catalog.Product, stats map[string]*productStats) []insight.Draft {
	var inventories []float64
	for i := range products {
		if products[i].InventoryTracked && products[i].TotalInventory > 0 {
			inventories = append(inventories, float64(products[i].TotalInventory))
		}
	}
	if len(inventories) < 2 {
		return nil
	}
	inventoryP80 := quantile(inventories, 0.80)
	unitsP20 := quantile(unitValues(stats), 0.20)

	var drafts []insight.Draft
	for i := range products {
		p := &products[i]
		if !p.IsActive() || !p.InventoryTracked {
			continue
		}
		if float64(p.TotalInventory) <= inventoryP80 {
			continue
		}
		var units int64
		if ps := stats[p.UpstreamID]; ps != nil {
			units = ps.units
		}
		if float64(units) > unitsP20 {
			continue
		}

		severity := insight.SeverityMedium
		if units == 0 {
			severity = insight.SeverityHigh
		}

		drafts = append(drafts, insight.Draft{
			Type:          insight.InsightTypeOverstockSlowMover,
			Severity:      severity,
			SubjectID:     p.UpstreamID,
			Title:         fmt.Sprintf("%s is overstocked and barely selling", p.Title),
			ActionSummary: copyPrinter.Sprintf("%d units on hand sold %d in the last %d days. Consider a promotion or markdown to free up capital.", p.TotalInventory, units, e.config.WindowDays),
			Confidence:    0.75,
			Payload: insight.Payload{
				"product_id":        p.AdminID(),
				"product_title":     p.Title,
				"current_inventory": p.TotalInventory,
				"units_sold_30d":    units,
			},
			AdminDeepLink: fmt.Sprintf("/products/%s", p.AdminID()),
		})
	}
	return drafts
}

// couponCannibalization flags high-revenue products whose orders mostly carry
// a discount code: buyers who would likely pay full price are being discounted.
func (e *Engine) couponCannibalization(products []catalog.Product, stats map[string]*productStats) []insight.Draft {
	var revenues []float64
	for _, ps := range stats {
		revenues = append(revenues, ps.revenue.InexactFloat64())
	}
	revenueP60 := quantile(revenues, 0.60)

	byUpstream := productIndex(products)

	var drafts []insight.Draft
	for upstreamID, ps := range stats {
		if ps.ordersTotal == 0 {
			continue
		}
		ratio := float64(ps.ordersDiscounted) / float64(ps.ordersTotal)
		if ratio <= e.config.DiscountRateThreshold {
			continue
		}
		if ps.revenue.InexactFloat64() <= revenueP60 {
			continue
		}
		p := byUpstream[upstreamID]
		if p == nil {
			continue
		}

		severity := insight.SeverityMedium
		if ratio > e.config.DiscountRateThreshold*1.5 {
			severity = insight.SeverityHigh
		}

		drafts = append(drafts, insight.Draft{
			Type:          insight.InsightTypeCouponCannibalization,
			Severity:      severity,
			SubjectID:     upstreamID,
			Title:         fmt.Sprintf("Discounts are eating into %s", p.Title),
			ActionSummary: fmt.Sprintf("%.0f%% of this product's orders used a discount code. Tighten code eligibility or exclude it from sitewide codes.", ratio*100),
			Confidence:    0.70,
			Payload: insight.Payload{
				"product_id":        p.AdminID(),
				"product_title":     p.Title,
				"discount_rate":     round2(ratio),
				"orders_total":      ps.ordersTotal,
				"orders_discounted": ps.ordersDiscounted,
				"total_revenue":     round2(ps.revenue.InexactFloat64()),
			},
			AdminDeepLink: "/discounts",
		})
	}

	sortDraftsBySubject(drafts)
	return drafts
}

// aovTrend compares the last week's average order value against the window
// baseline
func (e *Engine) aovTrend(orders []trade.Order, now time.Time) []insight.Draft {
	weekAgo := now.AddDate(0, 0, -7)

	var baseline, recent trade.SalesTotals
	baseline.Revenue = decimal.Zero
	recent.Revenue = decimal.Zero
	for i := range orders {
		o := &orders[i]
		baseline.OrderCount++
		baseline.Revenue = baseline.Revenue.Add(o.TotalAmount)
		if o.ProcessedAt != nil && o.ProcessedAt.After(weekAgo) {
			recent.OrderCount++
			recent.Revenue = recent.Revenue.Add(o.TotalAmount)
		}
	}
	if recent.OrderCount < 3 || baseline.OrderCount == 0 {
		return nil
	}

	aov30 := baseline.AverageOrderValue().InexactFloat64()
	aov7 := recent.AverageOrderValue().InexactFloat64()
	if aov30 == 0 {
		return nil
	}
	change := (aov7 - aov30) / aov30
	if math.Abs(change) < e.config.AOVChangeThreshold {
		return nil
	}

	severity := insight.SeverityLow
	direction := "up"
	action := "Momentum is positive. Consider raising free-shipping thresholds or bundling to push it further."
	if change < 0 {
		severity = insight.SeverityMedium
		direction = "down"
		action = "Check recent pricing and discount changes; add cross-sells at checkout to lift basket size."
	}

	return []insight.Draft{{
		Type:          insight.InsightTypeTrendDetection,
		Severity:      severity,
		Title:         fmt.Sprintf("Average order value is trending %s", direction),
		ActionSummary: action,
		Confidence:    0.85,
		Payload: insight.Payload{
			"aov_30d":    round2(aov30),
			"aov_7d":     round2(aov7),
			"change_pct": round1(change * 100),
		},
	}}
}

// pricingOpportunity flags revenue concentration in a single product
func (e *Engine) pricingOpportunity(products []catalog.Product, stats map[string]*productStats) []insight.Draft {
	total := decimal.Zero
	var topID string
	var topStats *productStats
	for upstreamID, ps := range stats {
		total = total.Add(ps.revenue)
		if topStats == nil || ps.revenue.GreaterThan(topStats.revenue) ||
			(ps.revenue.Equal(topStats.revenue) && upstreamID < topID) {
			topID = upstreamID
			topStats = ps
		}
	}
	if topStats == nil || total.IsZero() {
		return nil
	}

	share := topStats.revenue.Div(total).InexactFloat64()
	if share < e.config.RevenueShareThreshold {
		return nil
	}
	p := productIndex(products)[topID]
	if p == nil {
		return nil
	}

	return []insight.Draft{{
		Type:          insight.InsightTypePricingOpportunity,
		Severity:      insight.SeverityMedium,
		SubjectID:     topID,
		Title:         fmt.Sprintf("%s drives %.0f%% of your revenue", p.Title, share*100),
		ActionSummary: "Demand for this product is proven. Test a modest price increase or a premium variant.",
		Confidence:    0.90,
		Payload: insight.Payload{
			"product_id":        p.AdminID(),
			"product_title":     p.Title,
			"revenue":           round2(topStats.revenue.InexactFloat64()),
			"units":             topStats.units,
			"revenue_share_pct": round1(share * 100),
		},
		AdminDeepLink: fmt.Sprintf("/products/%s", p.AdminID()),
	}}
}

// inventoryAlert reports how many active, tracked products are nearly out of
// stock. Tenant-scoped: one insight regardless of how many products qualify.
func (e *Engine) inventoryAlert(products []catalog.Product) []insight.Draft {
	type lowProduct struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Inventory int64  `json:"inventory"`
	}

	var low []lowProduct
	for i := range products {
		p := &products[i]
		if p.IsActive() && p.IsLowStock(e.config.LowStockMax) {
			low = append(low, lowProduct{ID: p.AdminID(), Title: p.Title, Inventory: p.TotalInventory})
		}
	}
	if len(low) == 0 {
		return nil
	}

	sort.Slice(low, func(i, j int) bool {
		if low[i].Inventory != low[j].Inventory {
			return low[i].Inventory < low[j].Inventory
		}
		return low[i].ID < low[j].ID
	})
	sample := low
	if len(sample) > 5 {
		sample = sample[:5]
	}

	return []insight.Draft{{
		Type:          insight.InsightTypeInventoryAlert,
		Severity:      insight.SeverityHigh,
		Title:         copyPrinter.Sprintf("%d products are almost out of stock", len(low)),
		ActionSummary: copyPrinter.Sprintf("%d active products have %d or fewer units left. Review and reorder before they stock out.", len(low), e.config.LowStockMax),
		Confidence:    0.95,
		Payload: insight.Payload{
			"low_stock_count": len(low),
			"products":        sample,
		},
		AdminDeepLink: fmt.Sprintf("/products?inventory_quantity_max=%d", e.config.LowStockMax),
	}}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func productIndex(products []catalog.Product) map[string]*catalog.Product {
	index := make(map[string]*catalog.Product, len(products))
	for i := range products {
		index[products[i].UpstreamID] = &products[i]
	}
	return index
}

func unitValues(stats map[string]*productStats) []float64 {
	values := make([]float64, 0, len(stats))
	for _, ps := range stats {
		values = append(values, float64(ps.units))
	}
	return values
}

// quantile returns the q-th quantile of values using linear interpolation.
// Zero for an empty input.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// sortDraftsBySubject makes map-driven output deterministic
func sortDraftsBySubject(drafts []insight.Draft) {
	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].SubjectID < drafts[j].SubjectID
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
