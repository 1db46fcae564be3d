package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderSnapshotFixture() OrderSnapshot {
	processedAt := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	return OrderSnapshot{
		UpstreamID:        "gid://shopify/Order/450789469",
		Number:            1001,
		Name:              "#1001",
		FinancialStatus:   FinancialStatusPaid,
		FulfillmentStatus: FulfillmentStatusFulfilled,
		Currency:          "USD",
		SubtotalAmount:    decimal.NewFromFloat(398.00),
		TaxAmount:         decimal.NewFromFloat(31.84),
		DiscountAmount:    decimal.NewFromFloat(10.00),
		TotalAmount:       decimal.NewFromFloat(419.84),
		CustomerID:        "207119551",
		CustomerEmail:     "bob.norman@example.com",
		LineItems: LineItems{
			{ProductUpstreamID: "gid://shopify/Product/632910392", Title: "IPod Nano - 8GB", Quantity: 2, UnitAmount: decimal.NewFromFloat(199.00)},
		},
		DiscountCodes: DiscountCodes{"SPRING10"},
		ProcessedAt:   &processedAt,
	}
}

func TestNewOrderFromSnapshot(t *testing.T) {
	t.Run("creates mirror row from snapshot", func(t *testing.T) {
		tenantID := uuid.New()

		order, err := NewOrderFromSnapshot(tenantID, orderSnapshotFixture())

		require.NoError(t, err)
		assert.Equal(t, tenantID, order.TenantID)
		assert.Equal(t, "gid://shopify/Order/450789469", order.UpstreamID)
		assert.Equal(t, int64(1001), order.Number)
		assert.Equal(t, "#1001", order.Name)
		assert.Equal(t, FinancialStatusPaid, order.FinancialStatus)
		assert.True(t, order.TotalAmount.Equal(decimal.NewFromFloat(419.84)))
		assert.Len(t, order.LineItems, 1)
		assert.Equal(t, DiscountCodes{"SPRING10"}, order.DiscountCodes)
		assert.NotNil(t, order.ProcessedAt)
	})

	t.Run("fails with empty upstream id", func(t *testing.T) {
		snapshot := orderSnapshotFixture()
		snapshot.UpstreamID = ""

		order, err := NewOrderFromSnapshot(uuid.New(), snapshot)

		assert.Error(t, err)
		assert.Nil(t, order)
	})

	t.Run("defaults statuses and collections", func(t *testing.T) {
		snapshot := OrderSnapshot{UpstreamID: "gid://shopify/Order/1"}

		order, err := NewOrderFromSnapshot(uuid.New(), snapshot)

		require.NoError(t, err)
		assert.Equal(t, FinancialStatusPending, order.FinancialStatus)
		assert.Equal(t, FulfillmentStatusUnfulfilled, order.FulfillmentStatus)
		assert.NotNil(t, order.LineItems)
		assert.NotNil(t, order.DiscountCodes)
		assert.Empty(t, order.LineItems)
	})
}

func TestOrder_ApplySnapshot(t *testing.T) {
	t.Run("absorbs fresher fields and bumps version", func(t *testing.T) {
		order, _ := NewOrderFromSnapshot(uuid.New(), orderSnapshotFixture())
		initialVersion := order.Version
		updated := orderSnapshotFixture()
		updated.FinancialStatus = FinancialStatusRefunded
		updated.TotalAmount = decimal.Zero

		err := order.ApplySnapshot(updated)

		require.NoError(t, err)
		assert.Equal(t, FinancialStatusRefunded, order.FinancialStatus)
		assert.True(t, order.TotalAmount.IsZero())
		assert.Equal(t, initialVersion+1, order.Version)
	})

	t.Run("rejects snapshot of a different upstream order", func(t *testing.T) {
		order, _ := NewOrderFromSnapshot(uuid.New(), orderSnapshotFixture())
		other := orderSnapshotFixture()
		other.UpstreamID = "gid://shopify/Order/999"

		err := order.ApplySnapshot(other)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "different upstream order")
	})
}

func TestOrder_Predicates(t *testing.T) {
	t.Run("discount detection", func(t *testing.T) {
		order, _ := NewOrderFromSnapshot(uuid.New(), orderSnapshotFixture())
		assert.True(t, order.HasDiscount())

		snapshot := orderSnapshotFixture()
		snapshot.DiscountCodes = DiscountCodes{}
		plain, _ := NewOrderFromSnapshot(uuid.New(), snapshot)
		assert.False(t, plain.HasDiscount())
	})

	t.Run("units sold sums line item quantities", func(t *testing.T) {
		snapshot := orderSnapshotFixture()
		snapshot.LineItems = append(snapshot.LineItems, LineItem{
			ProductUpstreamID: "gid://shopify/Product/2",
			Title:             "Case",
			Quantity:          3,
			UnitAmount:        decimal.NewFromFloat(15.00),
		})
		order, _ := NewOrderFromSnapshot(uuid.New(), snapshot)

		assert.Equal(t, int64(5), order.UnitsSold())
	})

	t.Run("paid detection", func(t *testing.T) {
		order, _ := NewOrderFromSnapshot(uuid.New(), orderSnapshotFixture())
		assert.True(t, order.IsPaid())
	})
}

func TestLineItem_Amount(t *testing.T) {
	item := LineItem{Quantity: 3, UnitAmount: decimal.NewFromFloat(19.99)}

	assert.True(t, item.Amount().Equal(decimal.NewFromFloat(59.97)))
}

func TestLineItems_ScanValue(t *testing.T) {
	t.Run("round trips through Value and Scan", func(t *testing.T) {
		items := LineItems{
			{ProductUpstreamID: "gid://shopify/Product/1", Title: "Widget", Quantity: 2, UnitAmount: decimal.NewFromFloat(9.50)},
		}

		raw, err := items.Value()
		require.NoError(t, err)

		var scanned LineItems
		require.NoError(t, scanned.Scan(raw))
		require.Len(t, scanned, 1)
		assert.Equal(t, "Widget", scanned[0].Title)
		assert.True(t, scanned[0].UnitAmount.Equal(decimal.NewFromFloat(9.50)))
	})

	t.Run("scans nil into empty slice", func(t *testing.T) {
		var scanned LineItems
		require.NoError(t, scanned.Scan(nil))
		assert.NotNil(t, scanned)
		assert.Empty(t, scanned)
	})

	t.Run("rejects unsupported source type", func(t *testing.T) {
		var scanned LineItems
		assert.Error(t, scanned.Scan(42))
	})
}

func TestDiscountCodes_ScanValue(t *testing.T) {
	codes := DiscountCodes{"SPRING10", "VIP"}

	raw, err := codes.Value()
	require.NoError(t, err)

	var scanned DiscountCodes
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, codes, scanned)
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, "paid", NormalizeStatus("PAID", "pending"))
	assert.Equal(t, "pending", NormalizeStatus("", "pending"))
	assert.Equal(t, "partially_refunded", NormalizeStatus(" Partially_Refunded ", "pending"))
}

func TestSalesTotals_AverageOrderValue(t *testing.T) {
	t.Run("divides revenue by count", func(t *testing.T) {
		totals := SalesTotals{OrderCount: 4, Revenue: decimal.NewFromFloat(200.00)}

		assert.True(t, totals.AverageOrderValue().Equal(decimal.NewFromFloat(50.00)))
	})

	t.Run("zero orders yields zero", func(t *testing.T) {
		totals := SalesTotals{}

		assert.True(t, totals.AverageOrderValue().IsZero())
	})
}
