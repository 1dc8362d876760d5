package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daffodils/florist-api/internal/repository"
)

func TestStatsService_OrderStats(t *testing.T) {
	store := repository.NewMemoryStore()
	orderSvc := NewOrderService(store.Orders(), store, store, testLogger(), false)
	statsSvc := NewStatsService(store.Orders(), store)

	product := seedProduct(t, store, "stats-bouquet", 100, "10.00")
	var cancelled uuid.UUID
	for i := 0; i < 4; i++ {
		order, err := orderSvc.Create(context.Background(), orderRequest(product.ID, 1, "10.00"))
		require.NoError(t, err)
		cancelled = order.ID
	}
	_, err := orderSvc.UpdateStatus(context.Background(), cancelled, "cancelled", "", uuid.New())
	require.NoError(t, err)

	stats, err := statsSvc.OrderStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalOrders)
	// Cancelled orders are excluded from revenue but counted in the breakdown.
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("30.00")))

	byStatus := make(map[string]int)
	for _, sc := range stats.StatusBreakdown {
		byStatus[sc.Status] = sc.Count
	}
	assert.Equal(t, 3, byStatus["pending"])
	assert.Equal(t, 1, byStatus["cancelled"])
}

func TestStatsService_Dashboard(t *testing.T) {
	store := repository.NewMemoryStore()
	orderSvc := NewOrderService(store.Orders(), store, store, testLogger(), false)
	statsSvc := NewStatsService(store.Orders(), store)

	product := seedProduct(t, store, "dash-bouquet", 100, "25.00")
	low := seedProduct(t, store, "dash-scarce", 3, "40.00")

	var paid uuid.UUID
	for i := 0; i < 3; i++ {
		order, err := orderSvc.Create(context.Background(), orderRequest(product.ID, 1, "25.00"))
		require.NoError(t, err)
		paid = order.ID
	}
	_, err := orderSvc.UpdatePaymentStatus(context.Background(), paid, "paid")
	require.NoError(t, err)

	dash, err := statsSvc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, dash.Overview.TotalProducts)
	assert.Equal(t, 3, dash.Overview.TotalOrders)
	assert.Equal(t, 3, dash.Overview.PendingOrders)
	assert.True(t, dash.Overview.TotalRevenue.Equal(decimal.RequireFromString("75.00")))

	assert.Equal(t, 3, dash.OrdersByStatus["pending"])
	assert.Equal(t, 1, dash.OrdersByPayment["paid"])
	assert.Equal(t, 2, dash.OrdersByPayment["pending"])

	// All three were just created.
	assert.Equal(t, 3, dash.OrdersToday)
	assert.Equal(t, 3, dash.OrdersThisWeek)
	assert.Equal(t, 3, dash.OrdersThisMonth)

	require.Len(t, dash.MonthlyRevenue, 1)
	assert.Equal(t, 3, dash.MonthlyRevenue[0].Orders)

	assert.Len(t, dash.RecentOrders, 3)

	require.Len(t, dash.LowStockProducts, 1)
	assert.Equal(t, low.ID, dash.LowStockProducts[0].ID)
	assert.Equal(t, 3, dash.LowStockProducts[0].StockQuantity)
}
