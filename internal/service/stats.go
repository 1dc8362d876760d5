package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/daffodils/florist-api/internal/dto"
	"github.com/daffodils/florist-api/internal/model"
	"github.com/daffodils/florist-api/internal/repository"
)

const lowStockThreshold = 10

// StatsService computes admin reporting on demand from the store; nothing is
// cached or precomputed.
type StatsService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
}

func NewStatsService(orders repository.OrderRepository, products repository.ProductRepository) *StatsService {
	return &StatsService{orders: orders, products: products}
}

func (s *StatsService) OrderStats(ctx context.Context) (*dto.OrderStatsResponse, error) {
	breakdown, err := s.orders.StatusBreakdown(ctx)
	if err != nil {
		return nil, fmt.Errorf("status breakdown: %w", err)
	}

	resp := &dto.OrderStatsResponse{
		StatusBreakdown: make([]dto.StatusCount, 0, len(breakdown)),
		TotalRevenue:    decimal.Zero,
	}
	for _, agg := range breakdown {
		resp.StatusBreakdown = append(resp.StatusBreakdown, dto.StatusCount{
			Status:     string(agg.Status),
			Count:      agg.Count,
			TotalValue: agg.TotalValue,
		})
		resp.TotalOrders += agg.Count
	}

	revenue, err := s.orders.Revenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("total revenue: %w", err)
	}
	resp.TotalRevenue = revenue
	return resp, nil
}

func (s *StatsService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	now := time.Now().UTC()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startOfWeek := startOfToday.AddDate(0, 0, -daysSinceMonday(startOfToday.Weekday()))
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearAgo := startOfMonth.AddDate(0, -11, 0)

	totalProducts, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	totalOrders, err := s.orders.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	revenue, err := s.orders.Revenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("total revenue: %w", err)
	}

	breakdown, err := s.orders.StatusBreakdown(ctx)
	if err != nil {
		return nil, fmt.Errorf("status breakdown: %w", err)
	}
	byStatus := make(map[string]int, len(breakdown))
	pending := 0
	for _, agg := range breakdown {
		byStatus[string(agg.Status)] = agg.Count
		if agg.Status == model.StatusPending {
			pending = agg.Count
		}
	}

	paymentAgg, err := s.orders.PaymentBreakdown(ctx)
	if err != nil {
		return nil, fmt.Errorf("payment breakdown: %w", err)
	}
	byPayment := make(map[string]int, len(paymentAgg))
	for status, count := range paymentAgg {
		byPayment[string(status)] = count
	}

	today, err := s.orders.CountCreatedSince(ctx, startOfToday)
	if err != nil {
		return nil, fmt.Errorf("count orders today: %w", err)
	}
	week, err := s.orders.CountCreatedSince(ctx, startOfWeek)
	if err != nil {
		return nil, fmt.Errorf("count orders this week: %w", err)
	}
	month, err := s.orders.CountCreatedSince(ctx, startOfMonth)
	if err != nil {
		return nil, fmt.Errorf("count orders this month: %w", err)
	}

	monthly, err := s.orders.MonthlyRevenue(ctx, yearAgo)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	monthlyRevenue := make([]dto.MonthlyRevenue, 0, len(monthly))
	for _, m := range monthly {
		monthlyRevenue = append(monthlyRevenue, dto.MonthlyRevenue{
			Year:    m.Year,
			Month:   m.Month,
			Revenue: m.Revenue,
			Orders:  m.Orders,
		})
	}

	recent, err := s.orders.Recent(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	recentOrders := make([]dto.OrderResponse, 0, len(recent))
	for i := range recent {
		recentOrders = append(recentOrders, dto.ToOrderResponse(&recent[i]))
	}

	lowStock, err := s.products.LowStock(ctx, lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}
	lowStockProducts := make([]dto.LowStockProduct, 0, len(lowStock))
	for _, p := range lowStock {
		lowStockProducts = append(lowStockProducts, dto.LowStockProduct{
			ID:            p.ID,
			Name:          p.Name,
			StockQuantity: p.StockQuantity,
		})
	}

	return &dto.DashboardResponse{
		Overview: dto.DashboardOverview{
			TotalProducts: totalProducts,
			TotalOrders:   totalOrders,
			PendingOrders: pending,
			TotalRevenue:  revenue,
		},
		OrdersByStatus:   byStatus,
		OrdersByPayment:  byPayment,
		OrdersToday:      today,
		OrdersThisWeek:   week,
		OrdersThisMonth:  month,
		MonthlyRevenue:   monthlyRevenue,
		RecentOrders:     recentOrders,
		LowStockProducts: lowStockProducts,
	}, nil
}

func daysSinceMonday(d time.Weekday) int {
	if d == time.Sunday {
		return 6
	}
	return int(d) - 1
}
