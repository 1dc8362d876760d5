package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daffodils/florist-api/internal/dto"
	"github.com/daffodils/florist-api/internal/model"
	"github.com/daffodils/florist-api/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOrderTestEnv(t *testing.T, strictFlow bool) (*OrderService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewOrderService(store.Orders(), store, store, testLogger(), strictFlow)
	return svc, store
}

func seedProduct(t *testing.T, store *repository.MemoryStore, name string, stock int, price string) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:          name,
		Description:   "test product",
		Price:         decimal.RequireFromString(price),
		Category:      model.CategoryMixed,
		ProductType:   model.TypeBouquet,
		Image:         "/images/" + name + ".jpg",
		InStock:       true,
		StockQuantity: stock,
		CreatedBy:     uuid.New(),
	}
	require.NoError(t, store.Create(context.Background(), p))
	return p
}

func orderRequest(productID uuid.UUID, quantity int, total string) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		CustomerInfo: dto.OrderCustomerInfo{
			Name:  "Isla McGregor",
			Email: "isla@example.com",
			Phone: "+44 7700 900123",
		},
		Items: []dto.OrderItemRequest{{Product: productID, Quantity: quantity}},
		DeliveryInfo: dto.OrderDeliveryInfo{
			Address:  "12 Rose Street, Edinburgh",
			TimeSlot: "10:00-12:00",
		},
		Pricing: dto.OrderPricing{
			Subtotal: decimal.RequireFromString(total),
			Total:    decimal.RequireFromString(total),
		},
	}
}

func TestOrderService_Create_DecrementsStock(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	product := seedProduct(t, store, "tartan-bouquet", 5, "24.99")

	order, err := svc.Create(context.Background(), orderRequest(product.ID, 3, "74.97"))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, model.PaymentPending, order.PaymentStatus)
	assert.Regexp(t, `^DF\d{9}$`, order.OrderNumber)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "tartan-bouquet", order.Items[0].Name)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("24.99")))

	got, err := store.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.StockQuantity)
}

func TestOrderService_Create_SnapshotSurvivesCatalogChange(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	product := seedProduct(t, store, "highland-roses", 10, "30.00")

	order, err := svc.Create(context.Background(), orderRequest(product.ID, 1, "30.00"))
	require.NoError(t, err)

	product.Name = "renamed"
	product.Price = decimal.RequireFromString("99.00")
	require.NoError(t, store.Update(context.Background(), product))

	got, err := svc.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "highland-roses", got.Items[0].Name)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("30.00")))
	// Current catalog record rides along for display.
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "renamed", got.Items[0].Product.Name)
}

func TestOrderService_Create_BlankFieldAfterTrim(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	product := seedProduct(t, store, "heathers", 5, "8.00")

	req := orderRequest(product.ID, 1, "8.00")
	req.DeliveryInfo.Address = "   "

	_, err := svc.Create(context.Background(), req)

	var blankErr *BlankFieldError
	require.ErrorAs(t, err, &blankErr)
	assert.Equal(t, "deliveryInfo.address", blankErr.Field)

	// Rejected before any store access.
	got, err := store.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockQuantity)

	count, err := store.CountOrders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOrderService_Create_TrimsCustomerFields(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	product := seedProduct(t, store, "snowdrops", 5, "8.00")

	req := orderRequest(product.ID, 1, "8.00")
	req.CustomerInfo.Name = "  Isla McGregor  "
	req.DeliveryInfo.Address = " 12 Rose Street, Edinburgh "

	order, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Isla McGregor", order.CustomerInfo.Name)
	assert.Equal(t, "12 Rose Street, Edinburgh", order.DeliveryInfo.Address)
}

func TestOrderService_Create_PricingMismatch(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	product := seedProduct(t, store, "bluebells", 5, "10.00")

	req := orderRequest(product.ID, 1, "10.00")
	req.Pricing.Total = decimal.RequireFromString("12.00")

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrPricingMismatch)
}

func TestOrderService_Create_NegativePricing(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	product := seedProduct(t, store, "thistles", 5, "10.00")

	req := orderRequest(product.ID, 1, "10.00")
	req.Pricing.Tax = decimal.RequireFromString("-1.00")

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrNegativePricing)
}

func TestOrderService_Create_UnknownProduct(t *testing.T) {
	svc, _ := newOrderTestEnv(t, false)

	_, err := svc.Create(context.Background(), orderRequest(uuid.New(), 1, "10.00"))

	var unknownErr *UnknownProductError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestOrderService_Create_InsufficientStock_NoPartialEffect(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	plenty := seedProduct(t, store, "carnations", 10, "5.00")
	scarce := seedProduct(t, store, "orchids", 1, "20.00")

	req := orderRequest(plenty.ID, 2, "70.00")
	req.Items = append(req.Items, dto.OrderItemRequest{Product: scarce.ID, Quantity: 3})

	_, err := svc.Create(context.Background(), req)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "orchids", stockErr.Name)

	// The whole order rolled back: no decrement on the first item and no
	// dangling order row.
	got, err := store.GetByID(context.Background(), plenty.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.StockQuantity)

	count, err := store.CountOrders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOrderService_Create_ConcurrentLastUnit(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	product := seedProduct(t, store, "last-peony", 1, "15.00")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), orderRequest(product.ID, 1, "15.00"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	got, err := store.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Zero(t, got.StockQuantity)

	count, err := store.CountOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOrderService_UpdateStatus_AppendsHistory(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	product := seedProduct(t, store, "sunflowers", 5, "12.00")
	order, err := svc.Create(context.Background(), orderRequest(product.ID, 1, "12.00"))
	require.NoError(t, err)

	adminID := uuid.New()
	updated, err := svc.UpdateStatus(context.Background(), order.ID, "confirmed", "phone confirmed", adminID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, updated.Status)
	assert.Equal(t, "phone confirmed", updated.AdminNotes)

	require.Len(t, updated.StatusHistory, 1)
	assert.Equal(t, model.StatusConfirmed, updated.StatusHistory[0].Status)
	assert.Equal(t, "phone confirmed", updated.StatusHistory[0].Notes)
	assert.Equal(t, adminID, updated.StatusHistory[0].UpdatedBy)

	// Second transition appends, never rewrites.
	updated, err = svc.UpdateStatus(context.Background(), order.ID, "preparing", "", adminID)
	require.NoError(t, err)
	require.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, "Status changed to preparing", updated.StatusHistory[1].Notes)
	assert.Equal(t, "phone confirmed", updated.AdminNotes)
}

func TestOrderService_UpdateStatus_AnyTransitionByDefault(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	product := seedProduct(t, store, "lilies", 5, "18.00")
	order, err := svc.Create(context.Background(), orderRequest(product.ID, 1, "18.00"))
	require.NoError(t, err)

	// pending -> delivered skips the whole flow; allowed without strict mode.
	updated, err := svc.UpdateStatus(context.Background(), order.ID, "delivered", "", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, updated.Status)

	// Even reviving a terminal status is permitted.
	updated, err = svc.UpdateStatus(context.Background(), order.ID, "pending", "", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, updated.Status)
}

func TestOrderService_UpdateStatus_StrictFlow(t *testing.T) {
	svc, store := newOrderTestEnv(t, true)
	product := seedProduct(t, store, "freesias", 5, "9.00")
	order, err := svc.Create(context.Background(), orderRequest(product.ID, 1, "9.00"))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, "delivered", "", uuid.New())
	assert.ErrorIs(t, err, ErrStatusTransition)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, "confirmed", "", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, updated.Status)

	updated, err = svc.UpdateStatus(context.Background(), order.ID, "cancelled", "", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), order.ID, "confirmed", "", uuid.New())
	assert.ErrorIs(t, err, ErrStatusTransition)
}

func TestOrderService_UpdateStatus_InvalidStatus(t *testing.T) {
	svc, _ := newOrderTestEnv(t, false)
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "shipped", "", uuid.New())
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrderService_UpdatePaymentStatus_NoHistoryEntry(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	product := seedProduct(t, store, "daisies", 5, "7.50")
	order, err := svc.Create(context.Background(), orderRequest(product.ID, 1, "7.50"))
	require.NoError(t, err)

	updated, err := svc.UpdatePaymentStatus(context.Background(), order.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, updated.PaymentStatus)
	assert.Empty(t, updated.StatusHistory)
}

func TestOrderService_Delete(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	product := seedProduct(t, store, "tulips", 5, "11.00")
	order, err := svc.Create(context.Background(), orderRequest(product.ID, 1, "11.00"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), order.ID, uuid.New()))

	_, err = svc.GetByID(context.Background(), order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_GetByID_NotFound(t *testing.T) {
	svc, _ := newOrderTestEnv(t, false)
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_List_InvalidDate(t *testing.T) {
	svc, _ := newOrderTestEnv(t, false)
	_, _, err := svc.List(context.Background(), dto.ListOrdersRequest{
		Page: 1, Limit: 20, DateFrom: "not-a-date",
	})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestOrderService_List_PageBeyondEnd(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	product := seedProduct(t, store, "asters", 50, "6.00")

	for i := 0; i < 2; i++ {
		_, err := svc.Create(context.Background(), orderRequest(product.ID, 1, "6.00"))
		require.NoError(t, err)
	}

	orders, pagination, err := svc.List(context.Background(), dto.ListOrdersRequest{
		Page: 3, Limit: 20,
	})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 3, pagination.CurrentPage)
	assert.Equal(t, 1, pagination.TotalPages)
	assert.Equal(t, 2, pagination.TotalOrders)
	assert.False(t, pagination.HasNextPage)
	assert.True(t, pagination.HasPrevPage)
}

func TestOrderService_List_FiltersByStatus(t *testing.T) {
	svc, store := newOrderTestEnv(t, false)
	product := seedProduct(t, store, "gerberas", 50, "6.00")

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), orderRequest(product.ID, 1, "6.00"))
		require.NoError(t, err)
	}
	confirmed, err := svc.Create(context.Background(), orderRequest(product.ID, 1, "6.00"))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), confirmed.ID, "confirmed", "", uuid.New())
	require.NoError(t, err)

	orders, pagination, err := svc.List(context.Background(), dto.ListOrdersRequest{
		Page: 1, Limit: 20, Status: "pending",
	})
	require.NoError(t, err)
	assert.Len(t, orders, 3)
	assert.Equal(t, 3, pagination.TotalOrders)
	assert.False(t, pagination.HasNextPage)
}
