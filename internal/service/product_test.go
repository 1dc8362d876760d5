package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daffodils/florist-api/internal/dto"
	"github.com/daffodils/florist-api/internal/model"
	"github.com/daffodils/florist-api/internal/repository"
)

func newProductTestEnv(t *testing.T) (*ProductService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewProductService(store, nil, testLogger()), store
}

func TestProductService_Create_Defaults(t *testing.T) {
	svc, _ := newProductTestEnv(t)

	product, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:        "Heather Bundle",
		Description: "Wild Scottish heather",
		Price:       decimal.RequireFromString("14.50"),
		Category:    "Scottish",
		Image:       "/images/heather.jpg",
	}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, model.TypeBouquet, product.ProductType)
	assert.Equal(t, 50, product.StockQuantity)
	assert.True(t, product.InStock)
	assert.False(t, product.Featured)
}

func TestProductService_Create_ExplicitStock(t *testing.T) {
	svc, _ := newProductTestEnv(t)

	stock := 0
	inStock := false
	product, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:          "Out of Season",
		Description:   "Pre-order only",
		Price:         decimal.RequireFromString("22.00"),
		Category:      "Seasonal",
		ProductType:   "arrangement",
		Image:         "/images/oos.jpg",
		StockQuantity: &stock,
		InStock:       &inStock,
	}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, model.TypeArrangement, product.ProductType)
	assert.Zero(t, product.StockQuantity)
	assert.False(t, product.InStock)
}

func TestProductService_Create_NegativePrice(t *testing.T) {
	svc, _ := newProductTestEnv(t)

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:        "Bad Price",
		Description: "n/a",
		Price:       decimal.RequireFromString("-1.00"),
		Category:    "Mixed",
		Image:       "/images/bad.jpg",
	}, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestProductService_Update_Partial(t *testing.T) {
	svc, store := newProductTestEnv(t)
	product := seedProduct(t, store, "eucalyptus", 20, "8.00")

	adminID := uuid.New()
	name := "Eucalyptus Sprigs"
	featured := true
	updated, err := svc.Update(context.Background(), product.ID, dto.UpdateProductRequest{
		Name:     &name,
		Featured: &featured,
	}, adminID)
	require.NoError(t, err)

	assert.Equal(t, "Eucalyptus Sprigs", updated.Name)
	assert.True(t, updated.Featured)
	// Untouched fields keep their values.
	assert.Equal(t, 20, updated.StockQuantity)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("8.00")))
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, adminID, *updated.UpdatedBy)
}

func TestProductService_Update_NotFound(t *testing.T) {
	svc, _ := newProductTestEnv(t)
	_, err := svc.Update(context.Background(), uuid.New(), dto.UpdateProductRequest{}, uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Delete(t *testing.T) {
	svc, store := newProductTestEnv(t)
	product := seedProduct(t, store, "ferns", 5, "4.00")

	require.NoError(t, svc.Delete(context.Background(), product.ID))
	_, err := svc.GetByID(context.Background(), product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), product.ID), ErrProductNotFound)
}

func TestProductService_List_FilterAndPaginate(t *testing.T) {
	svc, store := newProductTestEnv(t)
	for i := 0; i < 5; i++ {
		seedProduct(t, store, "mixed", 10, "10.00")
	}
	premium := seedProduct(t, store, "premium-roses", 10, "45.00")
	premium.Category = model.CategoryPremium
	require.NoError(t, store.Update(context.Background(), premium))

	products, pagination, err := svc.List(context.Background(), dto.ListProductsRequest{
		Page: 1, Limit: 4, SortBy: "createdAt", SortOrder: "desc",
	})
	require.NoError(t, err)
	assert.Len(t, products, 4)
	assert.Equal(t, 6, pagination.TotalProducts)
	assert.Equal(t, 2, pagination.TotalPages)
	assert.True(t, pagination.HasNextPage)
	assert.False(t, pagination.HasPrevPage)

	products, pagination, err = svc.List(context.Background(), dto.ListProductsRequest{
		Page: 1, Limit: 12, Category: "Premium",
	})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "premium-roses", products[0].Name)
	assert.Equal(t, 1, pagination.TotalProducts)
}
