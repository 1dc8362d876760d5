package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/daffodils/florist-api/internal/dto"
	"github.com/daffodils/florist-api/internal/model"
	"github.com/daffodils/florist-api/internal/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must be non-negative")
)

const (
	productCacheTTL      = 60 * time.Second
	defaultStockQuantity = 50
)

type ProductService struct {
	products repository.ProductRepository
	cache    *redis.Client
	log      *slog.Logger
}

// NewProductService wires the catalog service. cache may be nil, in which
// case reads always hit the store.
func NewProductService(products repository.ProductRepository, cache *redis.Client, log *slog.Logger) *ProductService {
	return &ProductService{products: products, cache: cache, log: log}
}

func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest, adminID uuid.UUID) (*model.Product, error) {
	if req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	product := &model.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Category:      model.Category(req.Category),
		ProductType:   model.TypeBouquet,
		Image:         req.Image,
		InStock:       true,
		StockQuantity: defaultStockQuantity,
		Featured:      req.Featured,
		Tags:          req.Tags,
		CreatedBy:     adminID,
	}
	if req.ProductType != "" {
		product.ProductType = model.ProductType(req.ProductType)
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.InStock != nil {
		product.InStock = *req.InStock
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// GetByID serves reads through a short-lived cache. Stock counts in the
// cached copy may lag behind order decrements; inStock is advisory and the
// authoritative check happens at order time.
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, productCacheKey(id)).Bytes(); err == nil {
			var p model.Product
			if err := json.Unmarshal(raw, &p); err == nil {
				return &p, nil
			}
		}
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if s.cache != nil {
		if raw, err := json.Marshal(product); err == nil {
			if err := s.cache.Set(ctx, productCacheKey(id), raw, productCacheTTL).Err(); err != nil {
				s.log.Warn("product cache set failed", "error", err)
			}
		}
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context, req dto.ListProductsRequest) ([]model.Product, dto.ProductPagination, error) {
	filter := repository.ProductFilter{
		Category:    req.Category,
		ProductType: req.ProductType,
		Featured:    req.Featured,
		InStock:     req.InStock,
		Search:      req.Search,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
		Limit:       req.Limit,
		Offset:      (req.Page - 1) * req.Limit,
	}
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, dto.ProductPagination{}, fmt.Errorf("list products: %w", err)
	}

	totalPages := (total + req.Limit - 1) / req.Limit
	pagination := dto.ProductPagination{
		CurrentPage:   req.Page,
		TotalPages:    totalPages,
		TotalProducts: total,
		HasNextPage:   req.Page < totalPages,
		HasPrevPage:   req.Page > 1,
	}
	return products, pagination, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest, adminID uuid.UUID) (*model.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ErrInvalidPrice
		}
		product.Price = *req.Price
	}
	if req.Category != nil {
		product.Category = model.Category(*req.Category)
	}
	if req.ProductType != nil {
		product.ProductType = model.ProductType(*req.ProductType)
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.InStock != nil {
		product.InStock = *req.InStock
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}
	if req.Tags != nil {
		product.Tags = req.Tags
	}
	product.UpdatedBy = &adminID

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx, id)
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, productCacheKey(id)).Err(); err != nil {
		s.log.Warn("product cache invalidation failed", "product_id", id, "error", err)
	}
}

func productCacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}
