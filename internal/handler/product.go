package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daffodils/florist-api/internal/dto"
	"github.com/daffodils/florist-api/internal/middleware"
	"github.com/daffodils/florist-api/internal/service"
)

type ProductHandler struct {
	products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	products, pagination, err := h.products.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch products.")
		return
	}

	resp := dto.ProductListResponse{
		Products:   make([]dto.ProductResponse, 0, len(products)),
		Pagination: pagination,
	}
	for i := range products {
		resp.Products = append(resp.Products, dto.ToProductResponse(&products[i]))
	}
	respondOK(c, http.StatusOK, resp)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found.")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to fetch product.")
		return
	}
	respondOK(c, http.StatusOK, dto.ToProductResponse(product))
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	admin := middleware.GetAdmin(c)
	product, err := h.products.Create(c.Request.Context(), req, admin.ID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPrice) {
			respondError(c, http.StatusBadRequest, "Price must be non-negative.")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to create product.")
		return
	}
	respondMessage(c, http.StatusCreated, "Product created successfully.", dto.ToProductResponse(product))
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	admin := middleware.GetAdmin(c)
	product, err := h.products.Update(c.Request.Context(), id, req, admin.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, http.StatusNotFound, "Product not found.")
		case errors.Is(err, service.ErrInvalidPrice):
			respondError(c, http.StatusBadRequest, "Price must be non-negative.")
		default:
			respondError(c, http.StatusInternalServerError, "Failed to update product.")
		}
		return
	}
	respondMessage(c, http.StatusOK, "Product updated successfully.", dto.ToProductResponse(product))
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found.")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to delete product.")
		return
	}
	respondMessage(c, http.StatusOK, "Product deleted successfully.", nil)
}
