package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daffodils/florist-api/internal/dto"
	"github.com/daffodils/florist-api/internal/middleware"
	"github.com/daffodils/florist-api/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
	stats  *service.StatsService
}

func NewOrderHandler(orders *service.OrderService, stats *service.StatsService) *OrderHandler {
	return &OrderHandler{orders: orders, stats: stats}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		var stockErr *service.InsufficientStockError
		var unknownErr *service.UnknownProductError
		var blankErr *service.BlankFieldError
		switch {
		case errors.As(err, &blankErr):
			respondFieldError(c, blankErr.Field, "This field is required.")
		case errors.As(err, &stockErr):
			respondError(c, http.StatusBadRequest, stockErr.Error()+".")
		case errors.As(err, &unknownErr):
			respondError(c, http.StatusBadRequest, "One or more products in your order were not found.")
		case errors.Is(err, service.ErrPricingMismatch),
			errors.Is(err, service.ErrNegativePricing):
			respondError(c, http.StatusBadRequest, "Order pricing is invalid.")
		default:
			respondError(c, http.StatusInternalServerError, "Failed to create order.")
		}
		return
	}
	respondMessage(c, http.StatusCreated, "Order placed successfully.", dto.ToOrderResponse(order))
}

func (h *OrderHandler) List(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	orders, pagination, err := h.orders.List(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			respondError(c, http.StatusBadRequest, "Invalid date filter.")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to fetch orders.")
		return
	}

	resp := dto.OrderListResponse{
		Orders:     make([]dto.OrderResponse, 0, len(orders)),
		Pagination: pagination,
	}
	for i := range orders {
		resp.Orders = append(resp.Orders, dto.ToOrderResponse(&orders[i]))
	}
	respondOK(c, http.StatusOK, resp)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, http.StatusNotFound, "Order not found.")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to fetch order.")
		return
	}
	respondOK(c, http.StatusOK, dto.ToOrderResponse(order))
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	admin := middleware.GetAdmin(c)
	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status, req.Notes, admin.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, http.StatusNotFound, "Order not found.")
		case errors.Is(err, service.ErrInvalidStatus):
			respondError(c, http.StatusBadRequest, "Invalid order status.")
		case errors.Is(err, service.ErrStatusTransition):
			respondError(c, http.StatusBadRequest, "This status change is not allowed.")
		default:
			respondError(c, http.StatusInternalServerError, "Failed to update order status.")
		}
		return
	}
	respondMessage(c, http.StatusOK, "Order status updated successfully.", dto.ToOrderResponse(order))
}

func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orders.UpdatePaymentStatus(c.Request.Context(), id, req.PaymentStatus)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, http.StatusNotFound, "Order not found.")
		case errors.Is(err, service.ErrInvalidPayment):
			respondError(c, http.StatusBadRequest, "Invalid payment status.")
		default:
			respondError(c, http.StatusInternalServerError, "Failed to update payment status.")
		}
		return
	}
	respondMessage(c, http.StatusOK, "Payment status updated successfully.", dto.ToOrderResponse(order))
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	admin := middleware.GetAdmin(c)
	if err := h.orders.Delete(c.Request.Context(), id, admin.ID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, http.StatusNotFound, "Order not found.")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to delete order.")
		return
	}
	respondMessage(c, http.StatusOK, "Order deleted successfully.", nil)
}

func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.stats.OrderStats(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to compute order statistics.")
		return
	}
	respondOK(c, http.StatusOK, stats)
}
