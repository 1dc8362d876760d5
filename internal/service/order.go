package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daffodils/florist-api/internal/dto"
	"github.com/daffodils/florist-api/internal/model"
	"github.com/daffodils/florist-api/internal/repository"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrPricingMismatch  = errors.New("pricing total does not match subtotal + deliveryFee + tax")
	ErrNegativePricing  = errors.New("pricing fields must be non-negative")
	ErrInvalidDate      = errors.New("invalid date filter")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrInvalidPayment   = errors.New("invalid payment status")
	ErrStatusTransition = errors.New("status transition not allowed")
)

// UnknownProductError aborts order creation when a line item references a
// product id that does not resolve.
type UnknownProductError struct {
	ID uuid.UUID
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("product %s not found", e.ID)
}

// BlankFieldError rejects a required field whose value is empty once
// surrounding whitespace is stripped; the binding layer only catches fields
// that are missing outright.
type BlankFieldError struct {
	Field string
}

func (e *BlankFieldError) Error() string {
	return fmt.Sprintf("field %s must not be blank", e.Field)
}

// InsufficientStockError names the product that cannot cover the requested
// quantity.
type InsufficientStockError struct {
	Name string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %s is out of stock or insufficient quantity", e.Name)
}

type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	tx         repository.TxManager
	log        *slog.Logger
	strictFlow bool
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	tx repository.TxManager,
	log *slog.Logger,
	strictFlow bool,
) *OrderService {
	return &OrderService{orders: orders, products: products, tx: tx, log: log, strictFlow: strictFlow}
}

// Create validates the cart against current stock, persists the order and
// decrements stock for every line item inside one transaction. A decrement
// that cannot cover its quantity rolls the whole order back, so a lost race
// for the last unit leaves no dangling order and no partial decrement.
func (s *OrderService) Create(ctx context.Context, req dto.CreateOrderRequest) (*model.Order, error) {
	if err := normalizeOrderRequest(&req); err != nil {
		return nil, err
	}
	if req.Pricing.Subtotal.IsNegative() || req.Pricing.DeliveryFee.IsNegative() ||
		req.Pricing.Tax.IsNegative() || req.Pricing.Total.IsNegative() {
		return nil, ErrNegativePricing
	}
	expected := req.Pricing.Subtotal.Add(req.Pricing.DeliveryFee).Add(req.Pricing.Tax)
	if !req.Pricing.Total.Equal(expected) {
		return nil, ErrPricingMismatch
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, err := s.products.GetByID(ctx, line.Product)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product == nil {
			return nil, &UnknownProductError{ID: line.Product}
		}
		if !product.InStock || product.StockQuantity < line.Quantity {
			return nil, &InsufficientStockError{Name: product.Name}
		}
		// Snapshot name/price/image; never re-derived from the live product.
		items = append(items, model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  line.Quantity,
		})
	}

	method := model.MethodCreditCard
	if req.PaymentMethod != "" {
		method = model.PaymentMethod(req.PaymentMethod)
	}
	order := &model.Order{
		CustomerInfo: model.CustomerInfo{
			Name:  req.CustomerInfo.Name,
			Email: req.CustomerInfo.Email,
			Phone: req.CustomerInfo.Phone,
		},
		Items: items,
		DeliveryInfo: model.DeliveryInfo{
			Address:      req.DeliveryInfo.Address,
			Date:         req.DeliveryInfo.Date,
			TimeSlot:     req.DeliveryInfo.TimeSlot,
			Instructions: req.DeliveryInfo.Instructions,
			IsExpress:    req.DeliveryInfo.IsExpress,
		},
		Pricing: model.Pricing{
			Subtotal:    req.Pricing.Subtotal,
			DeliveryFee: req.Pricing.DeliveryFee,
			Tax:         req.Pricing.Tax,
			Total:       req.Pricing.Total,
		},
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
		PaymentMethod: method,
		Notes:         req.Notes,
	}
	if req.GiftInfo != nil {
		order.GiftInfo = model.GiftInfo{
			IsGift:        req.GiftInfo.IsGift,
			Message:       req.GiftInfo.Message,
			RecipientName: req.GiftInfo.RecipientName,
		}
	}

	// Retry bounds the order-number race: two orders generated in the same
	// millisecond can collide on the unique constraint.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		order.OrderNumber = generateOrderNumber()
		err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.orders.Create(ctx, order); err != nil {
				return err
			}
			for i := range order.Items {
				if err := s.products.DecrementStock(ctx, order.Items[i].ProductID, order.Items[i].Quantity); err != nil {
					if errors.Is(err, repository.ErrInsufficientStock) {
						return &InsufficientStockError{Name: order.Items[i].Name}
					}
					return err
				}
			}
			return nil
		})
		if !errors.Is(err, repository.ErrDuplicateOrderNumber) {
			break
		}
		s.log.Warn("order number collision, retrying", "order_number", order.OrderNumber)
	}
	if err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			return nil, err
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.log.Info("order created",
		"order_number", order.OrderNumber,
		"items", len(order.Items),
		"total", order.Pricing.Total,
	)
	return s.GetByID(ctx, order.ID)
}

func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, req dto.ListOrdersRequest) ([]model.Order, dto.OrderPagination, error) {
	var pagination dto.OrderPagination

	dateFrom, err := parseDateFilter(req.DateFrom, false)
	if err != nil {
		return nil, pagination, ErrInvalidDate
	}
	dateTo, err := parseDateFilter(req.DateTo, true)
	if err != nil {
		return nil, pagination, ErrInvalidDate
	}

	filter := repository.OrderFilter{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		Search:        req.Search,
		DateFrom:      dateFrom,
		DateTo:        dateTo,
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
		Limit:         req.Limit,
		Offset:        (req.Page - 1) * req.Limit,
	}
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, pagination, fmt.Errorf("list orders: %w", err)
	}
	return orders, dto.NewPagination(req.Page, req.Limit, total), nil
}

// UpdateStatus applies an order-status transition and appends it to the
// order's status history. Without strict flow any status may be set from any
// status.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status, notes string, adminID uuid.UUID) (*model.Order, error) {
	newStatus := model.OrderStatus(status)
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.strictFlow && !order.Status.CanTransition(newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrStatusTransition, order.Status, newStatus)
	}

	historyNotes := notes
	if historyNotes == "" {
		historyNotes = "Status changed to " + status
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		change := &model.StatusChange{
			OrderID:   order.ID,
			Status:    newStatus,
			Notes:     historyNotes,
			UpdatedBy: adminID,
		}
		if err := s.orders.AppendStatusChange(ctx, change); err != nil {
			return err
		}
		order.Status = newStatus
		if notes != "" {
			order.AdminNotes = notes
		}
		return s.orders.Update(ctx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return s.GetByID(ctx, id)
}

// UpdatePaymentStatus sets the payment status. It deliberately does not
// touch the status history, which tracks order-status changes only.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) (*model.Order, error) {
	newStatus := model.PaymentStatus(paymentStatus)
	if !newStatus.Valid() {
		return nil, ErrInvalidPayment
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	order.PaymentStatus = newStatus
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes the order permanently. There is no archival copy and no
// recovery path.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID, adminID uuid.UUID) error {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	s.log.Warn("order hard-deleted",
		"order_number", order.OrderNumber,
		"admin_id", adminID,
	)
	return nil
}

// normalizeOrderRequest trims the free-text customer and delivery fields in
// place. A required field left blank after trimming fails with the field's
// JSON path, so the handler can report it the same way as a binding error.
func normalizeOrderRequest(req *dto.CreateOrderRequest) error {
	required := []struct {
		field string
		value *string
	}{
		{"customerInfo.name", &req.CustomerInfo.Name},
		{"customerInfo.email", &req.CustomerInfo.Email},
		{"customerInfo.phone", &req.CustomerInfo.Phone},
		{"deliveryInfo.address", &req.DeliveryInfo.Address},
		{"deliveryInfo.timeSlot", &req.DeliveryInfo.TimeSlot},
	}
	for _, f := range required {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return &BlankFieldError{Field: f.field}
		}
	}
	req.DeliveryInfo.Instructions = strings.TrimSpace(req.DeliveryInfo.Instructions)
	req.Notes = strings.TrimSpace(req.Notes)
	if req.GiftInfo != nil {
		req.GiftInfo.Message = strings.TrimSpace(req.GiftInfo.Message)
		req.GiftInfo.RecipientName = strings.TrimSpace(req.GiftInfo.RecipientName)
	}
	return nil
}

// generateOrderNumber builds "DF" + the last six digits of unix millis + a
// three-digit random suffix. Collisions are possible; uniqueness is enforced
// by the store's constraint, not by construction.
func generateOrderNumber() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return "DF" + ts[len(ts)-6:] + fmt.Sprintf("%03d", rand.IntN(1000))
}

func parseDateFilter(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
