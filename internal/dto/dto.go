package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/daffodils/florist-api/internal/model"
)

// --- Auth ---

// LoginRequest accepts either email or username; the handler rejects
// requests carrying neither.
type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required,min=6"`
}

type AuthResponse struct {
	Token string        `json:"token"`
	Admin AdminResponse `json:"admin"`
}

type AdminResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Permissions []string   `json:"permissions"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
}

// --- Product ---

type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required,max=100"`
	Description   string          `json:"description" binding:"required,max=1000"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	Category      string          `json:"category" binding:"required,oneof=Scottish Colombian Mixed Seasonal Premium"`
	ProductType   string          `json:"productType" binding:"omitempty,oneof=bouquet arrangement bundle seasonal centerpiece occasion"`
	Image         string          `json:"image" binding:"required"`
	StockQuantity *int            `json:"stockQuantity" binding:"omitempty,min=0"`
	InStock       *bool           `json:"inStock"`
	Featured      bool            `json:"featured"`
	Tags          []string        `json:"tags"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,max=100"`
	Description   *string          `json:"description" binding:"omitempty,max=1000"`
	Price         *decimal.Decimal `json:"price"`
	Category      *string          `json:"category" binding:"omitempty,oneof=Scottish Colombian Mixed Seasonal Premium"`
	ProductType   *string          `json:"productType" binding:"omitempty,oneof=bouquet arrangement bundle seasonal centerpiece occasion"`
	Image         *string          `json:"image"`
	StockQuantity *int             `json:"stockQuantity" binding:"omitempty,min=0"`
	InStock       *bool            `json:"inStock"`
	Featured      *bool            `json:"featured"`
	Tags          []string         `json:"tags"`
}

type ListProductsRequest struct {
	Page        int    `form:"page,default=1" binding:"min=1"`
	Limit       int    `form:"limit,default=12" binding:"min=1,max=100"`
	Category    string `form:"category" binding:"omitempty,oneof=Scottish Colombian Mixed Seasonal Premium"`
	ProductType string `form:"productType" binding:"omitempty,oneof=bouquet arrangement bundle seasonal centerpiece occasion"`
	Featured    *bool  `form:"featured"`
	InStock     *bool  `form:"inStock"`
	Search      string `form:"search"`
	SortBy      string `form:"sortBy,default=createdAt" binding:"oneof=name price createdAt stockQuantity"`
	SortOrder   string `form:"sortOrder,default=desc" binding:"oneof=asc desc"`
}

type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	ProductType   string          `json:"productType"`
	Image         string          `json:"image"`
	InStock       bool            `json:"inStock"`
	StockQuantity int             `json:"stockQuantity"`
	Featured      bool            `json:"featured"`
	Tags          []string        `json:"tags,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Pagination ProductPagination `json:"pagination"`
}

type ProductPagination struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalProducts int  `json:"totalProducts"`
	HasNextPage   bool `json:"hasNextPage"`
	HasPrevPage   bool `json:"hasPrevPage"`
}

// --- Order ---

type OrderCustomerInfo struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

type OrderItemRequest struct {
	Product  uuid.UUID `json:"product" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

type OrderDeliveryInfo struct {
	Address      string    `json:"address" binding:"required"`
	Date         time.Time `json:"date" binding:"required"`
	TimeSlot     string    `json:"timeSlot" binding:"required"`
	Instructions string    `json:"instructions"`
	IsExpress    bool      `json:"isExpress"`
}

type OrderGiftInfo struct {
	IsGift        bool   `json:"isGift"`
	Message       string `json:"message"`
	RecipientName string `json:"recipientName"`
}

type OrderPricing struct {
	Subtotal    decimal.Decimal `json:"subtotal" binding:"required"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total" binding:"required"`
}

type CreateOrderRequest struct {
	CustomerInfo  OrderCustomerInfo  `json:"customerInfo" binding:"required"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryInfo  OrderDeliveryInfo  `json:"deliveryInfo" binding:"required"`
	GiftInfo      *OrderGiftInfo     `json:"giftInfo"`
	Pricing       OrderPricing       `json:"pricing" binding:"required"`
	PaymentMethod string             `json:"paymentMethod" binding:"omitempty,oneof=credit-card debit-card paypal cash-on-delivery"`
	Notes         string             `json:"notes"`
}

type ListOrdersRequest struct {
	Page          int    `form:"page,default=1" binding:"min=1"`
	Limit         int    `form:"limit,default=20" binding:"min=1,max=100"`
	Status        string `form:"status" binding:"omitempty,oneof=pending confirmed preparing out-for-delivery delivered cancelled"`
	PaymentStatus string `form:"paymentStatus" binding:"omitempty,oneof=pending paid failed refunded"`
	Search        string `form:"search"`
	DateFrom      string `form:"dateFrom"`
	DateTo        string `form:"dateTo"`
	SortBy        string `form:"sortBy,default=createdAt" binding:"oneof=createdAt total status orderNumber"`
	SortOrder     string `form:"sortOrder,default=desc" binding:"oneof=asc desc"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed preparing out-for-delivery delivered cancelled"`
	Notes  string `json:"notes"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required,oneof=pending paid failed refunded"`
}

type OrderItemResponse struct {
	ID       uuid.UUID       `json:"id"`
	Product  uuid.UUID       `json:"product"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity"`
	// Current catalog record for display; null when the product was deleted.
	ProductInfo *ProductResponse `json:"productInfo,omitempty"`
}

type StatusChangeResponse struct {
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	UpdatedBy uuid.UUID `json:"updatedBy"`
	Timestamp time.Time `json:"timestamp"`
}

type OrderResponse struct {
	ID             uuid.UUID              `json:"id"`
	OrderNumber    string                 `json:"orderNumber"`
	CustomerInfo   OrderCustomerInfo      `json:"customerInfo"`
	Items          []OrderItemResponse    `json:"items"`
	DeliveryInfo   OrderDeliveryInfo      `json:"deliveryInfo"`
	GiftInfo       OrderGiftInfo          `json:"giftInfo"`
	Pricing        OrderPricing           `json:"pricing"`
	Status         string                 `json:"status"`
	PaymentStatus  string                 `json:"paymentStatus"`
	PaymentMethod  string                 `json:"paymentMethod"`
	Notes          string                 `json:"notes,omitempty"`
	TrackingNumber string                 `json:"trackingNumber,omitempty"`
	AdminNotes     string                 `json:"adminNotes,omitempty"`
	StatusHistory  []StatusChangeResponse `json:"statusHistory"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

type OrderPagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalOrders int  `json:"totalOrders"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type OrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	Pagination OrderPagination `json:"pagination"`
}

// --- Contact ---

type SubmitContactRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"omitempty,max=20"`
	Subject     string `json:"subject" binding:"omitempty,max=200"`
	Message     string `json:"message" binding:"required,min=10,max=2000"`
	InquiryType string `json:"inquiryType" binding:"omitempty,oneof=general custom wedding corporate delivery complaint"`
}

type ListContactsRequest struct {
	Page        int    `form:"page,default=1" binding:"min=1"`
	Limit       int    `form:"limit,default=20" binding:"min=1,max=100"`
	Status      string `form:"status" binding:"omitempty,oneof=new read in-progress resolved closed"`
	InquiryType string `form:"inquiryType" binding:"omitempty,oneof=general custom wedding corporate delivery complaint"`
}

type UpdateContactStatusRequest struct {
	Status     string `json:"status" binding:"required,oneof=new read in-progress resolved closed"`
	AdminNotes string `json:"adminNotes" binding:"omitempty,max=1000"`
}

type ContactResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Subject      string    `json:"subject,omitempty"`
	Message      string    `json:"message"`
	InquiryType  string    `json:"inquiryType"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	AdminNotes   string    `json:"adminNotes,omitempty"`
	SubmissionID string    `json:"submissionId"`
	EmailSent    bool      `json:"emailSent"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ContactListResponse struct {
	Contacts   []ContactResponse `json:"contacts"`
	Pagination OrderPagination   `json:"pagination"`
}

// --- Statistics ---

type StatusCount struct {
	Status     string          `json:"status"`
	Count      int             `json:"count"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

type MonthlyRevenue struct {
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type OrderStatsResponse struct {
	StatusBreakdown []StatusCount   `json:"statusBreakdown"`
	TotalOrders     int             `json:"totalOrders"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}

type DashboardOverview struct {
	TotalProducts int             `json:"totalProducts"`
	TotalOrders   int             `json:"totalOrders"`
	PendingOrders int             `json:"pendingOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

type LowStockProduct struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	StockQuantity int       `json:"stockQuantity"`
}

type DashboardResponse struct {
	Overview         DashboardOverview `json:"overview"`
	OrdersByStatus   map[string]int    `json:"ordersByStatus"`
	OrdersByPayment  map[string]int    `json:"ordersByPayment"`
	OrdersToday      int               `json:"ordersToday"`
	OrdersThisWeek   int               `json:"ordersThisWeek"`
	OrdersThisMonth  int               `json:"ordersThisMonth"`
	MonthlyRevenue   []MonthlyRevenue  `json:"monthlyRevenue"`
	RecentOrders     []OrderResponse   `json:"recentOrders"`
	LowStockProducts []LowStockProduct `json:"lowStockProducts"`
}

// FieldError is one entry of the field-level error list returned on 400s.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func ToProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Category:      string(p.Category),
		ProductType:   string(p.ProductType),
		Image:         p.Image,
		InStock:       p.InStock,
		StockQuantity: p.StockQuantity,
		Featured:      p.Featured,
		Tags:          p.Tags,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func ToOrderResponse(o *model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		ir := OrderItemResponse{
			ID:       item.ID,
			Product:  item.ProductID,
			Name:     item.Name,
			Price:    item.Price,
			Image:    item.Image,
			Quantity: item.Quantity,
		}
		if item.Product != nil {
			pr := ToProductResponse(item.Product)
			ir.ProductInfo = &pr
		}
		items = append(items, ir)
	}
	history := make([]StatusChangeResponse, 0, len(o.StatusHistory))
	for _, sc := range o.StatusHistory {
		history = append(history, StatusChangeResponse{
			Status:    string(sc.Status),
			Notes:     sc.Notes,
			UpdatedBy: sc.UpdatedBy,
			Timestamp: sc.Timestamp,
		})
	}
	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		CustomerInfo: OrderCustomerInfo{
			Name:  o.CustomerInfo.Name,
			Email: o.CustomerInfo.Email,
			Phone: o.CustomerInfo.Phone,
		},
		Items: items,
		DeliveryInfo: OrderDeliveryInfo{
			Address:      o.DeliveryInfo.Address,
			Date:         o.DeliveryInfo.Date,
			TimeSlot:     o.DeliveryInfo.TimeSlot,
			Instructions: o.DeliveryInfo.Instructions,
			IsExpress:    o.DeliveryInfo.IsExpress,
		},
		GiftInfo: OrderGiftInfo{
			IsGift:        o.GiftInfo.IsGift,
			Message:       o.GiftInfo.Message,
			RecipientName: o.GiftInfo.RecipientName,
		},
		Pricing: OrderPricing{
			Subtotal:    o.Pricing.Subtotal,
			DeliveryFee: o.Pricing.DeliveryFee,
			Tax:         o.Pricing.Tax,
			Total:       o.Pricing.Total,
		},
		Status:         string(o.Status),
		PaymentStatus:  string(o.PaymentStatus),
		PaymentMethod:  string(o.PaymentMethod),
		Notes:          o.Notes,
		TrackingNumber: o.TrackingNumber,
		AdminNotes:     o.AdminNotes,
		StatusHistory:  history,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func ToContactResponse(ct *model.Contact) ContactResponse {
	return ContactResponse{
		ID:           ct.ID,
		Name:         ct.Name,
		Email:        ct.Email,
		Phone:        ct.Phone,
		Subject:      ct.Subject,
		Message:      ct.Message,
		InquiryType:  string(ct.InquiryType),
		Status:       string(ct.Status),
		Priority:     ct.Priority,
		AdminNotes:   ct.AdminNotes,
		SubmissionID: ct.SubmissionID,
		EmailSent:    ct.EmailSent,
		CreatedAt:    ct.CreatedAt,
	}
}

func ToAdminResponse(a *model.Admin) AdminResponse {
	return AdminResponse{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		Role:        a.Role,
		Permissions: a.Permissions.Strings(),
		LastLogin:   a.LastLogin,
	}
}

// NewPagination computes the pagination block shared by admin listings.
func NewPagination(page, limit, total int) OrderPagination {
	totalPages := (total + limit - 1) / limit
	return OrderPagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalOrders: total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
