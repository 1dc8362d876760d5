package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Admin struct {
	ID          uuid.UUID
	Username    string
	Email       string
	Password    string // bcrypt hash
	Role        string
	Permissions PermissionSet
	IsActive    bool
	LastLogin   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Product struct {
	ID            uuid.UUID
	Name          string
	Description   string
	Price         decimal.Decimal
	Category      Category
	ProductType   ProductType
	Image         string
	InStock       bool
	StockQuantity int
	Featured      bool
	Tags          []string
	CreatedBy     uuid.UUID
	UpdatedBy     *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CustomerInfo struct {
	Name  string
	Email string
	Phone string
}

type DeliveryInfo struct {
	Address      string
	Date         time.Time
	TimeSlot     string
	Instructions string
	IsExpress    bool
}

type GiftInfo struct {
	IsGift        bool
	Message       string
	RecipientName string
}

// Pricing is stored exactly as supplied at order time; it is never
// re-derived from the live catalog.
type Pricing struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// OrderItem carries a name/price/image snapshot taken when the order was
// placed. Product holds the current catalog record for display and may be
// nil when the product has since been deleted.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	Price     decimal.Decimal
	Image     string
	Quantity  int
	Product   *Product
}

// StatusChange is one entry of an order's append-only status history.
type StatusChange struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Status    OrderStatus
	Notes     string
	UpdatedBy uuid.UUID
	Timestamp time.Time
}

type Order struct {
	ID             uuid.UUID
	OrderNumber    string
	CustomerInfo   CustomerInfo
	Items          []OrderItem
	DeliveryInfo   DeliveryInfo
	GiftInfo       GiftInfo
	Pricing        Pricing
	Status         OrderStatus
	PaymentStatus  PaymentStatus
	PaymentMethod  PaymentMethod
	Notes          string
	TrackingNumber string
	AdminNotes     string
	StatusHistory  []StatusChange
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Contact struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string
	Subject      string
	Message      string
	InquiryType  InquiryType
	Status       ContactStatus
	Priority     string
	AdminNotes   string
	IPAddress    string
	UserAgent    string
	SubmissionID string
	EmailSent    bool
	EmailSentAt  *time.Time
	EmailMsgID   string
	RespondedBy  *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
