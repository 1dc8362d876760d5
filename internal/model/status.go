package model

// OrderStatus is the order lifecycle state. There is no enforced transition
// graph by default: an operator may set any status from any status. The
// strict flow below is opt-in via STRICT_STATUS_FLOW.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "out-for-delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// strictFlow is the opt-in transition table. Cancellation is allowed from
// every non-terminal state.
var strictFlow = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether from -> to is allowed under the strict flow.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range strictFlow[s] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentStatus is tracked independently of OrderStatus; nothing couples
// the two.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodCreditCard     PaymentMethod = "credit-card"
	MethodDebitCard      PaymentMethod = "debit-card"
	MethodPayPal         PaymentMethod = "paypal"
	MethodCashOnDelivery PaymentMethod = "cash-on-delivery"
)

type Category string

const (
	CategoryScottish  Category = "Scottish"
	CategoryColombian Category = "Colombian"
	CategoryMixed     Category = "Mixed"
	CategorySeasonal  Category = "Seasonal"
	CategoryPremium   Category = "Premium"
)

type ProductType string

const (
	TypeBouquet     ProductType = "bouquet"
	TypeArrangement ProductType = "arrangement"
	TypeBundle      ProductType = "bundle"
	TypeSeasonal    ProductType = "seasonal"
	TypeCenterpiece ProductType = "centerpiece"
	TypeOccasion    ProductType = "occasion"
)

type ContactStatus string

const (
	ContactNew        ContactStatus = "new"
	ContactRead       ContactStatus = "read"
	ContactInProgress ContactStatus = "in-progress"
	ContactResolved   ContactStatus = "resolved"
	ContactClosed     ContactStatus = "closed"
)

func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactRead, ContactInProgress, ContactResolved, ContactClosed:
		return true
	}
	return false
}

type InquiryType string

const (
	InquiryGeneral   InquiryType = "general"
	InquiryCustom    InquiryType = "custom"
	InquiryWedding   InquiryType = "wedding"
	InquiryCorporate InquiryType = "corporate"
	InquiryDelivery  InquiryType = "delivery"
	InquiryComplaint InquiryType = "complaint"
)
