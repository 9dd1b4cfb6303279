package sales

import (
	"time"
)

// ============================================================================
// LINE ITEMS & PAYMENTS
// ============================================================================

// LineItem is a single requested or billed line. Items are owned by exactly
// one order or one sale and are replaced wholesale, never edited in place.
type LineItem struct {
	ID          int64   `json:"id" db:"id"`
	ProductID   *int64  `json:"product_id,omitempty" db:"product_id"`
	Description string  `json:"description" db:"description"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
}

// Payment is a partial payment recorded against a sale.
type Payment struct {
	ID       int64     `json:"id" db:"id"`
	Date     time.Time `json:"date" db:"paid_at"`
	Amount   float64   `json:"amount" db:"amount"`
	Comments *string   `json:"comments,omitempty" db:"comments"`
}

// ============================================================================
// ORDER
// ============================================================================

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusDiscarded OrderStatus = "DISCARDED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

type OrderPriority string

const (
	PriorityHigh   OrderPriority = "HIGH"
	PriorityMedium OrderPriority = "MEDIUM"
	PriorityLow    OrderPriority = "LOW"
)

// Order is a client's requested items pending conversion into a sale.
type Order struct {
	ID           int64              `json:"id" db:"id"`
	ClientID     int64              `json:"client_id" db:"client_id"`
	Items        []LineItem         `json:"items" db:"-"`
	DeliveryDate time.Time          `json:"delivery_date" db:"delivery_date"`
	Location     *string            `json:"location,omitempty" db:"location"`
	Comments     *string            `json:"comments,omitempty" db:"comments"`
	Priority     OrderPriority      `json:"priority" db:"priority"`
	Status       OrderStatus        `json:"status" db:"status"`
	Fulfillment  *FulfillmentStatus `json:"fulfillment_status,omitempty" db:"fulfillment_status"`
	SaleID       *int64             `json:"sale_id,omitempty" db:"sale_id"`
	Currency     string             `json:"currency" db:"currency"`
	CreatedBy    int64              `json:"created_by" db:"created_by"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" db:"updated_at"`
}

// NegotiatedPrice is the order value, always derived from its items and never
// stored, so it cannot drift from the line data.
func (o *Order) NegotiatedPrice() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Quantity * item.UnitPrice
	}
	return total
}

// ============================================================================
// SALE
// ============================================================================

type SaleStatus string

const (
	SaleStatusPaid    SaleStatus = "PAID"
	SaleStatusUnpaid  SaleStatus = "UNPAID"
	SaleStatusPartial SaleStatus = "PARTIAL"
)

type SaleType string

const (
	SaleTypeCash   SaleType = "CASH"
	SaleTypeCredit SaleType = "CREDIT"
)

// Sale is a billable transaction with a payment history. Status is always a
// pure function of (TotalAmount, AmountPaid); it is recomputed on every
// mutation and never set directly.
type Sale struct {
	ID           int64      `json:"id" db:"id"`
	ClientID     int64      `json:"client_id" db:"client_id"`
	SaleNumber   string     `json:"sale_number" db:"sale_number"`
	SaleDate     time.Time  `json:"sale_date" db:"sale_date"`
	RecordedDate time.Time  `json:"recorded_date" db:"recorded_date"`
	Items        []LineItem `json:"items" db:"-"`
	TotalAmount  float64    `json:"total_amount" db:"total_amount"`
	Payments     []Payment  `json:"payments" db:"-"`
	Status       SaleStatus `json:"status" db:"status"`
	SaleType     SaleType   `json:"sale_type" db:"sale_type"`
	National     bool       `json:"national" db:"national"`
	Currency     string     `json:"currency" db:"currency"`
	Comments     *string    `json:"comments,omitempty" db:"comments"`
	Location     *string    `json:"location,omitempty" db:"location"`
	OrderID      *int64     `json:"order_id,omitempty" db:"order_id"`
	CreatedBy    int64      `json:"created_by" db:"created_by"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// AmountPaid is the sum of all recorded payments.
func (s *Sale) AmountPaid() float64 {
	var total float64
	for _, p := range s.Payments {
		total += p.Amount
	}
	return total
}

// AmountOwed is the outstanding balance.
func (s *Sale) AmountOwed() float64 {
	return s.TotalAmount - s.AmountPaid()
}

// DeriveStatus computes the payment status from total and paid amounts:
// owed <= 0 is PAID, 0 < owed < total is PARTIAL, otherwise UNPAID.
func DeriveStatus(totalAmount, amountPaid float64) SaleStatus {
	owed := totalAmount - amountPaid
	switch {
	case owed <= 0:
		return SaleStatusPaid
	case owed < totalAmount:
		return SaleStatusPartial
	default:
		return SaleStatusUnpaid
	}
}

// ============================================================================
// REQUEST DTOs
// ============================================================================

type LineItemRequest struct {
	ProductID   *int64  `json:"product_id,omitempty" validate:"omitempty,gt=0"`
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

type CreateOrderRequest struct {
	ClientID     int64             `json:"client_id" validate:"required,gt=0"`
	Items        []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryDate time.Time         `json:"delivery_date" validate:"required"`
	Location     *string           `json:"location,omitempty" validate:"omitempty,max=200"`
	Comments     *string           `json:"comments,omitempty"`
	Priority     *OrderPriority    `json:"priority,omitempty" validate:"omitempty,oneof=HIGH MEDIUM LOW"`
	Currency     string            `json:"currency" validate:"required,oneof=USD MXN"`
}

type UpdateOrderRequest struct {
	ClientID     *int64             `json:"client_id,omitempty" validate:"omitempty,gt=0"`
	Items        *[]LineItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	DeliveryDate *time.Time         `json:"delivery_date,omitempty"`
	Location     *string            `json:"location,omitempty" validate:"omitempty,max=200"`
	Comments     *string            `json:"comments,omitempty"`
	Priority     *OrderPriority     `json:"priority,omitempty" validate:"omitempty,oneof=HIGH MEDIUM LOW"`
	Status       *OrderStatus       `json:"status,omitempty" validate:"omitempty,oneof=PENDING DISCARDED COMPLETED"`
	Currency     *string            `json:"currency,omitempty" validate:"omitempty,oneof=USD MXN"`
}

type CreateSaleRequest struct {
	ClientID   int64             `json:"client_id" validate:"required,gt=0"`
	SaleNumber *string           `json:"sale_number,omitempty" validate:"omitempty,max=100"`
	SaleDate   time.Time         `json:"sale_date" validate:"required"`
	Items      []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	SaleType   *SaleType         `json:"sale_type,omitempty" validate:"omitempty,oneof=CASH CREDIT"`
	National   bool              `json:"national"`
	Currency   string            `json:"currency" validate:"required,oneof=USD MXN"`
	Comments   *string           `json:"comments,omitempty"`
	Location   *string           `json:"location,omitempty" validate:"omitempty,max=200"`
	OrderID    *int64            `json:"order_id,omitempty" validate:"omitempty,gt=0"`
}

type UpdateSaleRequest struct {
	ClientID   *int64             `json:"client_id,omitempty" validate:"omitempty,gt=0"`
	SaleNumber *string            `json:"sale_number,omitempty" validate:"omitempty,max=100"`
	SaleDate   *time.Time         `json:"sale_date,omitempty"`
	Items      *[]LineItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	SaleType   *SaleType          `json:"sale_type,omitempty" validate:"omitempty,oneof=CASH CREDIT"`
	National   *bool              `json:"national,omitempty"`
	Currency   *string            `json:"currency,omitempty" validate:"omitempty,oneof=USD MXN"`
	Comments   *string            `json:"comments,omitempty"`
	Location   *string            `json:"location,omitempty" validate:"omitempty,max=200"`
}

type RecordPaymentRequest struct {
	Date     time.Time `json:"date" validate:"required"`
	Amount   float64   `json:"amount" validate:"required"`
	Comments *string   `json:"comments,omitempty"`
}

type ListOrdersRequest struct {
	ClientID *int64         `json:"client_id,omitempty"`
	Status   *OrderStatus   `json:"status,omitempty"`
	Priority *OrderPriority `json:"priority,omitempty"`
	Limit    int            `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int            `json:"offset" validate:"gte=0"`
}

type ListSalesRequest struct {
	ClientID *int64      `json:"client_id,omitempty"`
	Status   *SaleStatus `json:"status,omitempty"`
	Limit    int         `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int         `json:"offset" validate:"gte=0"`
}
