package model

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/pkg/common/domain"
)

var (
	ErrOrderNotFound  = domain.NotFound("order not found")
	ErrOptimisticLock = domain.Conflict("order has been modified by another transaction")
)

type PaymentMethod string

const (
	CashOnDelivery PaymentMethod = "COD"
	Card           PaymentMethod = "Card"
	UPI            PaymentMethod = "UPI"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case CashOnDelivery, Card, UPI:
		return true
	}
	return false
}

type PaymentState int

const (
	Unpaid PaymentState = iota
	Paid
)

func (s PaymentState) String() string {
	if s == Paid {
		return "Paid"
	}
	return "Pending"
}

type FulfillmentState int

const (
	Processing FulfillmentState = iota
	Delivered
)

func (s FulfillmentState) String() string {
	if s == Delivered {
		return "Delivered"
	}
	return "Processing"
}

type ShippingAddress struct {
	Address    string
	City       string
	PostalCode string
	Country    string
}

// Item is an order line captured by value. Later catalog changes never reach it.
type Item struct {
	ProductID uuid.UUID
	Name      string
	Image     string
	Size      string
	Color     string
	UnitPrice decimal.Decimal
	Quantity  int
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PaymentResult is what the payment gateway reported when the order was paid.
type PaymentResult struct {
	TransactionID string
	Status        string
	UpdateTime    string
	PayerEmail    string
}

type Order struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	Items           []Item
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod

	ItemsPrice    decimal.Decimal
	TaxPrice      decimal.Decimal
	ShippingPrice decimal.Decimal
	TotalPrice    decimal.Decimal

	PaymentState  PaymentState
	PaymentStatus string
	PaymentResult *PaymentResult
	PaidAt        *time.Time

	FulfillmentState FulfillmentState
	DeliveredAt      *time.Time

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o *Order) IsPaid() bool      { return o.PaymentState == Paid }
func (o *Order) IsDelivered() bool { return o.FulfillmentState == Delivered }

// VisibleTo reports whether the principal may read the order.
func (o *Order) VisibleTo(p domain.Principal) bool {
	return p.IsAdmin || (!p.IsAnonymous() && p.UserID == o.CustomerID)
}

type OrderFilter struct {
	// CustomerID narrows the result to one customer. uuid.Nil means every customer.
	CustomerID uuid.UUID
}

type OrderRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, order *Order) error
	Find(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, error)
	// Update persists the order if the stored version is order.Version-1, otherwise it returns ErrOptimisticLock.
	Update(ctx context.Context, order *Order) error
}
