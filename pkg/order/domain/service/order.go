package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	cartmodel "storefront/pkg/cart/domain/model"
	"storefront/pkg/common/domain"
	"storefront/pkg/order/domain/model"
)

var (
	ErrEmptyCart            = domain.Validation("no order items")
	ErrAddressRequired      = domain.Validation("shipping address, city, postal code and country are required")
	ErrInvalidPaymentMethod = domain.Validation("payment method must be one of COD, Card, UPI")
	ErrTransactionRequired  = domain.Validation("payment transaction id is required")
	ErrAlreadyPaid          = domain.Conflict("order has already been paid with a different transaction")
	ErrSignInRequired       = domain.Unauthorized("not authorized, no token")
	ErrAdminRequired        = domain.Forbidden("not authorized as an admin")
	ErrOrderNotVisible      = domain.Forbidden("not authorized to access this order")
)

type PlaceOrderInput struct {
	Cart            *cartmodel.Cart
	ShippingAddress model.ShippingAddress
	PaymentMethod   model.PaymentMethod
}

// PaymentConfirmation is the gateway payload that moves an order to Paid.
type PaymentConfirmation struct {
	TransactionID string
	Status        string
	UpdateTime    string
	PayerEmail    string
}

type OrderService interface {
	PlaceOrder(ctx context.Context, principal domain.Principal, in PlaceOrderInput) (*model.Order, error)
	FindOrder(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (*model.Order, error)
	ListCustomerOrders(ctx context.Context, principal domain.Principal) ([]model.Order, error)
	ListOrders(ctx context.Context, principal domain.Principal) ([]model.Order, error)

	MarkOrderAsPaid(ctx context.Context, principal domain.Principal, orderID uuid.UUID, confirmation PaymentConfirmation) (*model.Order, error)
	MarkOrderAsDelivered(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (*model.Order, error)
}

func NewOrderService(repo model.OrderRepository, pricing model.PricingPolicy, dispatcher domain.EventDispatcher) OrderService {
	return &orderService{repo: repo, pricing: pricing, dispatcher: dispatcher}
}

type orderService struct {
	repo       model.OrderRepository
	pricing    model.PricingPolicy
	dispatcher domain.EventDispatcher
}

func (s *orderService) PlaceOrder(ctx context.Context, principal domain.Principal, in PlaceOrderInput) (*model.Order, error) {
	if principal.IsAnonymous() {
		return nil, ErrSignInRequired
	}
	if in.Cart == nil || in.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	address, err := normalizeAddress(in.ShippingAddress)
	if err != nil {
		return nil, err
	}
	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	orderID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	items := make([]model.Item, 0, len(in.Cart.Lines))
	for _, line := range in.Cart.Lines {
		items = append(items, model.Item{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			Size:      line.Size,
			Color:     line.Color,
			UnitPrice: line.EffectivePrice(),
			Quantity:  line.Quantity,
		})
	}
	prices := s.pricing.Quote(in.Cart.Total())

	now := time.Now().UTC()
	order := &model.Order{
		ID:               orderID,
		CustomerID:       principal.UserID,
		Items:            items,
		ShippingAddress:  address,
		PaymentMethod:    in.PaymentMethod,
		ItemsPrice:       prices.Items,
		TaxPrice:         prices.Tax,
		ShippingPrice:    prices.Shipping,
		TotalPrice:       prices.Total,
		PaymentState:     model.Unpaid,
		PaymentStatus:    model.Unpaid.String(),
		FulfillmentState: model.Processing,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.dispatch(model.OrderPlaced{OrderID: orderID, CustomerID: order.CustomerID, TotalPrice: order.TotalPrice})
	return order, nil
}

func (s *orderService) FindOrder(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (*model.Order, error) {
	if principal.IsAnonymous() {
		return nil, ErrSignInRequired
	}
	order, err := s.repo.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.VisibleTo(principal) {
		return nil, ErrOrderNotVisible
	}
	return order, nil
}

func (s *orderService) ListCustomerOrders(ctx context.Context, principal domain.Principal) ([]model.Order, error) {
	if principal.IsAnonymous() {
		return nil, ErrSignInRequired
	}
	return s.repo.FindAll(ctx, model.OrderFilter{CustomerID: principal.UserID})
}

func (s *orderService) ListOrders(ctx context.Context, principal domain.Principal) ([]model.Order, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.repo.FindAll(ctx, model.OrderFilter{})
}

// MarkOrderAsPaid records the payment once. Replaying the same transaction returns the order unchanged.
func (s *orderService) MarkOrderAsPaid(ctx context.Context, principal domain.Principal, orderID uuid.UUID, confirmation PaymentConfirmation) (*model.Order, error) {
	confirmation.TransactionID = strings.TrimSpace(confirmation.TransactionID)
	if confirmation.TransactionID == "" {
		return nil, ErrTransactionRequired
	}

	order, err := s.FindOrder(ctx, principal, orderID)
	if err != nil {
		return nil, err
	}

	if order.IsPaid() {
		if order.PaymentResult != nil && order.PaymentResult.TransactionID == confirmation.TransactionID {
			return order, nil
		}
		return nil, ErrAlreadyPaid
	}

	now := time.Now().UTC()
	order.PaymentState = model.Paid
	order.PaidAt = &now
	order.PaymentResult = &model.PaymentResult{
		TransactionID: confirmation.TransactionID,
		Status:        confirmation.Status,
		UpdateTime:    confirmation.UpdateTime,
		PayerEmail:    confirmation.PayerEmail,
	}
	order.PaymentStatus = confirmation.Status
	if order.PaymentStatus == "" {
		order.PaymentStatus = model.Paid.String()
	}

	if err := s.updateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.dispatch(model.OrderPaid{OrderID: orderID, TransactionID: confirmation.TransactionID})
	return order, nil
}

// MarkOrderAsDelivered does not require the order to be paid. Cash on delivery orders are paid afterwards.
func (s *orderService) MarkOrderAsDelivered(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (*model.Order, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	order, err := s.repo.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsDelivered() {
		return order, nil
	}

	now := time.Now().UTC()
	order.FulfillmentState = model.Delivered
	order.DeliveredAt = &now

	if err := s.updateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.dispatch(model.OrderDelivered{OrderID: orderID})
	return order, nil
}

func normalizeAddress(a model.ShippingAddress) (model.ShippingAddress, error) {
	a.Address = strings.TrimSpace(a.Address)
	a.City = strings.TrimSpace(a.City)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
	if a.Address == "" || a.City == "" || a.PostalCode == "" || a.Country == "" {
		return a, ErrAddressRequired
	}
	return a, nil
}

func requireAdmin(principal domain.Principal) error {
	if principal.IsAnonymous() {
		return ErrSignInRequired
	}
	if !principal.IsAdmin {
		return ErrAdminRequired
	}
	return nil
}

func (s *orderService) updateOrder(ctx context.Context, order *model.Order) error {
	order.Version++
	order.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, order)
}

func (s *orderService) dispatch(event domain.Event) {
	if err := s.dispatcher.Dispatch(event); err != nil {
		log.WithError(err).WithField("event", event.Type()).Error("failed to dispatch event")
	}
}
