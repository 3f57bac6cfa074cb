package service

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	cartmodel "storefront/pkg/cart/domain/model"
	cartservice "storefront/pkg/cart/domain/service"
	"storefront/pkg/common/domain"
	notificationservice "storefront/pkg/notification/domain/service"
	ordermodel "storefront/pkg/order/domain/model"
	orderservice "storefront/pkg/order/domain/service"
	userservice "storefront/pkg/user/domain/service"
)

type CheckoutInput struct {
	SessionID       string
	ShippingAddress ordermodel.ShippingAddress
	PaymentMethod   ordermodel.PaymentMethod
}

// CheckoutService turns a shopper's cart into an order and keeps the shopper informed.
type CheckoutService interface {
	Checkout(ctx context.Context, principal domain.Principal, in CheckoutInput) (*ordermodel.Order, error)
	DeliverOrder(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (*ordermodel.Order, error)
}

func NewCheckoutService(
	carts cartservice.CartService,
	orders orderservice.OrderService,
	users userservice.UserService,
	notifications notificationservice.NotificationService,
) CheckoutService {
	return &checkoutService{
		carts:         carts,
		orders:        orders,
		users:         users,
		notifications: notifications,
	}
}

type checkoutService struct {
	carts         cartservice.CartService
	orders        orderservice.OrderService
	users         userservice.UserService
	notifications notificationservice.NotificationService
}

// Checkout places an order from the session cart. The cart stays locked until the order is stored and is
// emptied only afterwards, so a repeated submit finds an empty cart. The confirmation mail is best effort.
func (s *checkoutService) Checkout(ctx context.Context, principal domain.Principal, in CheckoutInput) (*ordermodel.Order, error) {
	if principal.IsAnonymous() {
		return nil, orderservice.ErrSignInRequired
	}
	var order *ordermodel.Order
	err := s.carts.Consume(ctx, in.SessionID, func(cart *cartmodel.Cart) error {
		placed, err := s.orders.PlaceOrder(ctx, principal, orderservice.PlaceOrderInput{
			Cart:            cart,
			ShippingAddress: in.ShippingAddress,
			PaymentMethod:   in.PaymentMethod,
		})
		if err != nil {
			return err
		}
		order = placed
		return nil
	})
	if err != nil {
		return nil, err
	}

	user, err := s.users.Profile(ctx, principal)
	if err != nil {
		log.WithError(err).WithField("order", order.ID).Error("failed to load customer for order confirmation")
		return order, nil
	}
	if err := s.notifications.NotifyOrderConfirmation(ctx, user.ID, user.Email, order.ID, order.TotalPrice); err != nil {
		log.WithError(err).WithField("order", order.ID).Error("failed to send order confirmation")
	}
	return order, nil
}

func (s *checkoutService) DeliverOrder(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (*ordermodel.Order, error) {
	before, err := s.orders.FindOrder(ctx, principal, orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.MarkOrderAsDelivered(ctx, principal, orderID)
	if err != nil {
		return nil, err
	}
	if before.IsDelivered() {
		return order, nil
	}

	customer, err := s.users.Profile(ctx, domain.Principal{UserID: order.CustomerID})
	if err != nil {
		log.WithError(err).WithField("order", order.ID).Error("failed to load customer for delivery notice")
		return order, nil
	}
	if err := s.notifications.NotifyOrderDelivered(ctx, customer.ID, customer.Email, order.ID); err != nil {
		log.WithError(err).WithField("order", order.ID).Error("failed to send delivery notice")
	}
	return order, nil
}
