package tests

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartservice "storefront/pkg/cart/domain/service"
	catalogmodel "storefront/pkg/catalog/domain/model"
	catalogservice "storefront/pkg/catalog/domain/service"
	"storefront/pkg/checkout/application/service"
	"storefront/pkg/common/domain"
	"storefront/pkg/infrastructure/session"
	ordermodel "storefront/pkg/order/domain/model"
	orderservice "storefront/pkg/order/domain/service"
	usermodel "storefront/pkg/user/domain/model"
	userservice "storefront/pkg/user/domain/service"
)

type fixture struct {
	checkout      service.CheckoutService
	carts         cartservice.CartService
	orders        orderservice.OrderService
	products      catalogservice.ProductService
	users         *fakeUserService
	notifications *fakeNotificationService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dispatcher := nopDispatcher{}

	products := catalogservice.NewProductService(newProductRepository(), dispatcher)
	carts := cartservice.NewCartService(service.NewCartCatalog(products), session.NewMemoryStorage(), dispatcher)
	orders := orderservice.NewOrderService(newOrderRepository(), ordermodel.DefaultPricingPolicy(), dispatcher)
	users := &fakeUserService{users: make(map[uuid.UUID]*usermodel.User)}
	notifications := &fakeNotificationService{}

	return &fixture{
		checkout:      service.NewCheckoutService(carts, orders, users, notifications),
		carts:         carts,
		orders:        orders,
		products:      products,
		users:         users,
		notifications: notifications,
	}
}

var catalogAdmin = domain.Principal{UserID: uuid.New(), IsAdmin: true}

func (f *fixture) customer(email string) domain.Principal {
	user := &usermodel.User{ID: uuid.New(), Name: "Shopper", Email: email}
	f.users.users[user.ID] = user
	return user.Principal()
}

func (f *fixture) product(t *testing.T, name, price string) *catalogmodel.Product {
	t.Helper()
	product, err := f.products.CreateProduct(context.Background(), catalogAdmin, catalogservice.CreateProductInput{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Category:    catalogmodel.Women,
		Stock:       5,
	})
	require.NoError(t, err)
	return product
}

var address = ordermodel.ShippingAddress{Address: "1 High Street", City: "Delhi", PostalCode: "110001", Country: "India"}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("Place order from the session cart", func(t *testing.T) {
		f := setup(t)
		buyer := f.customer("buyer@example.com")
		dress := f.product(t, "Summer Dress", "1000")
		sessionID := buyer.UserID.String()

		_, _, err := f.carts.AddLine(ctx, sessionID, cartservice.AddLineInput{ProductID: dress.ID})
		require.NoError(t, err)

		order, err := f.checkout.Checkout(ctx, buyer, service.CheckoutInput{
			SessionID:       sessionID,
			ShippingAddress: address,
			PaymentMethod:   ordermodel.CashOnDelivery,
		})
		require.NoError(t, err)
		assert.Equal(t, "1279.00", domain.Money(order.TotalPrice))
		require.Len(t, order.Items, 1)
		assert.Equal(t, "Summer Dress", order.Items[0].Name)

		cart, err := f.carts.GetCart(ctx, sessionID)
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())

		require.Len(t, f.notifications.confirmations, 1)
		assert.Equal(t, "buyer@example.com", f.notifications.confirmations[0])
	})

	t.Run("Catalog price change after checkout does not touch the order", func(t *testing.T) {
		f := setup(t)
		buyer := f.customer("buyer@example.com")
		dress := f.product(t, "Summer Dress", "1000")
		sessionID := buyer.UserID.String()

		_, _, _ = f.carts.AddLine(ctx, sessionID, cartservice.AddLineInput{ProductID: dress.ID, Quantity: 2})
		order, err := f.checkout.Checkout(ctx, buyer, service.CheckoutInput{SessionID: sessionID, ShippingAddress: address, PaymentMethod: ordermodel.Card})
		require.NoError(t, err)

		newPrice := decimal.NewFromInt(5000)
		_, err = f.products.UpdateProduct(ctx, catalogAdmin, dress.ID, catalogservice.UpdateProductInput{Price: &newPrice})
		require.NoError(t, err)

		stored, err := f.orders.FindOrder(ctx, buyer, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "1000.00", domain.Money(stored.Items[0].UnitPrice))
		assert.Equal(t, "2000.00", domain.Money(stored.ItemsPrice))
		assert.Equal(t, "99.00", domain.Money(stored.ShippingPrice))
	})

	t.Run("Empty cart keeps nothing", func(t *testing.T) {
		f := setup(t)
		buyer := f.customer("buyer@example.com")

		_, err := f.checkout.Checkout(ctx, buyer, service.CheckoutInput{SessionID: buyer.UserID.String(), ShippingAddress: address, PaymentMethod: ordermodel.UPI})
		assert.ErrorIs(t, err, orderservice.ErrEmptyCart)

		orders, err := f.orders.ListCustomerOrders(ctx, buyer)
		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.Empty(t, f.notifications.confirmations)
	})

	t.Run("Failed order leaves the cart intact", func(t *testing.T) {
		f := setup(t)
		buyer := f.customer("buyer@example.com")
		dress := f.product(t, "Summer Dress", "1000")
		sessionID := buyer.UserID.String()
		_, _, _ = f.carts.AddLine(ctx, sessionID, cartservice.AddLineInput{ProductID: dress.ID})

		_, err := f.checkout.Checkout(ctx, buyer, service.CheckoutInput{SessionID: sessionID, PaymentMethod: ordermodel.Card})
		assert.ErrorIs(t, err, orderservice.ErrAddressRequired)

		cart, err := f.carts.GetCart(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 1, cart.Count())
	})

	t.Run("Repeated submit places one order", func(t *testing.T) {
		f := setup(t)
		buyer := f.customer("buyer@example.com")
		dress := f.product(t, "Summer Dress", "1000")
		sessionID := buyer.UserID.String()
		_, _, _ = f.carts.AddLine(ctx, sessionID, cartservice.AddLineInput{ProductID: dress.ID})

		const submits = 8
		errs := make([]error, submits)
		var wg sync.WaitGroup
		for i := 0; i < submits; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.checkout.Checkout(ctx, buyer, service.CheckoutInput{SessionID: sessionID, ShippingAddress: address, PaymentMethod: ordermodel.UPI})
			}(i)
		}
		wg.Wait()

		placed := 0
		for _, err := range errs {
			if err == nil {
				placed++
				continue
			}
			assert.ErrorIs(t, err, orderservice.ErrEmptyCart)
		}
		assert.Equal(t, 1, placed)

		orders, err := f.orders.ListCustomerOrders(ctx, buyer)
		require.NoError(t, err)
		assert.Len(t, orders, 1)
		assert.Len(t, f.notifications.confirmations, 1)
	})

	t.Run("Anonymous shopper must sign in", func(t *testing.T) {
		f := setup(t)
		_, err := f.checkout.Checkout(ctx, domain.Principal{}, service.CheckoutInput{SessionID: "anon"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestDeliverOrder(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	buyer := f.customer("buyer@example.com")
	admin := domain.Principal{UserID: uuid.New(), IsAdmin: true}
	dress := f.product(t, "Summer Dress", "1000")
	sessionID := buyer.UserID.String()

	_, _, _ = f.carts.AddLine(ctx, sessionID, cartservice.AddLineInput{ProductID: dress.ID})
	order, err := f.checkout.Checkout(ctx, buyer, service.CheckoutInput{SessionID: sessionID, ShippingAddress: address, PaymentMethod: ordermodel.CashOnDelivery})
	require.NoError(t, err)

	t.Run("Customer cannot deliver", func(t *testing.T) {
		_, err := f.checkout.DeliverOrder(ctx, buyer, order.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Admin delivers and the customer is told once", func(t *testing.T) {
		delivered, err := f.checkout.DeliverOrder(ctx, admin, order.ID)
		require.NoError(t, err)
		assert.True(t, delivered.IsDelivered())

		_, err = f.checkout.DeliverOrder(ctx, admin, order.ID)
		require.NoError(t, err)

		assert.Equal(t, []string{"buyer@example.com"}, f.notifications.deliveries)
	})
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(domain.Event) error { return nil }

type fakeUserService struct {
	userservice.UserService
	users map[uuid.UUID]*usermodel.User
}

func (f *fakeUserService) Profile(_ context.Context, principal domain.Principal) (*usermodel.User, error) {
	user, ok := f.users[principal.UserID]
	if !ok {
		return nil, usermodel.ErrUserNotFound
	}
	return user, nil
}

type fakeNotificationService struct {
	mu            sync.Mutex
	confirmations []string
	deliveries    []string
}

func (f *fakeNotificationService) NotifyWelcome(context.Context, uuid.UUID, string, string) error {
	return nil
}

func (f *fakeNotificationService) NotifyOrderConfirmation(_ context.Context, _ uuid.UUID, email string, _ uuid.UUID, _ decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, email)
	return nil
}

func (f *fakeNotificationService) NotifyOrderDelivered(_ context.Context, _ uuid.UUID, email string, _ uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deliveries = append(f.deliveries, email)
	return nil
}

type productRepository struct {
	mu    sync.Mutex
	store map[uuid.UUID]catalogmodel.Product
}

func newProductRepository() *productRepository {
	return &productRepository{store: make(map[uuid.UUID]catalogmodel.Product)}
}

func (r *productRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (r *productRepository) Create(_ context.Context, p *catalogmodel.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[p.ID] = *p
	return nil
}

func (r *productRepository) Update(_ context.Context, p *catalogmodel.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.store[p.ID]
	if !ok {
		return catalogmodel.ErrProductNotFound
	}
	if existing.Version != p.Version-1 {
		return catalogmodel.ErrOptimisticLock
	}
	r.store[p.ID] = *p
	return nil
}

func (r *productRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

func (r *productRepository) Find(_ context.Context, id uuid.UUID) (*catalogmodel.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.store[id]
	if !ok {
		return nil, catalogmodel.ErrProductNotFound
	}
	return &p, nil
}

func (r *productRepository) FindAll(_ context.Context, _ catalogmodel.ProductFilter) ([]catalogmodel.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	products := make([]catalogmodel.Product, 0, len(r.store))
	for _, p := range r.store {
		products = append(products, p)
	}
	return products, nil
}

type orderRepository struct {
	mu    sync.Mutex
	store map[uuid.UUID]ordermodel.Order
}

func newOrderRepository() *orderRepository {
	return &orderRepository{store: make(map[uuid.UUID]ordermodel.Order)}
}

func (r *orderRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (r *orderRepository) Create(_ context.Context, o *ordermodel.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *o
	stored.Items = append([]ordermodel.Item(nil), o.Items...)
	r.store[o.ID] = stored
	return nil
}

func (r *orderRepository) Find(_ context.Context, id uuid.UUID) (*ordermodel.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.store[id]
	if !ok {
		return nil, ordermodel.ErrOrderNotFound
	}
	return &o, nil
}

func (r *orderRepository) FindAll(_ context.Context, filter ordermodel.OrderFilter) ([]ordermodel.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []ordermodel.Order
	for _, o := range r.store {
		if filter.CustomerID != uuid.Nil && o.CustomerID != filter.CustomerID {
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *orderRepository) Update(_ context.Context, o *ordermodel.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.store[o.ID]
	if !ok {
		return ordermodel.ErrOrderNotFound
	}
	if existing.Version != o.Version-1 {
		return ordermodel.ErrOptimisticLock
	}
	r.store[o.ID] = *o
	return nil
}
