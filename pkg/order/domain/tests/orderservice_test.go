package tests

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartmodel "storefront/pkg/cart/domain/model"
	"storefront/pkg/common/domain"
	"storefront/pkg/order/domain/model"
	"storefront/pkg/order/domain/service"
)

var address = model.ShippingAddress{
	Address:    "12 Market Street",
	City:       "Pune",
	PostalCode: "411001",
	Country:    "India",
}

func setup(t *testing.T) (service.OrderService, *mockOrderRepository, *mockEventDispatcher) {
	repo := &mockOrderRepository{
		store: make(map[uuid.UUID]*model.Order),
	}
	dispatcher := &mockEventDispatcher{}
	orderService := service.NewOrderService(repo, model.DefaultPricingPolicy(), dispatcher)
	return orderService, repo, dispatcher
}

func customer() domain.Principal {
	return domain.Principal{UserID: uuid.New()}
}

func admin() domain.Principal {
	return domain.Principal{UserID: uuid.New(), IsAdmin: true}
}

func cartWith(t *testing.T, price, discount string, quantity int) *cartmodel.Cart {
	t.Helper()
	cart := &cartmodel.Cart{}
	_, _, err := cart.AddLine(cartmodel.Product{
		ID:       uuid.New(),
		Name:     "Denim Jacket",
		Price:    decimal.RequireFromString(price),
		Discount: decimal.RequireFromString(discount),
		Stock:    10,
	}, quantity, "M", "blue")
	require.NoError(t, err)
	return cart
}

func placeOrder(t *testing.T, orderService service.OrderService, principal domain.Principal, cart *cartmodel.Cart) *model.Order {
	t.Helper()
	order, err := orderService.PlaceOrder(context.Background(), principal, service.PlaceOrderInput{
		Cart:            cart,
		ShippingAddress: address,
		PaymentMethod:   model.CashOnDelivery,
	})
	require.NoError(t, err)
	return order
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		orderService, repo, dispatcher := setup(t)
		buyer := customer()

		order := placeOrder(t, orderService, buyer, cartWith(t, "1000", "0", 1))

		assert.Equal(t, 1, order.Version)
		assert.Equal(t, buyer.UserID, order.CustomerID)
		assert.Equal(t, model.Unpaid, order.PaymentState)
		assert.Equal(t, model.Processing, order.FulfillmentState)
		assert.Equal(t, "1000.00", domain.Money(order.ItemsPrice))
		assert.Equal(t, "180.00", domain.Money(order.TaxPrice))
		assert.Equal(t, "99.00", domain.Money(order.ShippingPrice))
		assert.Equal(t, "1279.00", domain.Money(order.TotalPrice))

		_, ok := repo.store[order.ID]
		require.True(t, ok)

		require.Len(t, dispatcher.events, 1)
		_, ok = dispatcher.events[0].(model.OrderPlaced)
		assert.True(t, ok)
	})

	t.Run("Discounted lines are priced by effective price", func(t *testing.T) {
		orderService, _, _ := setup(t)

		order := placeOrder(t, orderService, customer(), cartWith(t, "1000", "20", 3))

		require.Len(t, order.Items, 1)
		assert.Equal(t, "800.00", domain.Money(order.Items[0].UnitPrice))
		assert.Equal(t, "2400.00", domain.Money(order.ItemsPrice))
		assert.Equal(t, "432.00", domain.Money(order.TaxPrice))
		assert.Equal(t, "0.00", domain.Money(order.ShippingPrice))
		assert.Equal(t, "2832.00", domain.Money(order.TotalPrice))
	})

	t.Run("Free shipping only above the threshold", func(t *testing.T) {
		orderService, _, _ := setup(t)

		below := placeOrder(t, orderService, customer(), cartWith(t, "1999", "0", 1))
		at := placeOrder(t, orderService, customer(), cartWith(t, "2000", "0", 1))
		above := placeOrder(t, orderService, customer(), cartWith(t, "2001", "0", 1))

		assert.Equal(t, "99.00", domain.Money(below.ShippingPrice))
		assert.Equal(t, "99.00", domain.Money(at.ShippingPrice))
		assert.Equal(t, "0.00", domain.Money(above.ShippingPrice))
	})

	t.Run("Fail on empty cart", func(t *testing.T) {
		orderService, repo, dispatcher := setup(t)

		_, err := orderService.PlaceOrder(ctx, customer(), service.PlaceOrderInput{
			Cart:            &cartmodel.Cart{},
			ShippingAddress: address,
			PaymentMethod:   model.Card,
		})

		assert.ErrorIs(t, err, service.ErrEmptyCart)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, repo.store)
		assert.Empty(t, dispatcher.events)
	})

	t.Run("Fail without address", func(t *testing.T) {
		orderService, repo, _ := setup(t)

		_, err := orderService.PlaceOrder(ctx, customer(), service.PlaceOrderInput{
			Cart:            cartWith(t, "10", "0", 1),
			ShippingAddress: model.ShippingAddress{Address: "12 Market Street", City: " "},
			PaymentMethod:   model.Card,
		})

		assert.ErrorIs(t, err, service.ErrAddressRequired)
		assert.Empty(t, repo.store)
	})

	t.Run("Fail on unknown payment method", func(t *testing.T) {
		orderService, _, _ := setup(t)

		_, err := orderService.PlaceOrder(ctx, customer(), service.PlaceOrderInput{
			Cart:            cartWith(t, "10", "0", 1),
			ShippingAddress: address,
			PaymentMethod:   "Cheque",
		})

		assert.ErrorIs(t, err, service.ErrInvalidPaymentMethod)
	})

	t.Run("Fail for anonymous caller", func(t *testing.T) {
		orderService, _, _ := setup(t)

		_, err := orderService.PlaceOrder(ctx, domain.Principal{}, service.PlaceOrderInput{
			Cart:            cartWith(t, "10", "0", 1),
			ShippingAddress: address,
			PaymentMethod:   model.UPI,
		})

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Later cart changes do not reach the order", func(t *testing.T) {
		orderService, repo, _ := setup(t)
		cart := cartWith(t, "500", "0", 2)

		order := placeOrder(t, orderService, customer(), cart)
		cart.Lines[0].UnitPrice = decimal.NewFromInt(9999)
		cart.Lines[0].Quantity = 7

		stored := repo.store[order.ID]
		assert.Equal(t, "500.00", domain.Money(stored.Items[0].UnitPrice))
		assert.Equal(t, 2, stored.Items[0].Quantity)
		assert.Equal(t, "1000.00", domain.Money(stored.ItemsPrice))
	})
}

func TestFindOrder(t *testing.T) {
	orderService, _, _ := setup(t)
	ctx := context.Background()
	owner := customer()
	order := placeOrder(t, orderService, owner, cartWith(t, "100", "0", 1))

	t.Run("Owner can read", func(t *testing.T) {
		found, err := orderService.FindOrder(ctx, owner, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)
	})

	t.Run("Admin can read", func(t *testing.T) {
		_, err := orderService.FindOrder(ctx, admin(), order.ID)
		assert.NoError(t, err)
	})

	t.Run("Other customer is forbidden", func(t *testing.T) {
		_, err := orderService.FindOrder(ctx, customer(), order.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Missing order", func(t *testing.T) {
		_, err := orderService.FindOrder(ctx, owner, uuid.New())
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestListOrders(t *testing.T) {
	orderService, _, _ := setup(t)
	ctx := context.Background()
	alice, bob := customer(), customer()

	placeOrder(t, orderService, alice, cartWith(t, "100", "0", 1))
	placeOrder(t, orderService, alice, cartWith(t, "200", "0", 1))
	placeOrder(t, orderService, bob, cartWith(t, "300", "0", 1))

	t.Run("Customer sees own orders", func(t *testing.T) {
		orders, err := orderService.ListCustomerOrders(ctx, alice)
		require.NoError(t, err)
		assert.Len(t, orders, 2)
		for _, o := range orders {
			assert.Equal(t, alice.UserID, o.CustomerID)
		}
	})

	t.Run("Admin sees every order", func(t *testing.T) {
		orders, err := orderService.ListOrders(ctx, admin())
		require.NoError(t, err)
		assert.Len(t, orders, 3)
	})

	t.Run("Customer cannot list every order", func(t *testing.T) {
		_, err := orderService.ListOrders(ctx, bob)
		assert.ErrorIs(t, err, service.ErrAdminRequired)
	})
}

func TestMarkOrderAsPaid(t *testing.T) {
	orderService, repo, dispatcher := setup(t)
	ctx := context.Background()
	owner := customer()
	order := placeOrder(t, orderService, owner, cartWith(t, "100", "0", 1))

	confirmation := service.PaymentConfirmation{
		TransactionID: "txn-1",
		Status:        "COMPLETED",
		UpdateTime:    "2025-01-01T10:00:00Z",
		PayerEmail:    "buyer@example.com",
	}

	t.Run("Fail without transaction id", func(t *testing.T) {
		_, err := orderService.MarkOrderAsPaid(ctx, owner, order.ID, service.PaymentConfirmation{})
		assert.ErrorIs(t, err, service.ErrTransactionRequired)
	})

	t.Run("Success", func(t *testing.T) {
		dispatcher.Reset()

		paid, err := orderService.MarkOrderAsPaid(ctx, owner, order.ID, confirmation)
		require.NoError(t, err)
		assert.True(t, paid.IsPaid())
		require.NotNil(t, paid.PaidAt)
		assert.Equal(t, "COMPLETED", paid.PaymentStatus)
		assert.Equal(t, "txn-1", paid.PaymentResult.TransactionID)
		assert.Equal(t, 2, repo.store[order.ID].Version)

		require.Len(t, dispatcher.events, 1)
		_, ok := dispatcher.events[0].(model.OrderPaid)
		assert.True(t, ok)
	})

	t.Run("Replay with the same transaction changes nothing", func(t *testing.T) {
		dispatcher.Reset()
		before := *repo.store[order.ID]

		again, err := orderService.MarkOrderAsPaid(ctx, owner, order.ID, confirmation)
		require.NoError(t, err)
		assert.Equal(t, before.Version, again.Version)
		assert.Equal(t, *before.PaidAt, *again.PaidAt)
		assert.Empty(t, dispatcher.events)
	})

	t.Run("Fail with a different transaction", func(t *testing.T) {
		other := confirmation
		other.TransactionID = "txn-2"

		_, err := orderService.MarkOrderAsPaid(ctx, owner, order.ID, other)
		assert.ErrorIs(t, err, service.ErrAlreadyPaid)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, "txn-1", repo.store[order.ID].PaymentResult.TransactionID)
	})

	t.Run("Fail for another customer", func(t *testing.T) {
		fresh := placeOrder(t, orderService, owner, cartWith(t, "100", "0", 1))
		_, err := orderService.MarkOrderAsPaid(ctx, customer(), fresh.ID, confirmation)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Empty gateway status defaults to Paid", func(t *testing.T) {
		fresh := placeOrder(t, orderService, owner, cartWith(t, "100", "0", 1))
		paid, err := orderService.MarkOrderAsPaid(ctx, owner, fresh.ID, service.PaymentConfirmation{TransactionID: "txn-3"})
		require.NoError(t, err)
		assert.Equal(t, "Paid", paid.PaymentStatus)
	})
}

func TestMarkOrderAsDelivered(t *testing.T) {
	orderService, repo, dispatcher := setup(t)
	ctx := context.Background()
	order := placeOrder(t, orderService, customer(), cartWith(t, "100", "0", 1))

	t.Run("Fail for non-admin", func(t *testing.T) {
		_, err := orderService.MarkOrderAsDelivered(ctx, customer(), order.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Unpaid order can be delivered", func(t *testing.T) {
		dispatcher.Reset()

		delivered, err := orderService.MarkOrderAsDelivered(ctx, admin(), order.ID)
		require.NoError(t, err)
		assert.True(t, delivered.IsDelivered())
		assert.False(t, delivered.IsPaid())
		require.NotNil(t, delivered.DeliveredAt)

		require.Len(t, dispatcher.events, 1)
		_, ok := dispatcher.events[0].(model.OrderDelivered)
		assert.True(t, ok)
	})

	t.Run("Deliver twice keeps the first timestamp", func(t *testing.T) {
		dispatcher.Reset()
		first := *repo.store[order.ID].DeliveredAt
		version := repo.store[order.ID].Version

		again, err := orderService.MarkOrderAsDelivered(ctx, admin(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, first, *again.DeliveredAt)
		assert.Equal(t, version, repo.store[order.ID].Version)
		assert.Empty(t, dispatcher.events)
	})

	t.Run("Missing order", func(t *testing.T) {
		_, err := orderService.MarkOrderAsDelivered(ctx, admin(), uuid.New())
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

func TestConcurrentUpdateIsRejected(t *testing.T) {
	orderService, repo, _ := setup(t)
	ctx := context.Background()
	owner := customer()
	order := placeOrder(t, orderService, owner, cartWith(t, "100", "0", 1))

	repo.staleNextUpdate = true
	_, err := orderService.MarkOrderAsPaid(ctx, owner, order.ID, service.PaymentConfirmation{TransactionID: "txn-1"})

	assert.ErrorIs(t, err, model.ErrOptimisticLock)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestOptimisticLockInRepository(t *testing.T) {
	_, repo, _ := setup(t)
	ctx := context.Background()
	order := &model.Order{ID: uuid.New(), Version: 1}
	require.NoError(t, repo.Create(ctx, order))

	order.Version++
	err := repo.Update(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.store[order.ID].Version)

	err = repo.Update(ctx, order)
	require.Error(t, err, "Update with same version should fail")
	assert.ErrorIs(t, err, model.ErrOptimisticLock)
}

func TestPricingPolicyQuote(t *testing.T) {
	policy := model.DefaultPricingPolicy()

	prices := policy.Quote(decimal.RequireFromString("333.335"))
	assert.Equal(t, "333.34", domain.Money(prices.Items))
	assert.Equal(t, "60.00", domain.Money(prices.Tax))
	assert.Equal(t, "99.00", domain.Money(prices.Shipping))
	assert.True(t, prices.Total.Equal(prices.Items.Add(prices.Tax).Add(prices.Shipping)))
}

var _ model.OrderRepository = &mockOrderRepository{}

type mockOrderRepository struct {
	store           map[uuid.UUID]*model.Order
	staleNextUpdate bool
}

func (m *mockOrderRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (m *mockOrderRepository) Create(_ context.Context, order *model.Order) error {
	if _, exists := m.store[order.ID]; exists {
		return errors.New("order with this ID already exists")
	}
	m.store[order.ID] = clone(order)
	return nil
}

func (m *mockOrderRepository) Find(_ context.Context, id uuid.UUID) (*model.Order, error) {
	if order, ok := m.store[id]; ok {
		return clone(order), nil
	}
	return nil, model.ErrOrderNotFound
}

func (m *mockOrderRepository) FindAll(_ context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var orders []model.Order
	for _, order := range m.store {
		if filter.CustomerID != uuid.Nil && order.CustomerID != filter.CustomerID {
			continue
		}
		orders = append(orders, *clone(order))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

func (m *mockOrderRepository) Update(_ context.Context, order *model.Order) error {
	existing, ok := m.store[order.ID]
	if !ok {
		return model.ErrOrderNotFound
	}
	if m.staleNextUpdate {
		m.staleNextUpdate = false
		existing.Version++
	}
	if existing.Version != order.Version-1 {
		return model.ErrOptimisticLock
	}
	m.store[order.ID] = clone(order)
	return nil
}

func clone(order *model.Order) *model.Order {
	c := *order
	c.Items = append([]model.Item(nil), order.Items...)
	return &c
}

type mockEventDispatcher struct {
	events []domain.Event
}

func (m *mockEventDispatcher) Dispatch(event domain.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventDispatcher) Reset() {
	m.events = nil
}
