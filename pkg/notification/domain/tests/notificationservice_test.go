package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/common/domain"
	"storefront/pkg/notification/domain/model"
	"storefront/pkg/notification/domain/service"
)

func setup(t *testing.T) (service.NotificationService, *mockNotificationRepository, *mockNotificationSender, *mockEventDispatcher) {
	repo := &mockNotificationRepository{store: make(map[uuid.UUID]*model.Notification)}
	sender := &mockNotificationSender{}
	dispatcher := &mockEventDispatcher{}

	senders := map[model.NotificationChannel]model.NotificationSender{
		model.Email: sender,
	}

	notificationService := service.NewNotificationService(repo, senders, dispatcher)
	return notificationService, repo, sender, dispatcher
}

func TestNotifyWelcome(t *testing.T) {
	notificationService, repo, sender, _ := setup(t)
	ctx := context.Background()
	userID := uuid.New()

	err := notificationService.NotifyWelcome(ctx, userID, "john@example.com", "John")

	require.NoError(t, err)
	assert.Equal(t, "john@example.com", sender.LastRecipient)
	assert.Equal(t, "Welcome to our store!", sender.LastSubject)
	assert.Contains(t, sender.LastBody, "Hi John")

	require.Len(t, repo.store, 1)
	for _, n := range repo.store {
		assert.Equal(t, userID, n.UserID)
		assert.Equal(t, model.Sent, n.Status)
	}
}

func TestNotifyOrderConfirmation(t *testing.T) {
	notificationService, repo, sender, dispatcher := setup(t)
	ctx := context.Background()

	t.Run("Success path", func(t *testing.T) {
		sender.ShouldError = false
		dispatcher.Reset()

		orderID := uuid.New()
		err := notificationService.NotifyOrderConfirmation(ctx, uuid.New(), "buyer@example.com", orderID, decimal.RequireFromString("1279"))

		require.NoError(t, err)
		assert.Equal(t, 1, sender.SendCount)
		assert.Equal(t, "buyer@example.com", sender.LastRecipient)
		assert.Contains(t, sender.LastBody, "1279.00")
		assert.Contains(t, sender.LastSubject, orderID.String())

		require.Len(t, repo.store, 1)
		var saved *model.Notification
		for _, n := range repo.store {
			saved = n
		}
		assert.Equal(t, model.Sent, saved.Status)
		assert.NotNil(t, saved.SentAt)

		require.Len(t, dispatcher.events, 1)
		_, ok := dispatcher.events[0].(model.NotificationSent)
		assert.True(t, ok)
	})

	t.Run("Sender fails", func(t *testing.T) {
		sender.ShouldError = true
		dispatcher.Reset()

		err := notificationService.NotifyOrderConfirmation(ctx, uuid.New(), "fail@example.com", uuid.New(), decimal.NewFromInt(10))
		require.NoError(t, err)

		var saved *model.Notification
		for _, n := range repo.store {
			if n.RecipientAddress == "fail@example.com" {
				saved = n
			}
		}
		require.NotNil(t, saved)
		assert.Equal(t, model.Failed, saved.Status)
		assert.Equal(t, "failed to send", saved.FailureReason)

		require.Len(t, dispatcher.events, 1)
		_, ok := dispatcher.events[0].(model.NotificationFailed)
		assert.True(t, ok)
	})
}

func TestNotifyOrderDelivered_NoSender(t *testing.T) {
	repo := &mockNotificationRepository{store: make(map[uuid.UUID]*model.Notification)}
	notificationService := service.NewNotificationService(repo, map[model.NotificationChannel]model.NotificationSender{}, &mockEventDispatcher{})

	err := notificationService.NotifyOrderDelivered(context.Background(), uuid.New(), "buyer@example.com", uuid.New())
	assert.Error(t, err)
}

func TestNoticeExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	notice := model.NewNotice(model.NoticeSuccess, "Added Sneakers to cart", now)

	assert.False(t, notice.Expired(now.Add(2*time.Second)))
	assert.True(t, notice.Expired(now.Add(model.FlashTTL)))
}

type mockNotificationRepository struct {
	store map[uuid.UUID]*model.Notification
}

func (m *mockNotificationRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }
func (m *mockNotificationRepository) Create(_ context.Context, n *model.Notification) error {
	m.store[n.ID] = n
	return nil
}
func (m *mockNotificationRepository) Update(_ context.Context, n *model.Notification) error {
	m.store[n.ID] = n
	return nil
}

type mockNotificationSender struct {
	SendCount     int
	LastRecipient string
	LastSubject   string
	LastBody      string
	ShouldError   bool
}

func (m *mockNotificationSender) Send(recipient, subject, body string) error {
	m.SendCount++
	m.LastRecipient = recipient
	m.LastSubject = subject
	m.LastBody = body
	if m.ShouldError {
		return errors.New("failed to send")
	}
	return nil
}

type mockEventDispatcher struct {
	events []domain.Event
}

func (m *mockEventDispatcher) Dispatch(event domain.Event) error {
	m.events = append(m.events, event)
	return nil
}
func (m *mockEventDispatcher) Reset() { m.events = nil }
