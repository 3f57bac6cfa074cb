package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/pkg/common/domain"
	"storefront/pkg/notification/domain/model"
)

type NotificationService interface {
	NotifyWelcome(ctx context.Context, userID uuid.UUID, email, name string) error
	NotifyOrderConfirmation(ctx context.Context, userID uuid.UUID, email string, orderID uuid.UUID, total decimal.Decimal) error
	NotifyOrderDelivered(ctx context.Context, userID uuid.UUID, email string, orderID uuid.UUID) error
}

func NewNotificationService(repo model.NotificationRepository, senders map[model.NotificationChannel]model.NotificationSender, dispatcher domain.EventDispatcher) NotificationService {
	return &notificationService{repo: repo, senders: senders, dispatcher: dispatcher}
}

type notificationService struct {
	repo       model.NotificationRepository
	senders    map[model.NotificationChannel]model.NotificationSender
	dispatcher domain.EventDispatcher
}

func (s *notificationService) NotifyWelcome(ctx context.Context, userID uuid.UUID, email, name string) error {
	subject := "Welcome to our store!"
	body := fmt.Sprintf("Hi %s, thanks for joining us!", name)

	return s.orchestrateSend(ctx, userID, email, subject, body, model.Email)
}

func (s *notificationService) NotifyOrderConfirmation(ctx context.Context, userID uuid.UUID, email string, orderID uuid.UUID, total decimal.Decimal) error {
	subject := fmt.Sprintf("Your order %s has been placed", orderID.String())
	body := fmt.Sprintf("Thanks! We have received your order %s. Total: %s.", orderID.String(), domain.Money(total))

	return s.orchestrateSend(ctx, userID, email, subject, body, model.Email)
}

func (s *notificationService) NotifyOrderDelivered(ctx context.Context, userID uuid.UUID, email string, orderID uuid.UUID) error {
	subject := fmt.Sprintf("Your order %s has been delivered", orderID.String())
	body := "Your order has been delivered. We hope you enjoy it!"

	return s.orchestrateSend(ctx, userID, email, subject, body, model.Email)
}

func (s *notificationService) orchestrateSend(ctx context.Context, userID uuid.UUID, recipient, subject, body string, channel model.NotificationChannel) error {
	notifID, err := s.repo.NextID()
	if err != nil {
		return err
	}
	notification := &model.Notification{
		ID:               notifID,
		UserID:           userID,
		Channel:          channel,
		RecipientAddress: recipient,
		Subject:          subject,
		Body:             body,
		Status:           model.Pending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	sender, ok := s.senders[channel]
	if !ok {
		return fmt.Errorf("no sender configured for channel %v", channel)
	}

	err = sender.Send(recipient, subject, body)

	if err != nil {
		notification.Status = model.Failed
		notification.FailureReason = err.Error()
		_ = s.dispatcher.Dispatch(model.NotificationFailed{
			NotificationID: notifID, UserID: userID, Channel: channel, Reason: err.Error(),
		})
	} else {
		now := time.Now().UTC()
		notification.Status = model.Sent
		notification.SentAt = &now
		_ = s.dispatcher.Dispatch(model.NotificationSent{
			NotificationID: notifID, UserID: userID, Channel: channel,
		})
	}

	return s.repo.Update(ctx, notification)
}
