package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	notificationservice "storefront/pkg/notification/domain/service"
	userservice "storefront/pkg/user/domain/service"
)

// NewAccountService decorates users so that a new registration gets a welcome mail.
// Every other operation is served by users unchanged.
func NewAccountService(users userservice.UserService, notifications notificationservice.NotificationService) userservice.UserService {
	return &accountService{UserService: users, notifications: notifications}
}

type accountService struct {
	userservice.UserService
	notifications notificationservice.NotificationService
}

// Register creates the account first. A failed welcome mail is logged and never fails the registration.
func (s *accountService) Register(ctx context.Context, name, email, plainTextPassword string) (*userservice.Session, error) {
	session, err := s.UserService.Register(ctx, name, email, plainTextPassword)
	if err != nil {
		return nil, err
	}

	user := session.User
	if err := s.notifications.NotifyWelcome(ctx, user.ID, user.Email, user.Name); err != nil {
		log.WithError(err).WithField("user", user.ID).Error("failed to send welcome email")
	}
	return session, nil
}
