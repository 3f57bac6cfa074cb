package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NotificationChannel int

const (
	Email NotificationChannel = iota
)

type NotificationStatus int

const (
	Pending NotificationStatus = iota
	Sent
	Failed
)

type Notification struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Channel          NotificationChannel
	RecipientAddress string
	Subject          string
	Body             string
	Status           NotificationStatus
	FailureReason    string
	CreatedAt        time.Time
	SentAt           *time.Time
}

type NotificationRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, notification *Notification) error
	Update(ctx context.Context, notification *Notification) error
}

type NotificationSender interface {
	Send(recipient, subject, body string) error
}
