package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"storefront/pkg/notification/domain/model"
)

type notificationRow struct {
	ID               uuid.UUID    `db:"id"`
	UserID           uuid.UUID    `db:"user_id"`
	Channel          int          `db:"channel"`
	RecipientAddress string       `db:"recipient_address"`
	Subject          string       `db:"subject"`
	Body             string       `db:"body"`
	Status           int          `db:"status"`
	FailureReason    string       `db:"failure_reason"`
	CreatedAt        time.Time    `db:"created_at"`
	SentAt           sql.NullTime `db:"sent_at"`
}

func NewNotificationRepository(db *sqlx.DB) model.NotificationRepository {
	return &notificationRepository{db: db}
}

type notificationRepository struct {
	db *sqlx.DB
}

func (r *notificationRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO notifications (id, user_id, channel, recipient_address, subject, body, status, failure_reason, created_at, sent_at)
		VALUES (:id, :user_id, :channel, :recipient_address, :subject, :body, :status, :failure_reason, :created_at, :sent_at)`,
		toNotificationRow(n),
	)
	return errors.Wrap(err, "insert notification")
}

func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) error {
	_, err := r.db.NamedExecContext(ctx, `
		UPDATE notifications
		SET status = :status, failure_reason = :failure_reason, sent_at = :sent_at
		WHERE id = :id`,
		toNotificationRow(n),
	)
	return errors.Wrap(err, "update notification")
}

func toNotificationRow(n *model.Notification) notificationRow {
	row := notificationRow{
		ID:               n.ID,
		UserID:           n.UserID,
		Channel:          int(n.Channel),
		RecipientAddress: n.RecipientAddress,
		Subject:          n.Subject,
		Body:             n.Body,
		Status:           int(n.Status),
		FailureReason:    n.FailureReason,
		CreatedAt:        n.CreatedAt,
	}
	if n.SentAt != nil {
		row.SentAt = sql.NullTime{Time: *n.SentAt, Valid: true}
	}
	return row
}
