package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"storefront/pkg/user/domain/model"
)

type userRow struct {
	ID             uuid.UUID `db:"id"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	IsAdmin        bool      `db:"is_admin"`
	Status         int       `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func NewUserRepository(db *sqlx.DB) model.UserRepository {
	return &userRepository{db: db}
}

type userRepository struct {
	db *sqlx.DB
}

func (r *userRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, name, email, hashed_password, is_admin, status, created_at, updated_at)
		VALUES (:id, :name, :email, :hashed_password, :is_admin, :status, :created_at, :updated_at)`,
		toUserRow(user),
	)
	if isDuplicateEntry(err) {
		return model.ErrEmailTaken
	}
	return errors.Wrap(err, "insert user")
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE users
		SET name = :name, email = :email, hashed_password = :hashed_password, is_admin = :is_admin, status = :status,
		    updated_at = :updated_at
		WHERE id = :id`,
		toUserRow(user),
	)
	if isDuplicateEntry(err) {
		return model.ErrEmailTaken
	}
	if err != nil {
		return errors.Wrap(err, "update user")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update user")
	}
	if affected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Find(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.findOne(ctx, `SELECT * FROM users WHERE id = ?`, id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT * FROM users WHERE email = ?`, email)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select user")
	}
	return &model.User{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		HashedPassword: row.HashedPassword,
		IsAdmin:        row.IsAdmin,
		Status:         model.UserStatus(row.Status),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

func toUserRow(u *model.User) userRow {
	return userRow{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		IsAdmin:        u.IsAdmin,
		Status:         int(u.Status),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
