package model

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storefront/pkg/common/domain"
)

var (
	ErrUserNotFound = domain.NotFound("user not found")
	ErrEmailTaken   = domain.Conflict("user already exists")
)

type UserStatus int

const (
	Active UserStatus = iota
	Suspended
)

type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	HashedPassword string
	IsAdmin        bool
	Status         UserStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (u *User) Principal() domain.Principal {
	return domain.Principal{UserID: u.ID, IsAdmin: u.IsAdmin}
}

type UserRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Find(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type PasswordManager interface {
	Hash(plainTextPassword string) (string, error)
	Check(hashedPassword, plainTextPassword string) (bool, error)
}

// TokenManager issues and verifies bearer tokens that carry a user id.
type TokenManager interface {
	Issue(userID uuid.UUID) (string, error)
	Parse(token string) (uuid.UUID, error)
}
