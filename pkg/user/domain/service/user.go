package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/common/domain"
	"storefront/pkg/user/domain/model"
)

var (
	ErrNameRequired        = domain.Validation("name is required")
	ErrInvalidEmail        = domain.Validation("a valid email is required")
	ErrPasswordTooShort    = domain.Validation("password must be at least 6 characters")
	ErrInvalidCredentials  = domain.Unauthorized("invalid email or password")
	ErrInvalidToken        = domain.Unauthorized("not authorized, token failed")
	ErrUserSuspended       = domain.Forbidden("account is suspended")
	ErrAdminRequired       = domain.Forbidden("not authorized as an admin")
	ErrUserCannotBeChanged = domain.Forbidden("admins cannot change their own status")
)

const minPasswordLength = 6

// Session is a signed-in user together with the bearer token that identifies them.
type Session struct {
	User  *model.User
	Token string
}

type UserService interface {
	Register(ctx context.Context, name, email, plainTextPassword string) (*Session, error)
	Login(ctx context.Context, email, plainTextPassword string) (*Session, error)
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
	Profile(ctx context.Context, principal domain.Principal) (*model.User, error)
	// EnsureAdmin creates the account if needed and grants it admin rights.
	EnsureAdmin(ctx context.Context, name, email, plainTextPassword string) (*model.User, error)

	SuspendUser(ctx context.Context, principal domain.Principal, userID uuid.UUID) error
	ActivateUser(ctx context.Context, principal domain.Principal, userID uuid.UUID) error
}

func NewUserService(repo model.UserRepository, passManager model.PasswordManager, tokens model.TokenManager, dispatcher domain.EventDispatcher) UserService {
	return &userService{
		repo:        repo,
		passManager: passManager,
		tokens:      tokens,
		dispatcher:  dispatcher,
	}
}

type userService struct {
	repo        model.UserRepository
	passManager model.PasswordManager
	tokens      model.TokenManager
	dispatcher  domain.EventDispatcher
}

func (s *userService) Register(ctx context.Context, name, email, plainTextPassword string) (*Session, error) {
	user, err := s.createUser(ctx, name, email, plainTextPassword, false)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *userService) Login(ctx context.Context, email, plainTextPassword string) (*Session, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.passManager.Check(user.HashedPassword, plainTextPassword)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if user.Status == model.Suspended {
		return nil, ErrUserSuspended
	}
	return s.session(user)
}

func (s *userService) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		log.WithError(err).Debug("rejected bearer token")
		return domain.Principal{}, ErrInvalidToken
	}
	user, err := s.repo.Find(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return domain.Principal{}, ErrInvalidToken
	}
	if err != nil {
		return domain.Principal{}, err
	}
	if user.Status == model.Suspended {
		return domain.Principal{}, ErrUserSuspended
	}
	return user.Principal(), nil
}

func (s *userService) Profile(ctx context.Context, principal domain.Principal) (*model.User, error) {
	if principal.IsAnonymous() {
		return nil, ErrInvalidToken
	}
	return s.repo.Find(ctx, principal.UserID)
}

func (s *userService) EnsureAdmin(ctx context.Context, name, email, plainTextPassword string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, model.ErrUserNotFound) {
		return s.createUser(ctx, name, email, plainTextPassword, true)
	}
	if err != nil {
		return nil, err
	}
	if user.IsAdmin {
		return user, nil
	}

	user.IsAdmin = true
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.dispatch(model.UserPromotedToAdmin{UserID: user.ID})
	return user, nil
}

func (s *userService) SuspendUser(ctx context.Context, principal domain.Principal, userID uuid.UUID) error {
	return s.changeStatus(ctx, principal, userID, model.Suspended)
}

func (s *userService) ActivateUser(ctx context.Context, principal domain.Principal, userID uuid.UUID) error {
	return s.changeStatus(ctx, principal, userID, model.Active)
}

func (s *userService) changeStatus(ctx context.Context, principal domain.Principal, userID uuid.UUID, newStatus model.UserStatus) error {
	if !principal.IsAdmin {
		return ErrAdminRequired
	}
	if principal.UserID == userID {
		return ErrUserCannotBeChanged
	}

	user, err := s.repo.Find(ctx, userID)
	if err != nil {
		return err
	}

	oldStatus := user.Status
	if oldStatus == newStatus {
		return nil
	}

	user.Status = newStatus
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.dispatch(model.UserStatusChanged{
		UserID:    userID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
	return nil
}

func (s *userService) createUser(ctx context.Context, name, email, plainTextPassword string, isAdmin bool) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(plainTextPassword) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, model.ErrEmailTaken
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := s.passManager.Hash(plainTextPassword)
	if err != nil {
		return nil, err
	}

	userID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:             userID,
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		IsAdmin:        isAdmin,
		Status:         model.Active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.dispatch(model.UserRegistered{UserID: userID, Email: email, Name: name})
	return user, nil
}

func (s *userService) session(user *model.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

func (s *userService) dispatch(event domain.Event) {
	if err := s.dispatcher.Dispatch(event); err != nil {
		log.WithError(err).WithField("event", event.Type()).Error("failed to dispatch event")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
