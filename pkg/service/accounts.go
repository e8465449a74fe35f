package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/example/shopfront/pkg/apperror"
	"github.com/example/shopfront/pkg/auth"
	"github.com/example/shopfront/pkg/events"
	"github.com/example/shopfront/pkg/models"
	"github.com/example/shopfront/pkg/repository"
	"go.uber.org/zap"
)

// TokenIssuer issues access tokens on sign-in. auth.TokenIssuer satisfies it.
type TokenIssuer interface {
	Issue(userID uint, email string) (string, time.Time, error)
}

type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Address  string
}

type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Address  *string
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type AccountService struct {
	store  *repository.Store
	cache  ProductCache
	tokens TokenIssuer
	events events.Emitter
	logger *zap.Logger
}

func NewAccountService(deps Deps, tokens TokenIssuer) *AccountService {
	deps = deps.withDefaults()
	return &AccountService{
		store:  deps.Store,
		cache:  deps.Cache,
		tokens: tokens,
		events: deps.Events,
		logger: deps.Logger.Named("accounts"),
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperror.Validation("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperror.Validation("email %q is not valid", email)
	}
	return email, nil
}

func (s *AccountService) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, apperror.Validation("password is required")
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "look up user")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal(err, "hash password")
	}

	user := &models.User{Name: name, Email: email, Password: hash, Address: in.Address}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("email already registered")
		}
		return nil, storeError(err, "create user")
	}

	s.events.Emit(events.New(events.UserRegistered, user.ID, map[string]interface{}{"email": user.Email}))
	return user, nil
}

// SignIn answers the same Unauthorized error for an unknown email and a
// wrong password.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.Validation("email and password are required")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Unauthorized("invalid credentials")
	} else if err != nil {
		return nil, storeError(err, "look up user")
	}

	ok, err := auth.CheckPassword(user.Password, password)
	if err != nil {
		return nil, apperror.Internal(err, "verify password")
	}
	if !ok {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	token, expires, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperror.Internal(err, "issue token")
	}
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

func (s *AccountService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeError(err, "user %d not found", id)
	}
	return user, nil
}

func (s *AccountService) List(ctx context.Context, page repository.Page) ([]models.User, int64, error) {
	users, total, err := s.store.ListUsers(ctx, page)
	if err != nil {
		return nil, 0, storeError(err, "list users")
	}
	return users, total, nil
}

func (s *AccountService) Update(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeError(err, "user %d not found", id)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.Validation("name must not be empty")
		}
		user.Name = name
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
				return nil, apperror.Conflict("email already registered")
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, storeError(err, "look up user")
			}
		}
		user.Email = email
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, apperror.Validation("password must not be empty")
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperror.Internal(err, "hash password")
		}
		user.Password = hash
	}
	if in.Address != nil {
		user.Address = *in.Address
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("email already registered")
		}
		return nil, storeError(err, "update user")
	}

	s.events.Emit(events.New(events.UserUpdated, user.ID, nil))
	return user, nil
}

// Delete removes the user and their cart, returning the cart's stock to the
// catalog. Orders are kept.
func (s *AccountService) Delete(ctx context.Context, id uint) error {
	var credited []uint
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.GetUser(ctx, id); err != nil {
			return storeError(err, "user %d not found", id)
		}

		cart, err := tx.GetCartByUser(ctx, id)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			return storeError(err, "load cart")
		default:
			if credited, err = releaseCart(ctx, tx, cart); err != nil {
				return err
			}
		}

		if err := tx.DeleteUser(ctx, id); err != nil {
			return storeError(err, "user %d not found", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, credited...)
	s.events.Emit(events.New(events.UserDeleted, id, nil))
	return nil
}

func (s *AccountService) Orders(ctx context.Context, userID uint, page repository.Page) ([]models.Order, int64, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, 0, storeError(err, "user %d not found", userID)
	}
	orders, total, err := s.store.ListOrders(ctx, userID, page)
	if err != nil {
		return nil, 0, storeError(err, "list orders")
	}
	return orders, total, nil
}
