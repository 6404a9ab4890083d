package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/objectid"
)

// UserStorage persists users.
type UserStorage interface {
	// CreateUser stores u. It returns ErrEmailAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u *User) error
	// GetUserByEmail returns ErrUserNotFound when absent.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// GetUserByID returns ErrUserNotFound when absent.
	GetUserByID(ctx context.Context, id objectid.ID) (*User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// TokenStore maps session tokens to user ids with store-enforced expiry.
type TokenStore interface {
	Set(ctx context.Context, token, userID string, ttl time.Duration) error
	// Get returns ErrTokenNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string) (string, error)
	// Delete returns ErrTokenNotFound when the token is already gone.
	Delete(ctx context.Context, token string) error
}

// Service issues and validates session tokens.
type Service struct {
	users      UserStorage
	tokens     TokenStore
	ttl        time.Duration
	bcryptCost int
	newToken   func() string
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTokenTTL sets the absolute session lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithBcryptCost sets the bcrypt work factor.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// WithTokenGenerator replaces the random token source.
func WithTokenGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newToken = fn
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService returns an auth Service. Tokens live 24h by default.
func NewService(users UserStorage, tokens TokenStore, opts ...Option) *Service {
	s := &Service{
		users:      users,
		tokens:     tokens,
		ttl:        24 * time.Hour,
		bcryptCost: bcrypt.DefaultCost,
		newToken:   uuid.NewString,
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("auth"))
	return s
}

// Register creates a user with a bcrypt digest of password.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrMissingEmail
	}
	if password == "" {
		return nil, ErrMissingPassword
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{ID: objectid.New(), Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", logger.UserID(u.ID))
	return u, nil
}

// Login checks credentials and returns a new session token. Unknown email
// and wrong password both yield ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return "", ErrUnauthorized
	}

	token := s.newToken()
	if err := s.tokens.Set(ctx, token, u.ID.String(), s.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Logout deletes the session immediately.
func (s *Service) Logout(ctx context.Context, token string) error {
	if _, err := s.Resolve(ctx, token); err != nil {
		return err
	}
	if err := s.tokens.Delete(ctx, token); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Resolve returns the user id bound to token. It never extends the session.
func (s *Service) Resolve(ctx context.Context, token string) (objectid.ID, error) {
	if token == "" {
		return objectid.Root, ErrUnauthorized
	}
	raw, err := s.tokens.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return objectid.Root, ErrUnauthorized
		}
		return objectid.Root, fmt.Errorf("failed to read session: %w", err)
	}
	id, err := objectid.Parse(raw)
	if err != nil || id.IsZero() {
		return objectid.Root, ErrUnauthorized
	}
	return id, nil
}

// WhoAmI returns the user behind token.
func (s *Service) WhoAmI(ctx context.Context, token string) (*User, error) {
	id, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

// CountUsers returns the number of registered users.
func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	return s.users.CountUsers(ctx)
}
