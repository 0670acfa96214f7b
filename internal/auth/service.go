package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jackmilless/jackmilless-pep-spring-project/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register with existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidAccount is returned when username or password doesn't meet constraints.
	ErrInvalidAccount = errors.New("invalid account")
	// ErrAccountNotFound is returned when no account has the requested username.
	ErrAccountNotFound = errors.New("account not found")
)

// registration is validated on Register. Lengths count code points.
type registration struct {
	Username string `validate:"required"`
	Password string `validate:"min=4"`
}

// Service provides account registration and login.
type Service struct {
	store    store.AccountStore
	validate *validator.Validate
}

// NewService creates a new account service.
func NewService(accountStore store.AccountStore) *Service {
	return &Service{
		store:    accountStore,
		validate: validator.New(),
	}
}

// LookupByUsername returns the account registered under username.
func (s *Service) LookupByUsername(ctx context.Context, username string) (*store.Account, error) {
	account, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return account, nil
}

// Register stores a new account. A taken username is reported before any
// other validation so that duplicates always surface as ErrUserExists.
func (s *Service) Register(ctx context.Context, username, password string) (*store.Account, error) {
	_, err := s.LookupByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, ErrAccountNotFound):
		return nil, err
	}

	if err := s.validate.Struct(registration{Username: username, Password: password}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}

	account, err := s.store.CreateAccount(ctx, username, password)
	if err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	return account, nil
}

// Login returns the account matching username and password exactly.
func (s *Service) Login(ctx context.Context, username, password string) (*store.Account, error) {
	account, err := s.store.GetAccountByCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	return account, nil
}
