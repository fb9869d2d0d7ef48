package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gateway-dashboard/internal/rbac"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("users: not found")
	ErrInvalidCredentials = errors.New("users: invalid credentials")
)

type Service struct {
	repo    Repository
	compare func(hash, password []byte) error
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, compare: bcrypt.CompareHashAndPassword}
}

// decoyHash is compared against when the username is unknown so that both
// rejection paths pay for one bcrypt comparison.
var decoyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("decoy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("users: decoy hash: %v", err))
	}
	return h
})

// Authenticate returns the user when password matches.
// Unknown usernames, wrong passwords and unknown roles all yield
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	if s.repo == nil {
		return User{}, errors.New("users: repository not configured")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = s.compare(decoyHash(), []byte(password))
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := s.compare([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	// Accounts carrying a role the dashboard never assigns cannot sign in.
	if !rbac.IsKnown(u.Role) {
		return User{}, fmt.Errorf("%w: role %q is not assigned by the dashboard", ErrInvalidCredentials, u.Role)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	if s.repo == nil {
		return nil, errors.New("users: repository not configured")
	}
	return s.repo.List(ctx)
}

// HashPassword produces the value stored in dashboard_users.password_hash.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
