package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/identikit/user-service/internal/core/domain"
	"github.com/identikit/user-service/internal/core/ports"
)

const maxPageSize = 100

// UserService orchestrates the user store, the password hasher, the token
// issuer, and the revocation list. It holds no state of its own; every call
// is independent.
type UserService struct {
	repo    ports.UserRepository
	hasher  ports.PasswordHasher
	issuer  ports.TokenIssuer
	revoker ports.TokenRevoker
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, revoker ports.TokenRevoker) *UserService {
	return &UserService{repo: repo, hasher: hasher, issuer: issuer, revoker: revoker}
}

// Login verifies the submitted credentials against the store and issues a
// session token. Unknown usernames and wrong passwords are indistinguishable
// to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	token, _, err := s.issuer.Issue(ports.Claim{
		UserID:    user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
	})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// Logout places the presented token on the revocation list until it would
// have expired anyway.
func (s *UserService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	if err := s.revoker.Revoke(ctx, token, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Register creates a new user. The plaintext password is hashed before the
// store ever sees it.
func (s *UserService) Register(ctx context.Context, input ports.RegisterUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		RoleID:       input.RoleID,
		CustomerID:   input.CustomerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *UserService) Count(ctx context.Context, where ports.UserWhere) (int64, error) {
	return s.repo.Count(ctx, where)
}

func (s *UserService) List(ctx context.Context, filter ports.UserFilter) ([]*domain.User, error) {
	if filter.Limit <= 0 || filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	return s.repo.Find(ctx, filter)
}

func (s *UserService) Get(ctx context.Context, id string, filter ports.UserFilter) (*domain.User, error) {
	return s.repo.FindByID(ctx, id, filter)
}

// UpdateAll applies the patch to every user matching the predicate and
// returns how many records were updated.
func (s *UserService) UpdateAll(ctx context.Context, input ports.UpdateUserInput, where ports.UserWhere) (int64, error) {
	patch, err := s.toPatch(input)
	if err != nil {
		return 0, err
	}
	if patch.Empty() {
		return 0, fmt.Errorf("%w: empty patch", domain.ErrInvalidInput)
	}
	return s.repo.UpdateAll(ctx, patch, where)
}

func (s *UserService) Update(ctx context.Context, id string, input ports.UpdateUserInput) error {
	patch, err := s.toPatch(input)
	if err != nil {
		return err
	}
	if patch.Empty() {
		return fmt.Errorf("%w: empty patch", domain.ErrInvalidInput)
	}
	return s.repo.UpdateByID(ctx, id, patch)
}

// Replace overwrites every mutable field of the user. The identifier and
// creation timestamp are preserved by the store.
func (s *UserService) Replace(ctx context.Context, id string, input ports.ReplaceUserInput) error {
	if strings.TrimSpace(input.Username) == "" || input.Password == "" {
		return fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.ReplaceByID(ctx, id, &domain.User{
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: hash,
		FirstName:    input.FirstName,
		RoleID:       input.RoleID,
		CustomerID:   input.CustomerID,
		UpdatedAt:    time.Now().UTC(),
	})
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

// toPatch converts caller input into a store patch, hashing the password when
// one is present so plaintext never reaches the store on any write path.
func (s *UserService) toPatch(input ports.UpdateUserInput) (ports.UserPatch, error) {
	patch := ports.UserPatch{
		Username:   input.Username,
		FirstName:  input.FirstName,
		RoleID:     input.RoleID,
		CustomerID: input.CustomerID,
	}
	if input.Password != nil {
		if *input.Password == "" {
			return ports.UserPatch{}, fmt.Errorf("%w: password must not be empty", domain.ErrInvalidInput)
		}
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return ports.UserPatch{}, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}
	return patch, nil
}
