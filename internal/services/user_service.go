package services

import (
	"context"
	"fmt"

	"budget/internal/auth"
	"budget/internal/core"
	"budget/internal/storage"

	"github.com/shopspring/decimal"
)

// UserService handles registration, authentication and account management.
type UserService struct {
	storage *storage.SQLiteRepository
}

func NewUserService(storage *storage.SQLiteRepository) *UserService {
	return &UserService{storage: storage}
}

// Register creates a new account. Registration is open: no authentication is
// required to create a user. The password is optional; an account created
// without one stores no hash and cannot log in until a password is set.
func (s *UserService) Register(ctx context.Context, username, email, password string, salary decimal.Decimal) (*core.User, error) {
	u := &core.User{
		Username: username,
		Email:    email,
		Salary:   salary,
		IsActive: true,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if password != "" {
		if len(password) < 8 {
			return nil, &core.ValidationError{Fields: []core.FieldError{
				{Field: "password", Err: core.ErrWeakPassword},
			}}
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}

	if err := s.storage.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks credentials against the stored hash. Failures are
// reported uniformly so callers cannot distinguish a missing user from a bad
// password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*core.User, error) {
	u, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, core.ErrUnauthenticated
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, core.ErrUnauthenticated
	}
	if !u.IsActive {
		return nil, core.ErrInactiveUser
	}
	return u, nil
}

// GetUser loads any user's public record.
func (s *UserService) GetUser(ctx context.Context, id int64) (*core.User, error) {
	return s.storage.GetUser(ctx, id)
}

// UserUpdate carries the mutable account fields; nil means unchanged.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	Salary   *decimal.Decimal
}

// UpdateUser applies a partial update to the principal's own account.
func (s *UserService) UpdateUser(ctx context.Context, principalID, userID int64, upd UserUpdate) (*core.User, error) {
	if err := authorizeOwner(principalID, userID); err != nil {
		return nil, err
	}

	u, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Salary != nil {
		u.Salary = *upd.Salary
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if upd.Password != nil {
		if len(*upd.Password) < 8 {
			return nil, &core.ValidationError{Fields: []core.FieldError{
				{Field: "password", Err: core.ErrWeakPassword},
			}}
		}
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}

	if err := s.storage.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser removes the principal's own account together with every expense
// it owns.
func (s *UserService) DeleteUser(ctx context.Context, principalID, userID int64) error {
	if err := authorizeOwner(principalID, userID); err != nil {
		return err
	}
	return s.storage.DeleteUser(ctx, userID)
}
