// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"fundoo/internal/domain/entity"
)

// ErrAccountNotFound is a domain-specific error returned when no account
// matches the lookup key.
var ErrAccountNotFound = errors.New("account not found")

// ErrEmailTaken is returned by Create when the email unique constraint fires.
var ErrEmailTaken = errors.New("email already registered")

// AccountRepository defines the standard operations for account persistence.
// The application layer will depend on this interface, not the concrete implementation.
type AccountRepository interface {
	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id int64) (*entity.Account, error)

	// FindByEmail retrieves a single account by its email address.
	// Matching is case-sensitive, byte-for-byte.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// FindByRefreshToken retrieves the account holding the given live refresh token.
	FindByRefreshToken(ctx context.Context, token string) (*entity.Account, error)

	// FindByResetToken retrieves the account holding the given outstanding reset token.
	FindByResetToken(ctx context.Context, token string) (*entity.Account, error)

	// Create persists a new account and fills in its assigned ID.
	Create(ctx context.Context, account *entity.Account) error

	// Update modifies an existing account in the storage.
	Update(ctx context.Context, account *entity.Account) error
}
