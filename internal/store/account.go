package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/nexora/account-api/internal/domain"
)

// AccountStore defines the interface for account persistence.
//
// Email uniqueness is enforced by the storage engine itself (unique index
// over the normalized email); any application-level existence pre-check is
// advisory only and a conflict reported by Create or Update is the
// authoritative duplicate signal.
type AccountStore interface {
	// Create saves a new account to the store. The account must carry a
	// HashedPassword; plaintext credentials are never persisted.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by its unique ID.
	// Returns ErrAccountNotFound if the account does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// GetByEmail retrieves an account by its case-normalized email address.
	// Returns ErrAccountNotFound if the account does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// List returns all accounts ordered by creation time.
	List(ctx context.Context) ([]*domain.Account, error)

	// ExistsByEmail reports whether an account with the given email exists.
	// This is the advisory fast-path check; the unique index remains the
	// source of truth under concurrent creates.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Update replaces the mutable fields (email, first/last name) of an
	// existing account. An email change is re-validated against the unique
	// index; a collision returns ErrEmailExists.
	// Returns ErrAccountNotFound if the account does not exist.
	Update(ctx context.Context, account *domain.Account) error

	// SetEmailConfirmed flips the email_confirmed flag to true. The flag
	// never reverts automatically; there is no operation to unset it.
	// Returns ErrAccountNotFound if the account does not exist.
	SetEmailConfirmed(ctx context.Context, id uuid.UUID) error

	// Delete removes an account by ID. Deletion is final.
	// Returns ErrAccountNotFound if the account does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns an AccountStore bound to the provided transaction so
	// multiple operations can execute atomically. The transaction is
	// created and managed by the caller.
	WithTx(tx *sql.Tx) AccountStore
}
