package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// RoleStore defines the role registry contract: named capability tags and
// their assignments to accounts. Role names are globally unique and roles
// are bootstrapped lazily on first assignment attempt.
type RoleStore interface {
	// EnsureRole creates the named role if it does not already exist.
	// Calling it for an existing role is not an error.
	EnsureRole(ctx context.Context, name string) error

	// RoleExists reports whether the named role exists.
	RoleExists(ctx context.Context, name string) (bool, error)

	// AssignRole grants the named role to the account. The operation is
	// idempotent: assigning an already-held role succeeds without creating
	// a duplicate entry.
	// Returns ErrAccountNotFound if the account does not exist and
	// ErrRoleNotFound if the role has not been created.
	AssignRole(ctx context.Context, accountID uuid.UUID, name string) error

	// GetRoles returns the role names assigned to the account, ordered by
	// assignment time. An account with no roles yields an empty slice.
	GetRoles(ctx context.Context, accountID uuid.UUID) ([]string, error)

	// WithTx returns a RoleStore bound to the provided transaction.
	WithTx(tx *sql.Tx) RoleStore
}
