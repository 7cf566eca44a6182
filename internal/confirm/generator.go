// Package confirm issues and validates single-use, time-bounded email
// confirmation tokens. A token moves from active to consumed (successful
// validation) or expired (TTL elapsed); neither transition reverts.
package confirm

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Generator errors
var (
	// ErrInvalidToken indicates the token is unknown, expired, already
	// consumed, or does not match the account it was issued for.
	ErrInvalidToken = errors.New("invalid or expired confirmation token")
)

// tokenBytes is the entropy of an issued token (hex-encoded to 64 chars).
const tokenBytes = 32

// Generator defines the confirmation token contract. Issue binds a fresh
// token to an account; ValidateAndConsume atomically checks and retires
// it so a replay after success fails.
type Generator interface {
	// Issue creates a new confirmation token bound to the account.
	// Issuing a new token invalidates any previously issued one for the
	// same account.
	Issue(ctx context.Context, accountID uuid.UUID) (string, error)

	// ValidateAndConsume validates the token against the account and
	// consumes it. Returns ErrInvalidToken if the token is unknown,
	// expired, already consumed or bound to a different account.
	ValidateAndConsume(ctx context.Context, accountID uuid.UUID, token string) error
}

// newToken returns a fresh random token as a hex string.
func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate confirmation token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// hashToken returns the hex SHA-256 digest of a token. Only digests are
// stored, so the backing store never holds the raw secret.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
