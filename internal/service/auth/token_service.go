package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenService defines operations for issuing and validating signed
// session tokens. Tokens are stateless bearer credentials; there is no
// refresh mechanism and re-login is required after expiry.
type TokenService interface {
	// GenerateToken creates a signed session token asserting the account's
	// identity and role claims. Returns the token string and its expiry.
	GenerateToken(ctx context.Context, accountID uuid.UUID, email string, roles []string) (string, time.Time, error)

	// ValidateToken validates the provided token string and extracts the
	// claims. Returns an error if validation fails (expired, invalid
	// signature, wrong issuer/audience, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the identity claims carried by a session token.
type Claims struct {
	// AccountID is the unique identifier of the account the token was
	// issued for.
	AccountID uuid.UUID `json:"uid,omitempty"`

	// Email is the account's email address at issuance time.
	Email string `json:"email,omitempty"`

	// Roles holds the role names assigned to the account at issuance time.
	Roles []string `json:"roles,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	Issuer    string    `json:"iss,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
