package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/nexora/account-api/internal/service"
)

// Common request/response structures

// CreateAccountRequest defines the payload for the account registration
// endpoint.
type CreateAccountRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=128"`
	LastName  string `json:"last_name"  validate:"max=128"`

	// Role optionally overrides the default role granted on creation.
	Role string `json:"role,omitempty" validate:"omitempty,max=64"`
}

// ConfirmEmailRequest defines the payload for the email confirmation
// endpoint.
type ConfirmEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// UpdateAccountRequest defines the payload for the account update
// endpoint. The fields replace the stored values wholesale.
type UpdateAccountRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	FirstName string `json:"first_name" validate:"max=128"`
	LastName  string `json:"last_name"  validate:"max=128"`
}

// AddRoleRequest defines the payload for the role assignment endpoint.
type AddRoleRequest struct {
	Role string `json:"role" validate:"required,max=64"`
}

// AccountResponse is the public representation of an account.
type AccountResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	EmailConfirmed bool      `json:"email_confirmed"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// LoginResponse defines the successful response for the login endpoint.
type LoginResponse struct {
	// Token is the signed bearer token used for API authorization.
	Token string `json:"token"`

	// ExpiresAt is the timestamp when the token expires; there is no
	// refresh flow and re-login is required afterwards.
	ExpiresAt time.Time `json:"expires_at"`
}

// ExistsResponse defines the response for the email existence endpoint.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// newAccountResponse converts a service view to its API representation.
func newAccountResponse(v service.AccountView) AccountResponse {
	return AccountResponse{
		ID:             v.ID,
		Email:          v.Email,
		FirstName:      v.FirstName,
		LastName:       v.LastName,
		EmailConfirmed: v.EmailConfirmed,
		Role:           v.Role,
		CreatedAt:      v.CreatedAt,
	}
}
