package service

import "errors"

// Service-level error taxonomy. Handlers map these onto HTTP status
// codes; callers are expected to test with errors.Is so wrapped
// variants with extra context still match.
var (
	// ErrDuplicateAccount indicates the email address already belongs
	// to a persisted account. The check is case-insensitive.
	ErrDuplicateAccount = errors.New("an account with this email already exists")

	// ErrAccountNotFound indicates the referenced account does not
	// exist, or no longer exists.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidCredentials is returned by Login for every
	// authentication failure: unknown email, wrong password, and
	// unconfirmed email all map to this single value so the response
	// does not leak which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidConfirmation indicates the supplied confirmation token
	// does not match the outstanding token for the account, has
	// expired, or was already consumed.
	ErrInvalidConfirmation = errors.New("invalid or expired confirmation token")

	// ErrValidation indicates the request payload failed a business
	// validation rule (email format, password policy, field lengths).
	ErrValidation = errors.New("validation failed")

	// ErrRoleAssignment indicates a role could not be granted to an
	// existing account.
	ErrRoleAssignment = errors.New("role assignment failed")

	// ErrPartialProvisioning indicates the account row was persisted
	// but a follow-up provisioning step (role grant or confirmation
	// token issue) failed. The account remains and the step can be
	// retried by an operator.
	ErrPartialProvisioning = errors.New("account created but provisioning incomplete")

	// ErrPersistence wraps datastore failures that are not one of the
	// more specific conditions above.
	ErrPersistence = errors.New("persistence operation failed")
)
