package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nexora/account-api/internal/confirm"
	"github.com/nexora/account-api/internal/domain"
	"github.com/nexora/account-api/internal/messaging"
	"github.com/nexora/account-api/internal/platform/logger"
	"github.com/nexora/account-api/internal/service/auth"
	"github.com/nexora/account-api/internal/store"
)

// CreateAccountRequest carries the fields for registering a new account.
type CreateAccountRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string

	// Role is the role to grant the new account. Empty selects the
	// configured default role.
	Role string
}

// UpdateAccountRequest carries the mutable profile fields for an update.
// The full set replaces the stored values; there is no field-level patch.
type UpdateAccountRequest struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string
}

// AccountView is the read projection of an account exposed to callers.
// It carries identity and profile data only; credentials and session
// tokens are never part of a read path. Role is the account's first
// assigned role, falling back to the default role label.
type AccountView struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	EmailConfirmed bool      `json:"email_confirmed"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// Session is the result of a successful login: a signed bearer token and
// its expiry.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NotificationQueue accepts confirmation notifications for asynchronous
// delivery. Enqueue must not block; a full queue is reported as an error
// and the caller decides whether that is fatal.
type NotificationQueue interface {
	Enqueue(n messaging.Notification) error
}

// AccountService orchestrates the account lifecycle: registration with
// asynchronous email confirmation, login, role management and CRUD.
type AccountService interface {
	// CreateAccount registers a new account: validates and persists it,
	// grants the requested (or default) role, issues a confirmation
	// token and enqueues the confirmation notification. Write paths
	// return no entity payload.
	// Returns ErrDuplicateAccount when the email is taken and
	// ErrPartialProvisioning when the account row was committed but a
	// follow-up step failed.
	CreateAccount(ctx context.Context, req CreateAccountRequest) error

	// ConfirmEmail consumes the confirmation token for the account
	// registered under email and marks the account confirmed. Returns
	// ErrAccountNotFound when no account is registered under email.
	// Tokens are single use; a replay returns ErrInvalidConfirmation.
	ConfirmEmail(ctx context.Context, email, token string) error

	// Login authenticates the credentials and returns a session token.
	// Unknown email and wrong password both yield ErrInvalidCredentials.
	// Login does not require a confirmed email; the confirmed state is
	// exposed in views instead.
	Login(ctx context.Context, email, password string) (*Session, error)

	// AddToRole grants the named role to an existing account, creating
	// the role on first use. Granting an already-held role is a no-op.
	AddToRole(ctx context.Context, accountID uuid.UUID, roleName string) error

	// GetAccounts returns all accounts ordered by creation time.
	GetAccounts(ctx context.Context) ([]AccountView, error)

	// GetAccount returns the account with the given ID.
	GetAccount(ctx context.Context, id uuid.UUID) (*AccountView, error)

	// UpdateAccount replaces the profile fields of an existing account.
	// An email change is re-validated for uniqueness.
	UpdateAccount(ctx context.Context, req UpdateAccountRequest) error

	// DeleteAccount removes the account. Deletion is final; the email
	// becomes available for re-registration.
	DeleteAccount(ctx context.Context, id uuid.UUID) error

	// ExistsByEmail reports whether an account is registered under the
	// given email, case-insensitively.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// EnsureAdminAccount provisions a confirmed account holding the
	// admin role if none exists under email. It is the deployment
	// bootstrap for the first role-granting operator and is a no-op
	// when email is empty or already registered.
	EnsureAdminAccount(ctx context.Context, email, password string) error
}

// AdminRoleName is the role required for destructive and
// privilege-granting operations.
const AdminRoleName = "admin"

// txRunner executes fn inside a database transaction. It is a seam over
// store.RunInTransaction so tests can run the function without a live
// database.
type txRunner func(ctx context.Context, db *sql.DB, fn store.TxFn) error

// accountService is the production AccountService implementation.
type accountService struct {
	db            *sql.DB
	accounts      store.AccountStore
	roles         store.RoleStore
	tokens        auth.TokenService
	hasher        auth.PasswordHasher
	verifier      auth.PasswordVerifier
	confirmations confirm.Generator
	queue         NotificationQueue
	defaultRole   string
	logger        *slog.Logger
	runTx         txRunner
}

// NewAccountService creates an AccountService with its dependencies.
// defaultRole is granted to accounts that do not request a role; empty
// falls back to domain.DefaultRoleName.
func NewAccountService(
	db *sql.DB,
	accounts store.AccountStore,
	roles store.RoleStore,
	tokens auth.TokenService,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	confirmations confirm.Generator,
	queue NotificationQueue,
	defaultRole string,
	log *slog.Logger,
) AccountService {
	if defaultRole == "" {
		defaultRole = domain.DefaultRoleName
	}
	if log == nil {
		log = slog.Default()
	}
	return &accountService{
		db:            db,
		accounts:      accounts,
		roles:         roles,
		tokens:        tokens,
		hasher:        hasher,
		verifier:      verifier,
		confirmations: confirmations,
		queue:         queue,
		defaultRole:   defaultRole,
		logger:        log.With(slog.String("component", "account_service")),
		runTx:         store.RunInTransaction,
	}
}

func (s *accountService) CreateAccount(ctx context.Context, req CreateAccountRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	roleName := req.Role
	if roleName == "" {
		roleName = s.defaultRole
	}
	if err := domain.ValidateRoleName(roleName); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	account, err := domain.NewAccount(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if err := s.persistAccount(ctx, account); err != nil {
		return err
	}

	log.Info("account created",
		slog.String("account_id", account.ID.String()),
		slog.String("email", account.Email))

	// The account row is committed from here on. Follow-up failures
	// leave it in place and surface as partial provisioning so an
	// operator can retry the missing step.
	if err := s.grantRole(ctx, account.ID, roleName); err != nil {
		log.Error("role grant failed after account create",
			slog.String("account_id", account.ID.String()),
			slog.String("role", roleName),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: role %q: %v", ErrPartialProvisioning, roleName, err)
	}

	token, err := s.confirmations.Issue(ctx, account.ID)
	if err != nil {
		log.Error("confirmation token issue failed after account create",
			slog.String("account_id", account.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: confirmation token: %v", ErrPartialProvisioning, err)
	}

	// Delivery is best effort: a full queue loses this notification but
	// never the registration.
	if err := s.queue.Enqueue(messaging.Notification{Email: account.Email, Token: token}); err != nil {
		log.Warn("confirmation notification dropped",
			slog.String("account_id", account.ID.String()),
			slog.String("error", err.Error()))
	}

	return nil
}

// persistAccount hashes the plaintext credential and inserts the row.
func (s *accountService) persistAccount(ctx context.Context, account *domain.Account) error {
	// Advisory pre-check; the unique index remains authoritative under
	// concurrent creates.
	exists, err := s.accounts.ExistsByEmail(ctx, account.Email)
	if err != nil {
		return fmt.Errorf("%w: checking email: %v", ErrPersistence, err)
	}
	if exists {
		return ErrDuplicateAccount
	}

	hashed, err := s.hasher.Hash(account.Password)
	if err != nil {
		return fmt.Errorf("%w: hashing password: %v", ErrPersistence, err)
	}
	account.HashedPassword = hashed
	account.Password = ""

	if err := s.accounts.Create(ctx, account); err != nil {
		if store.IsDuplicateError(err) {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("%w: creating account: %v", ErrPersistence, err)
	}
	return nil
}

// grantRole ensures the role exists and assigns it to the account, both
// within one transaction.
func (s *accountService) grantRole(ctx context.Context, accountID uuid.UUID, roleName string) error {
	return s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		roles := s.roles.WithTx(tx)
		if err := roles.EnsureRole(ctx, roleName); err != nil {
			return err
		}
		return roles.AssignRole(ctx, accountID, roleName)
	})
}

func (s *accountService) ConfirmEmail(ctx context.Context, email, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	account, err := s.accounts.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("%w: loading account: %v", ErrPersistence, err)
	}

	if err := s.confirmations.ValidateAndConsume(ctx, account.ID, token); err != nil {
		if errors.Is(err, confirm.ErrInvalidToken) {
			return ErrInvalidConfirmation
		}
		return fmt.Errorf("%w: consuming token: %v", ErrPersistence, err)
	}

	// The token is consumed at this point. Confirming an already
	// confirmed account is harmless, but a persistence failure here
	// strands the account; it must re-request a token.
	if err := s.accounts.SetEmailConfirmed(ctx, account.ID); err != nil {
		if store.IsNotFoundError(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("%w: confirming email: %v", ErrPersistence, err)
	}

	log.Info("email confirmed", slog.String("account_id", account.ID.String()))
	return nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	account, err := s.accounts.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: loading account: %v", ErrPersistence, err)
	}

	if err := s.verifier.Compare(account.HashedPassword, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	roles, err := s.roles.GetRoles(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading roles: %v", ErrPersistence, err)
	}

	token, expiresAt, err := s.tokens.GenerateToken(ctx, account.ID, account.Email, roles)
	if err != nil {
		return nil, fmt.Errorf("%w: signing token: %v", ErrPersistence, err)
	}

	log.Info("login succeeded", slog.String("account_id", account.ID.String()))
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *accountService) AddToRole(ctx context.Context, accountID uuid.UUID, roleName string) error {
	if err := domain.ValidateRoleName(roleName); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if err := s.grantRole(ctx, accountID, roleName); err != nil {
		if store.IsNotFoundError(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("%w: role %q: %v", ErrRoleAssignment, roleName, err)
	}
	return nil
}

func (s *accountService) GetAccounts(ctx context.Context) ([]AccountView, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing accounts: %v", ErrPersistence, err)
	}

	views := make([]AccountView, 0, len(accounts))
	for _, account := range accounts {
		roles, err := s.roles.GetRoles(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: loading roles: %v", ErrPersistence, err)
		}
		views = append(views, s.newAccountView(account, roles))
	}
	return views, nil
}

func (s *accountService) GetAccount(ctx context.Context, id uuid.UUID) (*AccountView, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: loading account: %v", ErrPersistence, err)
	}

	roles, err := s.roles.GetRoles(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading roles: %v", ErrPersistence, err)
	}

	view := s.newAccountView(account, roles)
	return &view, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, req UpdateAccountRequest) error {
	account, err := s.accounts.GetByID(ctx, req.ID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("%w: loading account: %v", ErrPersistence, err)
	}

	account.Email = domain.NormalizeEmail(req.Email)
	account.FirstName = req.FirstName
	account.LastName = req.LastName
	account.UpdatedAt = time.Now().UTC()

	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		switch {
		case store.IsDuplicateError(err):
			return ErrDuplicateAccount
		case store.IsNotFoundError(err):
			return ErrAccountNotFound
		default:
			return fmt.Errorf("%w: updating account: %v", ErrPersistence, err)
		}
	}

	return nil
}

func (s *accountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.accounts.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("%w: deleting account: %v", ErrPersistence, err)
	}

	log.Info("account deleted", slog.String("account_id", id.String()))
	return nil
}

func (s *accountService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := s.accounts.ExistsByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("%w: checking email: %v", ErrPersistence, err)
	}
	return exists, nil
}

func (s *accountService) EnsureAdminAccount(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	account, err := domain.NewAccount(email, password, "", "")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	// The bootstrap account is operator-provisioned; there is no inbox
	// behind it to confirm.
	account.EmailConfirmed = true

	if err := s.persistAccount(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			log.Debug("bootstrap admin already exists", slog.String("email", account.Email))
			return nil
		}
		return err
	}

	if err := s.grantRole(ctx, account.ID, AdminRoleName); err != nil {
		return fmt.Errorf("%w: role %q: %v", ErrPartialProvisioning, AdminRoleName, err)
	}

	log.Info("bootstrap admin provisioned",
		slog.String("account_id", account.ID.String()),
		slog.String("email", account.Email))
	return nil
}

// newAccountView builds the read projection: the account's first role,
// or the default role label when none is assigned.
func (s *accountService) newAccountView(account *domain.Account, roles []string) AccountView {
	role := s.defaultRole
	if len(roles) > 0 {
		role = roles[0]
	}
	return AccountView{
		ID:             account.ID,
		Email:          account.Email,
		FirstName:      account.FirstName,
		LastName:       account.LastName,
		EmailConfirmed: account.EmailConfirmed,
		Role:           role,
		CreatedAt:      account.CreatedAt,
	}
}
