package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nexora/account-api/internal/domain"
	"github.com/nexora/account-api/internal/platform/logger"
	"github.com/nexora/account-api/internal/store"
)

// RoleStore implements the store.RoleStore interface using PostgreSQL.
// Roles live in their own table with a unique name; assignments are rows
// in account_roles keyed by (account_id, role_id), which makes AssignRole
// naturally idempotent via ON CONFLICT DO NOTHING.
type RoleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewRoleStore creates a new PostgreSQL implementation of the RoleStore
// interface. If logger is nil, a default logger is used.
func NewRoleStore(db store.DBTX, logger *slog.Logger) *RoleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RoleStore{
		db:     db,
		logger: logger.With(slog.String("component", "role_store")),
	}
}

// Ensure RoleStore implements store.RoleStore
var _ store.RoleStore = (*RoleStore)(nil)

// WithTx returns a RoleStore bound to the provided transaction.
func (s *RoleStore) WithTx(tx *sql.Tx) store.RoleStore {
	return &RoleStore{db: tx, logger: s.logger}
}

// EnsureRole implements store.RoleStore.EnsureRole
func (s *RoleStore) EnsureRole(ctx context.Context, name string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateRoleName(name); err != nil {
		return err
	}

	query := `
		INSERT INTO roles (id, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, uuid.New(), name, time.Now().UTC())
	if err != nil {
		log.Error("failed to ensure role",
			slog.String("error", err.Error()),
			slog.String("role", name))
		return err
	}

	if n, err := result.RowsAffected(); err == nil && n > 0 {
		log.Info("role created", slog.String("role", name))
	}
	return nil
}

// RoleExists implements store.RoleStore.RoleExists
func (s *RoleStore) RoleExists(ctx context.Context, name string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1)`
	if err := s.db.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		log.Error("failed to check role existence",
			slog.String("error", err.Error()),
			slog.String("role", name))
		return false, err
	}
	return exists, nil
}

// AssignRole implements store.RoleStore.AssignRole
func (s *RoleStore) AssignRole(ctx context.Context, accountID uuid.UUID, name string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateRoleName(name); err != nil {
		return err
	}

	query := `
		INSERT INTO account_roles (account_id, role_id, assigned_at)
		SELECT $1, r.id, $2 FROM roles r WHERE r.name = $3
		ON CONFLICT (account_id, role_id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, accountID, time.Now().UTC(), name)
	if err != nil {
		if isForeignKeyViolation(err) {
			log.Debug("assignment references missing account",
				slog.String("account_id", accountID.String()),
				slog.String("role", name))
			return store.ErrAccountNotFound
		}
		log.Error("failed to assign role",
			slog.String("error", err.Error()),
			slog.String("account_id", accountID.String()),
			slog.String("role", name))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		// Either the role name did not match any row, or the assignment
		// already existed. Disambiguate so a missing role is reported.
		exists, err := s.RoleExists(ctx, name)
		if err != nil {
			return err
		}
		if !exists {
			return store.ErrRoleNotFound
		}
		log.Debug("role already assigned",
			slog.String("account_id", accountID.String()),
			slog.String("role", name))
		return nil
	}

	log.Info("role assigned",
		slog.String("account_id", accountID.String()),
		slog.String("role", name))
	return nil
}

// GetRoles implements store.RoleStore.GetRoles
func (s *RoleStore) GetRoles(ctx context.Context, accountID uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT r.name
		FROM account_roles ar
		JOIN roles r ON r.id = ar.role_id
		WHERE ar.account_id = $1
		ORDER BY ar.assigned_at
	`
	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		log.Error("failed to get roles",
			slog.String("error", err.Error()),
			slog.String("account_id", accountID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	roles := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			log.Error("failed to scan role row", slog.String("error", err.Error()))
			return nil, err
		}
		roles = append(roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return roles, nil
}
