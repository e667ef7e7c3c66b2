package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"polity/contexts/governance-core/authorization-service/domain/entities"
	domainerrors "polity/contexts/governance-core/authorization-service/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

type roleAssignmentModel struct {
	Account   string    `gorm:"column:account;primaryKey"`
	RoleName  string    `gorm:"column:role_name;primaryKey"`
	GrantedBy string    `gorm:"column:granted_by"`
	GrantedAt time.Time `gorm:"column:granted_at"`
}

func (roleAssignmentModel) TableName() string { return "authz_role_assignments" }

func (r *Repository) GetRole(_ context.Context, roleName string) (entities.Role, error) {
	// The role catalog is fixed; assignments are the only persisted state.
	roleName = strings.ToLower(strings.TrimSpace(roleName))
	for _, role := range entities.BuiltinRoles() {
		if role.RoleName == roleName {
			return role, nil
		}
	}
	return entities.Role{}, domainerrors.ErrRoleNotFound
}

func (r *Repository) ListAccountRoles(ctx context.Context, account string) ([]entities.RoleAssignment, error) {
	var rows []roleAssignmentModel
	err := r.db.WithContext(ctx).
		Where("account = ?", strings.TrimSpace(account)).
		Order("role_name asc").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("authz_repo_list_roles_failed", err, "account", account)
	}
	items := make([]entities.RoleAssignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.RoleAssignment{
			Account:   row.Account,
			RoleName:  row.RoleName,
			GrantedBy: row.GrantedBy,
			GrantedAt: row.GrantedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) ListEffectivePermissions(ctx context.Context, account string) ([]string, error) {
	assignments, err := r.ListAccountRoles(ctx, account)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	permissions := make([]string, 0)
	for _, assignment := range assignments {
		role, err := r.GetRole(ctx, assignment.RoleName)
		if err != nil {
			continue
		}
		for _, permission := range role.Permissions {
			if seen[permission] {
				continue
			}
			seen[permission] = true
			permissions = append(permissions, permission)
		}
	}
	return permissions, nil
}

func (r *Repository) AssignRole(ctx context.Context, assignment entities.RoleAssignment) error {
	row := roleAssignmentModel{
		Account:   strings.TrimSpace(assignment.Account),
		RoleName:  strings.ToLower(strings.TrimSpace(assignment.RoleName)),
		GrantedBy: strings.TrimSpace(assignment.GrantedBy),
		GrantedAt: assignment.GrantedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrRoleAlreadyAssigned
		}
		return r.logError("authz_repo_assign_role_failed", create.Error,
			"account", assignment.Account,
			"role", assignment.RoleName,
		)
	}
	return nil
}

func (r *Repository) RemoveRole(ctx context.Context, account string, roleName string) error {
	result := r.db.WithContext(ctx).
		Where("account = ? AND role_name = ?",
			strings.TrimSpace(account),
			strings.ToLower(strings.TrimSpace(roleName)),
		).
		Delete(&roleAssignmentModel{})
	if result.Error != nil {
		return r.logError("authz_repo_remove_role_failed", result.Error,
			"account", account,
			"role", roleName,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRoleNotAssigned
	}
	return nil
}

// SeedInitialAdmin grants both builtin roles to the configured initializer
// account. Safe to call on every boot.
func (r *Repository) SeedInitialAdmin(ctx context.Context, account string, grantedAt time.Time) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil
	}
	for _, roleName := range []string{entities.RoleDefaultAdmin, entities.RoleAdmin} {
		row := roleAssignmentModel{
			Account:   account,
			RoleName:  roleName,
			GrantedBy: account,
			GrantedAt: grantedAt.UTC(),
		}
		create := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if create.Error != nil {
			return r.logError("authz_repo_seed_admin_failed", create.Error, "account", account)
		}
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance-core/authorization-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("authorization repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
