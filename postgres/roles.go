package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/keplerhq/authvault/directory"
)

// RoleRepo implements directory.RoleStore over postgres. Roles are
// immutable reference data; there is no write path.
type RoleRepo struct {
	db DB
}

// NewRoleRepo binds a repository to the given DB.
func NewRoleRepo(db DB) *RoleRepo {
	return &RoleRepo{db: db}
}

func (r *RoleRepo) FindByCode(ctx context.Context, code string) (*directory.Role, error) {
	query := `
		SELECT id, code, active
		FROM roles
		WHERE code = $1
	`
	var role directory.Role
	err := r.db.QueryRow(ctx, query, code).Scan(&role.ID, &role.Code, &role.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrRoleNotFound
		}
		return nil, fmt.Errorf("querying role: %w", err)
	}
	return &role, nil
}
