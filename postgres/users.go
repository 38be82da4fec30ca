package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/keplerhq/authvault/directory"
)

// UserRepo implements directory.UserStore over postgres. Lookups return
// role-expanded records; the role join filters to active roles only.
type UserRepo struct {
	db DB
}

// NewUserRepo binds a repository to the given DB.
func NewUserRepo(db DB) *UserRepo {
	return &UserRepo{db: db}
}

const uniqueViolation = "23505"

func (r *UserRepo) FindByID(ctx context.Context, id string) (*directory.User, error) {
	query := `
		SELECT id, name, email, password_hash, active, created_at, updated_at
		FROM users
		WHERE id = $1 AND active
	`
	return r.findOne(ctx, query, id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*directory.User, error) {
	query := `
		SELECT id, name, email, password_hash, active, created_at, updated_at
		FROM users
		WHERE email = $1 AND active
	`
	return r.findOne(ctx, query, email)
}

func (r *UserRepo) findOne(ctx context.Context, query string, arg any) (*directory.User, error) {
	var user directory.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	roles, err := r.rolesFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return &user, nil
}

func (r *UserRepo) rolesFor(ctx context.Context, userID string) ([]directory.Role, error) {
	query := `
		SELECT r.id, r.code, r.active
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1 AND r.active
		ORDER BY ur.ord
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user roles: %w", err)
	}
	defer rows.Close()

	var roles []directory.Role
	for rows.Next() {
		var role directory.Role
		if err := rows.Scan(&role.ID, &role.Code, &role.Active); err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *UserRepo) Insert(ctx context.Context, user *directory.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Active, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return directory.ErrDuplicateEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	for i, role := range user.Roles {
		_, err := r.db.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id, ord) VALUES ($1, $2, $3)`,
			user.ID, role.ID, i)
		if err != nil {
			return fmt.Errorf("inserting user role: %w", err)
		}
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, user *directory.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4, active = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Active, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return directory.ErrDuplicateEmail
		}
		return fmt.Errorf("updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return directory.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
