package repository

import (
	"context"
	"errors"
	"fmt"

	"blog_backend/internal/model"

	"github.com/jackc/pgx/v5"
)

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	SetEnabled(ctx context.Context, id int64, enabled bool) (*model.User, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, password_hash, role, enabled, version, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	var role string
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &role, &user.Enabled, &user.Version, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Role = model.Role(role)
	return user, nil
}

// Create inserts a new user. A taken username yields ErrDuplicate.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	sql := `INSERT INTO users (username, password_hash, role, enabled, created_at)
            VALUES ($1, $2, $3, $4, $5) RETURNING id, version`
	err := r.db.QueryRow(ctx, sql, user.Username, user.PasswordHash, string(user.Role), user.Enabled, user.CreatedAt).
		Scan(&user.ID, &user.Version)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByUsername retrieves a user by username, or nil when absent
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by ID, or nil when absent
func (r *userRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// SetEnabled flips the enabled flag and returns the updated user
func (r *userRepository) SetEnabled(ctx context.Context, id int64, enabled bool) (*model.User, error) {
	sql := `UPDATE users SET enabled = $1, version = version + 1
            WHERE id = $2 RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, sql, enabled, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
