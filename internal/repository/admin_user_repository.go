package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/socialoura/spotyz/internal/models"
)

type AdminUserRepository struct {
	db *sql.DB
}

func NewAdminUserRepository(db *sql.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

func (r *AdminUserRepository) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	const query = `SELECT id, username, password_hash, created_at FROM admin_users WHERE username = $1`
	var u models.AdminUser
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find admin user: %w", err)
	}
	return &u, nil
}

// Upsert creates the admin or replaces the password hash of an existing one.
func (r *AdminUserRepository) Upsert(ctx context.Context, username, passwordHash string) (*models.AdminUser, error) {
	const query = `
INSERT INTO admin_users (username, password_hash)
VALUES ($1, $2)
ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
RETURNING id, username, password_hash, created_at`
	var u models.AdminUser
	if err := r.db.QueryRowContext(ctx, query, username, passwordHash).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("upsert admin user: %w", err)
	}
	return &u, nil
}
