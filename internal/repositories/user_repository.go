package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

// GetByEmail looks a user up by email or username.
func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	db, err := sqlxDB(r.DB)
	if err != nil {
		return u, err
	}
	err = db.GetContext(ctx, &u, `
		SELECT id, name, email, password_hash, role, status
		FROM users
		WHERE email = ? OR username = ?
		LIMIT 1
	`, email, email)
	if errors.Is(err, sql.ErrNoRows) {
		return u, domain.NotFoundError{Resource: "user", Err: err}
	}
	if err != nil {
		return u, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
