package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"

	"studyhub/internal/models"
)

type Users struct {
	DB *sql.DB
}

func NewUsers(db *sql.DB) *Users {
	return &Users{DB: db}
}

// HashPassword is the existing credential scheme: hex-encoded SHA-256 of
// the raw password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *Users) ByID(ctx context.Context, id int64) (u models.User, err error) {
	err = s.DB.QueryRowContext(ctx,
		"SELECT user_id, name, email, is_admin, created_at FROM users WHERE user_id = ?", id).
		Scan(&u.ID, &u.Name, &u.Email, &u.IsAdmin, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

func (s *Users) ByEmail(ctx context.Context, email string) (u models.User, err error) {
	err = s.DB.QueryRowContext(ctx,
		"SELECT user_id, name, email, password, is_admin, created_at FROM users WHERE email = ?", email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

func (s *Users) Create(ctx context.Context, name, email, password string, isAdmin bool) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password, is_admin) VALUES (?, ?, ?, ?)",
		name, email, HashPassword(password), isAdmin)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Users) Update(ctx context.Context, id int64, name, email string) error {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ? WHERE user_id = ?", name, email, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

func (s *Users) Delete(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM users WHERE user_id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}
