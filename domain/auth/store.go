package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Triaksa-Space/youthspark-cms/pkg/validation"
	"github.com/Triaksa-Space/youthspark-cms/utils"
	"github.com/jmoiron/sqlx"
)

// ErrUserNotFound is returned when no account has the given username.
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists is returned by CreateUser for a taken username.
var ErrUserExists = errors.New("username already exists")

// Store reads and writes admin accounts.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewStore(db *sqlx.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{db: db, timeout: timeout}
}

// FindByUsername loads one account.
func (s *Store) FindByUsername(ctx context.Context, username string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var user User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(`
		SELECT id, username, email, password, role
		FROM users
		WHERE username = ?
	`), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// UpdatePassword replaces the stored hash of one account.
func (s *Store) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE users SET password = ? WHERE id = ?"), hash, userID); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// CreateUser validates nu, hashes its password and inserts the account.
func (s *Store) CreateUser(ctx context.Context, v *validation.Validator, nu NewUser) (*User, error) {
	if err := v.Struct(ctx, "", &nu); err != nil {
		return nil, err
	}

	if _, err := s.FindByUsername(ctx, nu.Username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(nu.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO users (username, email, password, role)
		VALUES (?, ?, ?, ?)
	`), nu.Username, nu.Email, hash, nu.Role)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.FindByUsername(ctx, nu.Username)
}
