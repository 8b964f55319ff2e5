package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/da-pic/coffeepos/internal/auth"
	"github.com/da-pic/coffeepos/internal/user"
)

// createUserWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) createUserWithQuerier(ctx context.Context, q querier, u *user.User) error {
	now := time.Now()
	result, err := q.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, full_name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.Username, u.PasswordHash, u.FullName, string(u.Role), formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return errors.Wrap(err, "create user")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u *user.User) error {
	return s.createUserWithQuerier(ctx, s.querier(), u)
}

// getUserByUsernameWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getUserByUsernameWithQuerier(ctx context.Context, q querier, username string) (*user.User, error) {
	var u user.User
	var role, createdAt, updatedAt string
	err := q.QueryRowContext(ctx, `
		SELECT id, username, password_hash, full_name, role, created_at, updated_at
		FROM users
		WHERE username = ?
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &role, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.getUserByUsernameWithQuerier(ctx, s.querier(), username)
}

// updateUserPasswordWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) updateUserPasswordWithQuerier(ctx context.Context, q querier, id int64, passwordHash string) error {
	result, err := q.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
	`, passwordHash, formatTime(time.Now()), id)
	if err != nil {
		return errors.Wrap(err, "update user password")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUserPassword replaces the stored password hash.
func (s *SQLiteStore) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return s.updateUserPasswordWithQuerier(ctx, s.querier(), id, passwordHash)
}

// Transaction delegations

func (t *sqliteTx) CreateUser(ctx context.Context, u *user.User) error {
	return t.store.createUserWithQuerier(ctx, t.querier(), u)
}

func (t *sqliteTx) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	return t.store.getUserByUsernameWithQuerier(ctx, t.querier(), username)
}

func (t *sqliteTx) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return t.store.updateUserPasswordWithQuerier(ctx, t.querier(), id, passwordHash)
}
