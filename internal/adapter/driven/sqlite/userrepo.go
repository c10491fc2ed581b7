package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/ericfisherdev/reviewhub/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port interface.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Add inserts a new user. Returns ErrUserAlreadyExists if the username is taken.
func (r *UserRepo) Add(ctx context.Context, user model.User) (model.User, error) {
	const query = `INSERT INTO users (username, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?)`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		user.Username, user.PasswordHash, boolToInt(user.IsAdmin), formatTime(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("add user %q: %w", user.Username, driven.ErrUserAlreadyExists)
		}
		return model.User{}, fmt.Errorf("add user %q: %w", user.Username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("get user id: %w", err)
	}
	user.ID = id

	return user, nil
}

// GetByID retrieves a user by ID. Returns nil, nil if the user does not exist.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, username, password_hash, is_admin, created_at FROM users WHERE id = ?`

	user, err := scanUser(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}

	return user, nil
}

// GetByUsername retrieves a user by username. Returns nil, nil if the user
// does not exist.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const query = `SELECT id, username, password_hash, is_admin, created_at FROM users WHERE username = ?`

	user, err := scanUser(r.db.Reader.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}

	return user, nil
}

// AddToken stores an API token hash for a user.
func (r *UserRepo) AddToken(ctx context.Context, token model.APIToken) (model.APIToken, error) {
	const query = `INSERT INTO api_tokens (user_id, token_hash, note, created_at) VALUES (?, ?, ?, ?)`

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		token.UserID, token.TokenHash, token.Note, formatTime(token.CreatedAt),
	)
	if err != nil {
		return model.APIToken{}, fmt.Errorf("add token for user %d: %w", token.UserID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.APIToken{}, fmt.Errorf("get token id: %w", err)
	}
	token.ID = id

	return token, nil
}

// GetByTokenHash returns the owner of the token. Returns nil, nil if no token
// has the given hash.
func (r *UserRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	const query = `
		SELECT u.id, u.username, u.password_hash, u.is_admin, u.created_at
		FROM api_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token_hash = ?
	`

	user, err := scanUser(r.db.Reader.QueryRowContext(ctx, query, tokenHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by token: %w", err)
	}

	return user, nil
}

func scanUser(s scanner) (*model.User, error) {
	var user model.User
	var isAdmin int
	var createdAt string

	err := s.Scan(&user.ID, &user.Username, &user.PasswordHash, &isAdmin, &createdAt)
	if err != nil {
		return nil, err
	}

	user.IsAdmin = isAdmin != 0

	user.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &user, nil
}
