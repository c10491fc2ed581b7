package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/ericfisherdev/reviewhub/internal/domain/port/driven"
)

const minPasswordLength = 8

// AuthService authenticates API callers and manages their credentials.
type AuthService struct {
	users  driven.UserStore
	logger *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users driven.UserStore, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{users: users, logger: logger}
}

// AuthenticateToken returns the owner of the API token. Unknown tokens
// return ErrLoginFailed.
func (s *AuthService) AuthenticateToken(ctx context.Context, token string) (*model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrLoginFailed
	}

	user, err := s.users.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		return nil, fmt.Errorf("look up token: %w", err)
	}
	if user == nil {
		return nil, ErrLoginFailed
	}
	return user, nil
}

// AuthenticateBasic checks a username and password. A wrong password and an
// unknown user are indistinguishable to the caller.
func (s *AuthService) AuthenticateBasic(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("look up user %q: %w", username, err)
	}
	if user == nil {
		return nil, ErrLoginFailed
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, ErrLoginFailed
	}
	if err != nil {
		return nil, fmt.Errorf("compare password for %q: %w", username, err)
	}
	return user, nil
}

// CreateUser hashes the password and stores a new user.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, isAdmin bool) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.User{}, NewFormError("username", "This field is required.")
	}
	if len(password) < minPasswordLength {
		return model.User{}, NewFormError("password",
			fmt.Sprintf("Password must be at least %d characters.", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Add(ctx, model.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	})
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("user created", "username", user.Username, "admin", user.IsAdmin)
	return user, nil
}

// CreateToken issues a new API token for the user. The plaintext token is
// returned once and only its hash is stored.
func (s *AuthService) CreateToken(ctx context.Context, username, note string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("look up user %q: %w", username, err)
	}
	if user == nil {
		return "", fmt.Errorf("user %q: %w", username, ErrNotFound)
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(raw)

	if _, err := s.users.AddToken(ctx, model.APIToken{
		UserID:    user.ID,
		TokenHash: HashToken(token),
		Note:      note,
	}); err != nil {
		return "", err
	}

	s.logger.Info("api token created", "username", user.Username)
	return token, nil
}

// HashToken returns the hex SHA-256 digest under which a token is stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
