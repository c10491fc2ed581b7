package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
)

// ErrUserAlreadyExists indicates a user with the same username already exists.
var ErrUserAlreadyExists = errors.New("user already exists")

// UserStore defines the driven port for user accounts and API tokens.
type UserStore interface {
	// Add inserts a user and returns it with its assigned ID.
	// Returns ErrUserAlreadyExists if the username is taken.
	Add(ctx context.Context, user model.User) (model.User, error)
	// GetByID returns the user, or nil if it does not exist.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByUsername returns the user, or nil if it does not exist.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// AddToken stores a token hash for a user.
	AddToken(ctx context.Context, token model.APIToken) (model.APIToken, error)
	// GetByTokenHash returns the owner of the token with the given SHA-256
	// hex hash, or nil if no such token exists.
	GetByTokenHash(ctx context.Context, tokenHash string) (*model.User, error)
}
