package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
)

// ErrRepoAlreadyExists indicates a repository with the same name already exists.
var ErrRepoAlreadyExists = errors.New("repository already exists")

// RepoStore defines the driven port for persisting repositories and their
// bug tracker configuration.
type RepoStore interface {
	// Add inserts a repository and returns it with its assigned ID.
	// Returns ErrRepoAlreadyExists if the name is taken.
	Add(ctx context.Context, repo model.Repository) (model.Repository, error)
	// GetByID returns the repository, or nil if it does not exist.
	GetByID(ctx context.Context, id int64) (*model.Repository, error)
	// GetByName returns the repository, or nil if it does not exist.
	GetByName(ctx context.Context, name string) (*model.Repository, error)
	ListAll(ctx context.Context) ([]model.Repository, error)
}
