package driven

import (
	"context"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
)

// ReviewStore defines the driven port for persisting reviews and replies.
type ReviewStore interface {
	Add(ctx context.Context, review model.Review) (model.Review, error)
	// GetByID returns the review or reply, or nil if it does not exist.
	GetByID(ctx context.Context, id int64) (*model.Review, error)
	// Touch bumps the review's timestamp after its comments change.
	Touch(ctx context.Context, id int64) error
}
