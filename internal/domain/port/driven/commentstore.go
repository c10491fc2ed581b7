package driven

import (
	"context"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
)

// ScreenshotCommentStore defines the driven port for screenshot comments,
// including replies to them.
type ScreenshotCommentStore interface {
	// Create inserts a comment and returns it with its assigned ID and timestamp.
	Create(ctx context.Context, comment model.ScreenshotComment) (model.ScreenshotComment, error)
	// Update persists text, rich text flag, and extra data of an existing comment.
	Update(ctx context.Context, comment model.ScreenshotComment) (model.ScreenshotComment, error)
	Delete(ctx context.Context, id int64) error
	// GetByID returns the comment, or nil if it does not exist.
	GetByID(ctx context.Context, id int64) (*model.ScreenshotComment, error)
	// GetReplyTo returns the comment in reviewID that replies to replyToID,
	// or nil if the review holds no such reply.
	GetReplyTo(ctx context.Context, reviewID, replyToID int64) (*model.ScreenshotComment, error)
	// ListByReview returns a page of the review's comments ordered by
	// timestamp, then ID.
	ListByReview(ctx context.Context, reviewID int64, offset, limit int) ([]model.ScreenshotComment, error)
	CountByReview(ctx context.Context, reviewID int64) (int, error)
}
