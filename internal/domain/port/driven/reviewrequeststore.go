package driven

import (
	"context"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
)

// ReviewRequestStore defines the driven port for review requests and their
// screenshots.
type ReviewRequestStore interface {
	Add(ctx context.Context, rr model.ReviewRequest) (model.ReviewRequest, error)
	// GetByID returns the review request, or nil if it does not exist.
	GetByID(ctx context.Context, id int64) (*model.ReviewRequest, error)
	AddScreenshot(ctx context.Context, s model.Screenshot) (model.Screenshot, error)
	// GetScreenshot returns the screenshot, or nil if it does not exist.
	GetScreenshot(ctx context.Context, id int64) (*model.Screenshot, error)
}
