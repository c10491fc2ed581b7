package driven

import (
	"context"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
)

// BugTracker defines the driven port for looking up issues in an external
// issue tracking service. Implementations never fail: any construction or
// lookup error is logged and the zero BugInfo is returned.
type BugTracker interface {
	BugInfo(ctx context.Context, bugID string) model.BugInfo
	// BugURL returns the browsable URL of the bug.
	BugURL(bugID string) string
}
