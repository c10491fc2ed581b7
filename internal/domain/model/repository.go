package model

import "time"

// Repository represents a source code repository known to ReviewHub. A
// repository may be linked to a bug tracker used to resolve bug IDs mentioned
// in review requests.
type Repository struct {
	ID             int64
	Name           string
	BugTrackerType BugTrackerType
	// BugTrackerURL is the JIRA base URL for JIRA trackers and "owner/repo"
	// for GitHub trackers.
	BugTrackerURL string
	CreatedAt     time.Time
}

// HasBugTracker returns true when the repository is linked to a bug tracker.
func (r Repository) HasBugTracker() bool {
	return r.BugTrackerType != BugTrackerNone && r.BugTrackerURL != ""
}
