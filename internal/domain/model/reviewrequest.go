package model

import "time"

// ReviewRequest is a change submitted for review.
type ReviewRequest struct {
	ID           int64
	SubmitterID  int64
	RepositoryID *int64
	// LocalSite is the name of the local site the request belongs to, or ""
	// for the global site.
	LocalSite string
	Summary   string
	Public    bool
	CreatedAt time.Time
}

// IsAccessibleBy reports whether user may see the review request. A nil user
// is an anonymous visitor.
func (rr ReviewRequest) IsAccessibleBy(user *User) bool {
	if rr.Public {
		return true
	}
	if user == nil {
		return false
	}
	return user.IsAdmin || user.ID == rr.SubmitterID
}

// Screenshot is an image attached to a review request that comments can
// annotate by region.
type Screenshot struct {
	ID              int64
	ReviewRequestID int64
	Caption         string
	Path            string
}
