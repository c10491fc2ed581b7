package model

import "time"

// Review is a review of a review request. When BaseReplyToID is set the
// review is a reply to the review with that ID.
type Review struct {
	ID              int64
	ReviewRequestID int64
	UserID          int64
	BaseReplyToID   *int64
	Public          bool
	BodyTop         string
	Timestamp       time.Time
}

// IsReply reports whether the review is a reply to another review.
func (r Review) IsReply() bool {
	return r.BaseReplyToID != nil
}

// IsAccessibleBy reports whether user may see the review. Drafts are only
// visible to their owner and to admins.
func (r Review) IsAccessibleBy(user *User) bool {
	if r.Public {
		return true
	}
	if user == nil {
		return false
	}
	return user.IsAdmin || user.ID == r.UserID
}

// IsMutableBy reports whether user may add, change, or remove comments on
// the review. Published reviews are immutable.
func (r Review) IsMutableBy(user *User) bool {
	if r.Public || user == nil {
		return false
	}
	return user.IsAdmin || user.ID == r.UserID
}
