package model

import "time"

// ScreenshotComment is a comment on a rectangular region of a screenshot.
// Replies carry ReplyToID and inherit the region of the comment they answer.
type ScreenshotComment struct {
	ID           int64
	ReviewID     int64
	ScreenshotID int64
	ReplyToID    *int64
	Text         string
	RichText     bool
	X            int
	Y            int
	W            int
	H            int
	IssueOpened  bool
	IssueStatus  IssueStatus
	ExtraData    map[string]any
	Timestamp    time.Time
}

// TextType returns the markup language of the comment text.
func (c ScreenshotComment) TextType() TextType {
	if c.RichText {
		return TextTypeMarkdown
	}
	return TextTypePlain
}
