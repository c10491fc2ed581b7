package model

// BugTrackerType identifies the issue tracking service a repository uses.
type BugTrackerType string

const (
	BugTrackerNone   BugTrackerType = ""
	BugTrackerJIRA   BugTrackerType = "jira"
	BugTrackerGitHub BugTrackerType = "github"
)

// Valid reports whether t is a known bug tracker type.
func (t BugTrackerType) Valid() bool {
	switch t {
	case BugTrackerNone, BugTrackerJIRA, BugTrackerGitHub:
		return true
	}
	return false
}

// TextType is the markup language of a comment's text.
type TextType string

const (
	TextTypePlain    TextType = "plain"
	TextTypeMarkdown TextType = "markdown"
	// TextTypeHTML is only valid as a rendering target, never as stored text.
	TextTypeHTML TextType = "html"
)

// IssueStatus is the state of an issue opened from a comment.
type IssueStatus string

const (
	IssueStatusNone     IssueStatus = ""
	IssueStatusOpen     IssueStatus = "open"
	IssueStatusResolved IssueStatus = "resolved"
	IssueStatusDropped  IssueStatus = "dropped"
)
