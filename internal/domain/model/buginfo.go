package model

// BugInfo is the normalized description of an issue in an external bug
// tracker. The zero value is returned when a lookup fails.
type BugInfo struct {
	Summary     string
	Description string
	Status      string
}

// IsEmpty reports whether no field was populated.
func (b BugInfo) IsEmpty() bool {
	return b.Summary == "" && b.Description == "" && b.Status == ""
}
