package domain

import (
	"time"
)

// Placeholder values used when the tracker omits a field on an issue.
const (
	UnassignedPlaceholder = "Unassigned"
	UnknownPlaceholder    = "Unknown"
)

// Issue represents a single tracker ticket selected by the JQL query.
// Issues are immutable once fetched.
type Issue struct {
	Created     time.Time
	Updated     time.Time
	Key         string
	Title       string
	Description string
	Status      string
	Assignee    string
	IssueType   string
	Priority    string
	Reporter    string
}

// SummaryResult records the outcome of summarizing one issue.
// Exactly one of Summary and Err is set.
type SummaryResult struct {
	Err      error
	IssueKey string
	Summary  string
}

// Failed reports whether summarization failed for this issue.
func (r SummaryResult) Failed() bool {
	return r.Err != nil
}

// IssueReport pairs an issue with its summarization outcome. The report
// builder consumes these in fetch order.
type IssueReport struct {
	Result SummaryResult
	Issue  Issue
}
