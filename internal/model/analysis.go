package model

// IssueType classifies the severity of a reported issue.
type IssueType string

// Issue severities accepted in an AnalysisReport.
const (
	IssueError   IssueType = "error"
	IssueWarning IssueType = "warning"
	IssueInfo    IssueType = "info"
)

// Valid reports whether t is one of the known severities.
func (t IssueType) Valid() bool {
	switch t {
	case IssueError, IssueWarning, IssueInfo:
		return true
	}
	return false
}

// AnalysisRequest is the body accepted by the analyze endpoint.
type AnalysisRequest struct {
	URL string `json:"url"`
}

// AnalysisReport holds the four scores, the issues found, and a short summary.
type AnalysisReport struct {
	Performance   int     `json:"performance"`
	Security      int     `json:"security"`
	Accessibility int     `json:"accessibility"`
	SEO           int     `json:"seo"`
	Issues        []Issue `json:"issues"`
	Summary       string  `json:"summary"`
}

// Issue is a single finding in an AnalysisReport.
type Issue struct {
	Type    IssueType `json:"type"`
	Message string    `json:"message"`
	Count   *int      `json:"count,omitempty"`
}

// Envelope is the JSON shape of every analyze response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    *AnalysisReport `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}
