package model

// IssueKind identifies which detector produced an issue.
type IssueKind string

const (
	IssueLexicalMatch   IssueKind = "lexical_match"
	IssuePatternMatch   IssueKind = "pattern_match"
	IssueSuspiciousLink IssueKind = "suspicious_link"
)

// Severity ranks how alarming a single matched issue is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Issue is a single piece of evidence (matched keyword, pattern or link)
// contributing to a verdict. Issues are immutable once produced.
type Issue struct {
	Kind         IssueKind `json:"kind"`
	MatchedToken string    `json:"matched_token"`
	Severity     Severity  `json:"severity"`
}
