package model

// Classification is the closed set of moderation labels a message can receive.
type Classification string

const (
	ClassificationSafe       Classification = "SAFE"
	ClassificationSuspicious Classification = "SUSPICIOUS"
	ClassificationFraud      Classification = "FRAUD"
	ClassificationHarassment Classification = "HARASSMENT"
	ClassificationSpam       Classification = "SPAM"
)

// Verdict is the outcome of classifying one message. It is computed fresh per
// message and never mutated after creation.
type Verdict struct {
	IsSuspicious     bool           `json:"is_suspicious"`
	Classification   Classification `json:"classification"`
	RiskScore        int            `json:"risk_score"`
	Issues           []Issue        `json:"issues"`
	AIClassification string         `json:"ai_classification,omitempty"`
	AIReason         string         `json:"ai_reason,omitempty"`
}
