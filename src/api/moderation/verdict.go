// Package moderation implements the content-moderation and trust pipeline:
// an automated classifier gates user-submitted posts before they are stored,
// a per-user trust ledger tracks moderation history, and an admin review
// service handles the posts that pass automated screening.
package moderation

// Severity / risk levels shared by content and link verdicts.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Violation type tags attached to content verdicts.
const (
	ViolationHateSpeech    = "hate_speech"
	ViolationAbusive       = "abusive"
	ViolationExplicit      = "explicit"
	ViolationViolence      = "violence"
	ViolationSpam          = "spam"
	ViolationMaliciousLink = "malicious_link"
)

// Verdict is the result of one content classification. It is ephemeral:
// folded into the admission decision and discarded, never stored verbatim.
type Verdict struct {
	IsViolation    bool     `json:"isViolation"`
	Reason         string   `json:"reason"`
	Severity       string   `json:"severity"`
	ViolationTypes []string `json:"violationTypes"`
}

// LinkVerdict is the result of one URL risk assessment.
type LinkVerdict struct {
	IsSafe    bool     `json:"isSafe"`
	RiskLevel string   `json:"riskLevel"`
	Reason    string   `json:"reason"`
	Warnings  []string `json:"warnings"`
}
