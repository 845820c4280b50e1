package types

import "strings"

// Confidence is the four-level confidence scale of a consultation answer.
type Confidence string

const (
	ConfidenceHigh        Confidence = "high"
	ConfidenceModerate    Confidence = "moderate"
	ConfidenceLow         Confidence = "low"
	ConfidenceSpeculative Confidence = "speculative"
)

// NormalizeConfidence maps arbitrary generator output onto the closed
// confidence set, defaulting to moderate.
func NormalizeConfidence(raw string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(raw))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceLow:
		return ConfidenceLow
	case ConfidenceSpeculative:
		return ConfidenceSpeculative
	default:
		return ConfidenceModerate
	}
}

// EvidenceUse is one evidence citation inside a consultation answer.
type EvidenceUse struct {
	EntityID  string `json:"entity_id"`
	Name      string `json:"name,omitempty"`
	Relevance string `json:"relevance,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

// ConsultResponse is the validated synthesis output returned to callers.
// It is request-scoped and discarded after the response is sent.
type ConsultResponse struct {
	Answer       string        `json:"answer"`
	EvidenceUsed []EvidenceUse `json:"evidence_used"`
	Confidence   Confidence    `json:"confidence"`
	Frameworks   []string      `json:"frameworks_applied,omitempty"`
	Note         string        `json:"note,omitempty"`
}

// ScoreBreakdown records the per-channel contributions of a book-scoped
// evidence score.
type ScoreBreakdown struct {
	Keyword    float64 `json:"keyword"`
	Substring  float64 `json:"substring"`
	Semantic   float64 `json:"semantic"`
	Popularity float64 `json:"popularity"`
}

// Total sums the channel contributions.
func (b ScoreBreakdown) Total() float64 {
	return b.Keyword + b.Substring + b.Semantic + b.Popularity
}

// Evidence pairs an entity and its attestation in the consulted book with
// the composite score retrieval assigned it. One set exists per request.
type Evidence struct {
	Entity      *Entity        `json:"-"`
	Attestation *Attestation   `json:"-"`
	Score       float64        `json:"score"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
}
