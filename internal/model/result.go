package model

import "time"

// DetectionResult is the outcome of one analysis.
// It is built once and never modified afterwards.
type DetectionResult struct {
	Originality    float64  `json:"originality"`     // 0-100
	Matches        []Match  `json:"matches"`         // Deduplicated by span
	Sources        []Source `json:"sources"`         // Sorted by match count, descending
	LocalSuspicion float64  `json:"local_suspicion"` // 0-1
	ExternalUsed   bool     `json:"external_used"`   // At least one external call succeeded

	TotalWords int `json:"total_words"`
	TotalChars int `json:"total_chars"`

	Signals []Signal `json:"signals,omitempty"` // Scoring breakdown, informational only
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`           // Signal classification
	Severity    SignalSeverity         `json:"severity"`       // info, warning, critical
	Description string                 `json:"description"`    // Human-readable description
	Data        map[string]interface{} `json:"data,omitempty"` // Transparent scoring data (formulas, inputs)
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalNGramRepetition       SignalType = "ngram_repetition"
	SignalFingerprintUniqueness SignalType = "fingerprint_uniqueness"
	SignalStyleHeuristics       SignalType = "style_heuristics"
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// CheckStatus is the lifecycle state of a submitted check
type CheckStatus string

const (
	StatusPending   CheckStatus = "pending"
	StatusCompleted CheckStatus = "completed"
	StatusFailed    CheckStatus = "failed"
)

// CheckRecord is what the hosting layer persists for a task id
type CheckRecord struct {
	TaskID      string           `json:"task_id"`
	Status      CheckStatus      `json:"status"`
	Mode        Mode             `json:"mode"`
	Lang        Lang             `json:"lang"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Result      *DetectionResult `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Complete marks the record completed with the given result
func (r *CheckRecord) Complete(res *DetectionResult, at time.Time) {
	r.Status = StatusCompleted
	r.Result = res
	r.CompletedAt = &at
}

// Fail marks the record failed
func (r *CheckRecord) Fail(err error, at time.Time) {
	r.Status = StatusFailed
	r.Error = err.Error()
	r.CompletedAt = &at
}
