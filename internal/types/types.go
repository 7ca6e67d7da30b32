package types

import (
	"encoding/json"
	"time"

	"github.com/leakhound/leakhound/internal/redact"
)

// Severity is a coarse-grained risk level for a finding.
type Severity string

const (
	SevCritical Severity = "critical"
	SevHigh     Severity = "high"
	SevMedium   Severity = "medium"
	SevLow      Severity = "low"
	SevInfo     Severity = "info"
)

// Rank maps a severity to an ordinal for threshold comparisons.
// Unknown severities rank below info.
func (s Severity) Rank() int {
	switch s {
	case SevCritical:
		return 5
	case SevHigh:
		return 4
	case SevMedium:
		return 3
	case SevLow:
		return 2
	case SevInfo:
		return 1
	}
	return 0
}

// Source identifies where a finding was detected.
type Source string

const (
	SourceCurrent Source = "current"
	SourceHistory Source = "history"
)

// Status is the lifecycle annotation attached to a finding. The match data
// itself is immutable once created; only the status and severity annotations
// change after detection (rotation, baseline acknowledgement).
type Status string

const (
	StatusActive       Status = "active"
	StatusRotated      Status = "rotated"
	StatusAcknowledged Status = "acknowledged"
)

// Mode distinguishes current-tree scans from scans that also traverse
// version-control history.
type Mode string

const (
	ModeQuick Mode = "quick"
	ModeDeep  Mode = "deep"
)

// Finding describes a single pattern match: which rule fired, where, and the
// matched span. Match holds the raw matched value in process so rotated-list
// and baseline comparisons stay exact; serialization redacts it, so a full
// credential never leaves through JSON.
type Finding struct {
	Category       string   `json:"category"`
	Severity       Severity `json:"severity"`
	Path           string   `json:"file"`
	Line           int      `json:"line"`
	Match          string   `json:"match"`
	Source         Source   `json:"source"`
	Status         Status   `json:"status"`
	Commit         string   `json:"commit,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// MarshalJSON emits the finding with the matched value masked. Redaction is
// idempotent, so findings that round-trip through JSON stay stable.
func (f Finding) MarshalJSON() ([]byte, error) {
	type finding Finding
	out := finding(f)
	out.Match = redact.Mask(out.Match)
	return json.Marshal(out)
}

// Warning records a recoverable per-file or per-batch problem that did not
// abort the scan.
type Warning struct {
	Path    string `json:"file,omitempty"`
	Message string `json:"message"`
}

// ScanResult is the ordered output of one scan invocation. It is owned by the
// invocation that created it and never persisted across runs except as a
// returned payload.
type ScanResult struct {
	ScanID           string        `json:"scan_id"`
	Mode             Mode          `json:"mode"`
	Findings         []Finding     `json:"findings"`
	HistoryFindings  []Finding     `json:"history_findings,omitempty"`
	Summary          string        `json:"summary"`
	Warnings         []Warning     `json:"warnings,omitempty"`
	FilteringApplied bool          `json:"filtering_applied"`
	Truncated        bool          `json:"truncated"`
	FilesScanned     int           `json:"files_scanned"`
	Duration         time.Duration `json:"-"`
	DurationMS       int64         `json:"duration_ms"`
}

// AllFindings returns current-tree and history findings as one slice, in that
// order.
func (r ScanResult) AllFindings() []Finding {
	out := make([]Finding, 0, len(r.Findings)+len(r.HistoryFindings))
	out = append(out, r.Findings...)
	out = append(out, r.HistoryFindings...)
	return out
}

// HasSeverity reports whether any finding in the result (current or history)
// is at or above the given severity.
func (r ScanResult) HasSeverity(min Severity) bool {
	for _, f := range r.AllFindings() {
		if f.Severity.Rank() >= min.Rank() {
			return true
		}
	}
	return false
}
