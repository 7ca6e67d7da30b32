// Package filter implements the optional false-positive review step. A filter
// is advisory only: it may suppress or downgrade candidate findings, never add
// them, and a failing filter leaves the candidate set untouched.
package filter

import (
	"context"

	"github.com/leakhound/leakhound/internal/types"
)

// Verdict is one reviewer judgement about a candidate finding, addressed by
// its index in the reviewed batch.
type Verdict struct {
	Index      int     `json:"index"`
	IsSecret   bool    `json:"is_secret"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// FalsePositiveFilter reviews candidate findings and returns verdicts. An
// empty verdict list means "keep everything".
type FalsePositiveFilter interface {
	Review(ctx context.Context, findings []types.Finding) ([]Verdict, error)
}

// Nop keeps every candidate. It is the default when no reviewer is configured.
type Nop struct{}

func (Nop) Review(ctx context.Context, findings []types.Finding) ([]Verdict, error) {
	return nil, nil
}

// Apply folds verdicts into the candidate list. A candidate judged not to be a
// secret is suppressed at confidence >= 0.5 and kept otherwise; candidates
// without a verdict pass through. Apply never adds findings.
func Apply(findings []types.Finding, verdicts []Verdict) []types.Finding {
	if len(verdicts) == 0 {
		return findings
	}
	drop := map[int]bool{}
	for _, v := range verdicts {
		if v.Index < 0 || v.Index >= len(findings) {
			continue
		}
		if !v.IsSecret && v.Confidence >= 0.5 {
			drop[v.Index] = true
		}
	}
	out := make([]types.Finding, 0, len(findings))
	for i, f := range findings {
		if drop[i] {
			continue
		}
		out = append(out, f)
	}
	return out
}
