package report

import (
	"encoding/json"
	"os"

	"github.com/leakhound/leakhound/internal/redact"
	"github.com/leakhound/leakhound/internal/types"
)

// BaselineFile is the default acknowledgement file name.
const BaselineFile = ".leakhound-baseline.json"

// Baseline records findings a team has reviewed and accepted. Acknowledged
// findings stay in reports with status "acknowledged" and stop counting toward
// the failure threshold.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	_ = json.Unmarshal(f, &b)
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

func SaveBaseline(path string, findings []types.Finding) error {
	b := Baseline{Items: map[string]bool{}}
	for _, f := range findings {
		b.Items[Key(f)] = true
	}
	buf, _ := json.MarshalIndent(b, "", "  ")
	return os.WriteFile(path, buf, 0644)
}

// MarkAcknowledged annotates findings present in the baseline. Rotated
// findings keep their rotated status.
func MarkAcknowledged(findings []types.Finding, base Baseline) {
	for i := range findings {
		if findings[i].Status == types.StatusRotated {
			continue
		}
		if base.Items[Key(findings[i])] {
			findings[i].Status = types.StatusAcknowledged
		}
	}
}

// Key identifies a finding for baseline purposes. The match component is
// masked: redaction is idempotent, so keys stay stable whether built from the
// in-process raw value or a serialized finding, and the baseline file never
// stores a full credential.
func Key(f types.Finding) string {
	return f.Path + "|" + f.Category + "|" + redact.Mask(f.Match)
}

// ShouldFail reports whether the findings warrant a failing exit status.
// Rotated and acknowledged findings never fail a scan. An empty failOn
// defaults to critical.
func ShouldFail(findings []types.Finding, failOn string) bool {
	th := types.Severity(failOn).Rank()
	if th == 0 {
		th = types.SevCritical.Rank()
	}
	for _, f := range findings {
		if f.Status == types.StatusRotated || f.Status == types.StatusAcknowledged {
			continue
		}
		if f.Severity.Rank() >= th {
			return true
		}
	}
	return false
}
