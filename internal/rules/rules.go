package rules

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/leakhound/leakhound/internal/types"
)

// Rule is a static matcher plus metadata for one detectable category.
// Rules are declared at init and never mutated at runtime; every scan shares
// the same process-wide table.
type Rule struct {
	ID          string
	Description string
	Severity    types.Severity
	// Group selects the submatch that carries the secret value (0 = whole
	// match). Rules that anchor on a keyword capture the value in group 1.
	Group int
	re    *regexp.Regexp
}

// Matcher exposes the compiled regexp for tests.
func (r Rule) Matcher() *regexp.Regexp { return r.re }

func mustRule(id, description string, sev types.Severity, group int, pattern string) Rule {
	return Rule{
		ID:          id,
		Description: description,
		Severity:    sev,
		Group:       group,
		re:          regexp.MustCompile(pattern),
	}
}

// IDs returns the rule IDs in table order.
func IDs() []string {
	out := make([]string, 0, len(All))
	for _, r := range All {
		out = append(out, r.ID)
	}
	return out
}

// ByID returns the rule with the given ID, if present.
func ByID(id string) (Rule, bool) {
	for _, r := range All {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// Select returns the subset of the table selected by comma-separated enable
// and disable lists. Empty lists select everything.
func Select(enable, disable string) []Rule {
	if enable == "" && disable == "" {
		return All
	}
	allowed := map[string]bool{}
	for _, id := range strings.Split(enable, ",") {
		if id = strings.TrimSpace(id); id != "" {
			allowed[id] = true
		}
	}
	blocked := map[string]bool{}
	for _, id := range strings.Split(disable, ",") {
		if id = strings.TrimSpace(id); id != "" {
			blocked[id] = true
		}
	}
	var out []Rule
	for _, r := range All {
		if len(allowed) > 0 && !allowed[r.ID] {
			continue
		}
		if blocked[r.ID] {
			continue
		}
		out = append(out, r)
	}
	return out
}

var reTestPath = regexp.MustCompile(`(?i)(^|/)(tests?|testdata|__tests__|spec|specs|examples?|fixtures?|samples?|docs?|mocks?)(/|$)|_test\.go$|\.(test|spec)\.[jt]sx?$`)

// IsTestContext reports whether a path looks like test, example, or
// documentation content. Matches in such files are downgraded, not dropped.
func IsTestContext(path string) bool {
	return reTestPath.MatchString(strings.ReplaceAll(path, "\\", "/"))
}

func contextSeverity(r Rule, path string) types.Severity {
	if !IsTestContext(path) {
		return r.Severity
	}
	if r.Severity == types.SevLow || r.Severity == types.SevInfo {
		return types.SevInfo
	}
	return types.SevLow
}

// Recommendation returns the remediation hint for a severity.
func Recommendation(sev types.Severity) string {
	switch sev {
	case types.SevCritical:
		return "Rotate this credential immediately and remove it from the codebase."
	case types.SevHigh:
		return "Rotate this credential and load it from the environment instead."
	case types.SevMedium:
		return "Consider moving this value into environment configuration."
	case types.SevLow:
		return "Review whether this value belongs in the codebase."
	default:
		return "Informational finding - review as needed."
	}
}

const inlineIgnore = "leakhound:ignore"

// ScanContent applies every rule in set to the content line by line and
// returns findings in ascending line order. Lines carrying the inline ignore
// directive are skipped. The returned findings have Source and Status left at
// their zero values; the engine stamps those.
func ScanContent(path string, data []byte, set []Rule) []types.Finding {
	var out []types.Finding
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		txt := sc.Text()
		if strings.Contains(txt, inlineIgnore) {
			continue
		}
		for _, r := range set {
			for _, m := range r.re.FindAllStringSubmatchIndex(txt, -1) {
				lo, hi := m[0], m[1]
				if r.Group > 0 && 2*r.Group+1 < len(m) && m[2*r.Group] >= 0 {
					lo, hi = m[2*r.Group], m[2*r.Group+1]
				}
				sev := contextSeverity(r, path)
				out = append(out, types.Finding{
					Category:       r.ID,
					Severity:       sev,
					Path:           path,
					Line:           line,
					Match:          txt[lo:hi],
					Recommendation: Recommendation(sev),
				})
			}
		}
	}
	return out
}
