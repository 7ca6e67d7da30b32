// Package ignore loads .leakhoundignore files and matches paths against them
// using gitignore semantics.
package ignore

import (
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the per-repository ignore file.
const FileName = ".leakhoundignore"

type Matcher struct{ m gitignore.Matcher }

// Load parses the ignore file at path. A missing file yields an empty matcher,
// not an error.
func Load(path string) (Matcher, error) {
	var m Matcher
	data, err := os.ReadFile(path)
	if err != nil {
		return m, nil
	}
	var ps []gitignore.Pattern
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(line, nil))
	}
	m.m = gitignore.NewMatcher(ps)
	return m, nil
}

// Match reports whether the slash-separated relative path is ignored.
// Last pattern wins, so !negations re-include earlier matches.
func (m Matcher) Match(p string) bool {
	if m.m == nil {
		return false
	}
	return m.m.Match(strings.Split(p, "/"), false)
}
