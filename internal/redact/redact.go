// Package redact masks secret values for user-facing output. A matched secret
// is never echoed in full; only the first and last four characters survive.
package redact

import "strings"

// Mask redacts the middle of a secret, keeping the first and last four
// characters. Values of eight characters or fewer are masked entirely.
func Mask(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
