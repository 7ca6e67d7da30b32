package core

import (
	"context"

	"github.com/leakhound/leakhound/internal/engine"
	"github.com/leakhound/leakhound/internal/rules"
	"github.com/leakhound/leakhound/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
// We can replace these with decoupled structs later without breaking callers.
type Config = engine.Config
type Finding = types.Finding
type ScanResult = types.ScanResult
type Severity = types.Severity

// Scan is the stable entrypoint for other programs.
func Scan(ctx context.Context, cfg Config) (ScanResult, error) {
	return engine.Scan(ctx, cfg)
}

// RuleIDs returns the list of configured rule IDs.
// This is exposed for convenience to avoid importing internals directly.
func RuleIDs() []string { return rules.IDs() }
