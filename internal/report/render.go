// Package report renders scan results for humans and machines and decides the
// process exit status.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/leakhound/leakhound/internal/redact"
	"github.com/leakhound/leakhound/internal/types"
)

type PrintOptions struct {
	NoColor bool
}

var severityStyles = map[types.Severity]lipgloss.Style{
	types.SevCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	types.SevHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	types.SevMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	types.SevLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	types.SevInfo:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}

func severityCell(s types.Severity, noColor bool) string {
	if noColor {
		return string(s)
	}
	if st, ok := severityStyles[s]; ok {
		return st.Render(string(s))
	}
	return string(s)
}

// ColorDisabled reports whether colored output should be suppressed, either
// explicitly or because stdout is not a terminal.
func ColorDisabled(noColorFlag bool) bool {
	if noColorFlag || os.Getenv("NO_COLOR") != "" {
		return true
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

// PrintTable writes the human-readable report. Matched values are always
// redacted; the raw match never reaches the terminal.
func PrintTable(w io.Writer, res types.ScanResult, opts PrintOptions) {
	all := res.AllFindings()
	if len(all) == 0 {
		fmt.Fprintln(w, "No secrets found.")
	} else {
		table := tablewriter.NewTable(w)
		table.Header("SEVERITY", "CATEGORY", "LOCATION", "MATCH", "SOURCE", "STATUS")
		for _, f := range all {
			loc := fmt.Sprintf("%s:%d", f.Path, f.Line)
			if f.Source == types.SourceHistory && f.Commit != "" {
				loc = fmt.Sprintf("%s:%d@%s", f.Path, f.Line, shortHash(f.Commit))
			}
			table.Append([]string{
				severityCell(f.Severity, opts.NoColor),
				f.Category,
				loc,
				redact.Mask(f.Match),
				string(f.Source),
				string(f.Status),
			})
		}
		_ = table.Render()
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, res.Summary)
	if res.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", res.Duration.Seconds())
	}
	if res.FilteringApplied {
		fmt.Fprintln(w, "False-positive review: applied")
	}
	if res.Truncated {
		fmt.Fprintln(w, "Warning: scan stopped before completion, results are partial")
	}
}

// PrintWarnings writes per-file warnings, normally to stderr so they do not
// pollute JSON or table output on stdout.
func PrintWarnings(w io.Writer, warnings []types.Warning) {
	for _, wn := range warnings {
		if wn.Path != "" {
			fmt.Fprintf(w, "warning: %s: %s\n", wn.Path, wn.Message)
		} else {
			fmt.Fprintf(w, "warning: %s\n", wn.Message)
		}
	}
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
