package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leakhound/leakhound/internal/report"
	"github.com/leakhound/leakhound/internal/types"
)

// Run starts the review screen over the given findings.
func Run(root string, findings []types.Finding, baseline report.Baseline, basePath string, rescanFunc func() ([]types.Finding, error)) error {
	m := NewModel(root, findings, baseline, basePath, rescanFunc)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running review screen: %w", err)
	}
	return nil
}
