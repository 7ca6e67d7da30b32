// Package tui is the interactive review screen for scan results. It shows the
// findings in a table with a detail pane and lets the reviewer acknowledge
// findings into the baseline, copy locations, and rescan.
package tui

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leakhound/leakhound/internal/redact"
	"github.com/leakhound/leakhound/internal/report"
	"github.com/leakhound/leakhound/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	detailBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

// severityText returns plain text for severity (ANSI codes break table truncation).
func severityText(s types.Severity) string {
	switch s {
	case types.SevCritical:
		return "CRIT"
	case types.SevHigh:
		return "HIGH"
	case types.SevMedium:
		return "MED"
	case types.SevLow:
		return "LOW"
	case types.SevInfo:
		return "INFO"
	}
	return string(s)
}

// Model is the review screen state.
type Model struct {
	table    table.Model
	viewport viewport.Model
	findings []types.Finding
	root     string
	baseline report.Baseline
	basePath string

	rescanFunc func() ([]types.Finding, error)

	ready         bool
	quitting      bool
	showDetail    bool
	width, height int
	statusMessage string
	contextLines  int
}

type rescanDoneMsg struct {
	findings []types.Finding
	err      error
}

// NewModel builds the review screen over the given findings. root is the scan
// root used to resolve file context; basePath is the baseline file location.
func NewModel(root string, findings []types.Finding, baseline report.Baseline, basePath string, rescanFunc func() ([]types.Finding, error)) Model {
	t := table.New(
		table.WithColumns(columns()),
		table.WithRows(rowsFor(findings)),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1)
	s.Selected = lipgloss.NewStyle().
		Background(lipgloss.Color("57")).
		Foreground(lipgloss.Color("15"))
	t.SetStyles(s)

	return Model{
		table:        t,
		findings:     findings,
		root:         root,
		baseline:     baseline,
		basePath:     basePath,
		rescanFunc:   rescanFunc,
		contextLines: 3,
	}
}

func columns() []table.Column {
	return []table.Column{
		{Title: "Sev", Width: 6},
		{Title: "Category", Width: 22},
		{Title: "Location", Width: 42},
		{Title: "Match", Width: 28},
		{Title: "Status", Width: 12},
	}
}

func rowsFor(findings []types.Finding) []table.Row {
	rows := make([]table.Row, len(findings))
	for i, f := range findings {
		rows[i] = table.Row{
			severityText(f.Severity),
			f.Category,
			fmt.Sprintf("%s:%d", f.Path, f.Line),
			redact.Mask(f.Match),
			string(f.Status),
		}
	}
	return rows
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) selected() (types.Finding, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.findings) {
		return types.Finding{}, false
	}
	return m.findings[i], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width - 4)
		m.table.SetHeight(max(4, msg.Height/2-3))
		m.viewport = viewport.New(msg.Width-4, max(4, msg.Height/2-3))
		m.ready = true
		return m, nil

	case rescanDoneMsg:
		if msg.err != nil {
			m.statusMessage = "rescan failed: " + msg.err.Error()
			return m, nil
		}
		m.findings = msg.findings
		m.table.SetRows(rowsFor(m.findings))
		m.statusMessage = fmt.Sprintf("rescan done, %d finding(s)", len(m.findings))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			m.showDetail = !m.showDetail
			if m.showDetail {
				m.refreshDetail()
			}
			return m, nil
		case "a":
			return m.acknowledgeSelected(), nil
		case "c":
			if f, ok := m.selected(); ok {
				loc := fmt.Sprintf("%s:%d", f.Path, f.Line)
				if err := clipboard.WriteAll(loc); err != nil {
					m.statusMessage = "clipboard unavailable"
				} else {
					m.statusMessage = "copied " + loc
				}
			}
			return m, nil
		case "s":
			if m.rescanFunc == nil {
				return m, nil
			}
			m.statusMessage = "rescanning..."
			fn := m.rescanFunc
			return m, func() tea.Msg {
				fs, err := fn()
				return rescanDoneMsg{findings: fs, err: err}
			}
		case "+":
			m.contextLines++
			m.refreshDetail()
			return m, nil
		case "-":
			if m.contextLines > 0 {
				m.contextLines--
				m.refreshDetail()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.showDetail {
		m.refreshDetail()
	}
	return m, cmd
}

func (m Model) acknowledgeSelected() Model {
	f, ok := m.selected()
	if !ok {
		return m
	}
	i := m.table.Cursor()
	if m.findings[i].Status == types.StatusRotated {
		m.statusMessage = "rotated findings need no acknowledgement"
		return m
	}
	m.baseline.Items[report.Key(f)] = true
	m.findings[i].Status = types.StatusAcknowledged
	m.table.SetRows(rowsFor(m.findings))
	if m.basePath != "" {
		if err := saveBaseline(m.basePath, m.baseline); err != nil {
			m.statusMessage = "cannot save baseline: " + err.Error()
			return m
		}
	}
	m.statusMessage = "acknowledged " + f.Category + " in " + f.Path
	return m
}

func saveBaseline(path string, b report.Baseline) error {
	var fs []types.Finding
	for k := range b.Items {
		parts := strings.SplitN(k, "|", 3)
		if len(parts) == 3 {
			fs = append(fs, types.Finding{Path: parts[0], Category: parts[1], Match: parts[2]})
		}
	}
	return report.SaveBaseline(path, fs)
}

func (m *Model) refreshDetail() {
	f, ok := m.selected()
	if !ok {
		m.viewport.SetContent("no finding selected")
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", severityText(f.Severity), f.Category)
	fmt.Fprintf(&b, "Location: %s:%d\n", f.Path, f.Line)
	fmt.Fprintf(&b, "Match:    %s\n", matchStyle.Render(redact.Mask(f.Match)))
	fmt.Fprintf(&b, "Source:   %s   Status: %s\n", f.Source, f.Status)
	if f.Commit != "" {
		fmt.Fprintf(&b, "Commit:   %s\n", f.Commit)
	}
	if f.Recommendation != "" {
		fmt.Fprintf(&b, "\n%s\n", f.Recommendation)
	}
	if f.Source == types.SourceCurrent {
		if snippet := m.contextSnippet(f); snippet != "" {
			fmt.Fprintf(&b, "\n%s", snippet)
		}
	}
	m.viewport.SetContent(b.String())
}

// contextSnippet reads the surrounding lines from disk and syntax-highlights
// them. The matched line itself is shown redacted.
func (m Model) contextSnippet(f types.Finding) string {
	file, err := os.Open(filepath.Join(m.root, filepath.FromSlash(f.Path)))
	if err != nil {
		return ""
	}
	defer file.Close()

	var lines []string
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	lo := max(0, f.Line-1-m.contextLines)
	hi := min(len(lines), f.Line+m.contextLines)
	if lo >= hi {
		return ""
	}

	var b strings.Builder
	for i := lo; i < hi; i++ {
		txt := lines[i]
		if i == f.Line-1 {
			txt = strings.ReplaceAll(txt, f.Match, redact.Mask(f.Match))
		}
		fmt.Fprintf(&b, "%4d  %s\n", i+1, txt)
	}
	return highlight(b.String(), f.Path)
}

func highlight(src, path string) string {
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	style := styles.Get("monokai")
	formatter := formatters.Get("terminal256")
	it, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, it); err != nil {
		return src
	}
	return buf.String()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}
	if len(m.findings) == 0 {
		return titleStyle.Render("leakhound") + "\n\nNo secrets found.\n\nq quit  s rescan\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("leakhound  %d finding(s)", len(m.findings))))
	b.WriteString("\n")
	b.WriteString(tableBorderStyle.Render(m.table.View()))
	b.WriteString("\n")
	if m.showDetail {
		b.WriteString(detailBorderStyle.Render(m.viewport.View()))
		b.WriteString("\n")
	}
	help := "enter detail  a acknowledge  c copy  s rescan  +/- context  q quit"
	if m.statusMessage != "" {
		help = m.statusMessage + "   " + help
	}
	b.WriteString(statusStyle.Render(help))
	b.WriteString("\n")
	return b.String()
}
