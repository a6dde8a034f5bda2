package reporter

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// TUI styles
var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	runStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // cyan
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

const barWidth = 24

type tickMsg time.Time

// TUIModel is the Bubbletea model for the printforge live display.
type TUIModel struct {
	getJobs   func() []JobProgress
	cancelRun func() // called on 'q' to cancel the run context

	jobs         []JobProgress
	scrollOffset int
	frame        int
	width        int
	height       int
}

// NewTUIModel creates a new TUI model polling getJobs.
func NewTUIModel(getJobs func() []JobProgress, cancelRun func()) TUIModel {
	return TUIModel{
		getJobs:   getJobs,
		cancelRun: cancelRun,
	}
}

// Init implements tea.Model.
func (m TUIModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancelRun != nil {
				m.cancelRun()
			}
			return m, tea.Quit
		case "j", "down":
			m.scrollDown(1)
		case "k", "up":
			m.scrollUp(1)
		case "g", "home":
			m.scrollOffset = 0
		case "G", "end":
			m.scrollOffset = m.maxScroll()
		}

	case tickMsg:
		m.jobs = m.getJobs()
		m.frame++
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m *TUIModel) scrollDown(n int) {
	m.scrollOffset += n
	if max := m.maxScroll(); m.scrollOffset > max {
		m.scrollOffset = max
	}
}

func (m *TUIModel) scrollUp(n int) {
	m.scrollOffset -= n
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

func (m TUIModel) visibleJobs() int {
	// header(1) + totals(1) + blank(1) + help(1)
	avail := m.height - 4
	if avail < 3 {
		return 3
	}
	return avail
}

func (m TUIModel) maxScroll() int {
	if n := len(m.jobs) - m.visibleJobs(); n > 0 {
		return n
	}
	return 0
}

// View implements tea.Model.
func (m TUIModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("printforge: %d jobs", len(m.jobs))))
	b.WriteString("\n")
	b.WriteString(m.totalsLine())
	b.WriteString("\n\n")

	lines := m.jobLines()
	start := m.scrollOffset
	if start > len(lines) {
		start = len(lines)
	}
	end := start + m.visibleJobs()
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[start:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	for i := 3 + (end - start); i < m.height-1; i++ {
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("  ↑↓/jk: scroll  g/G: top/bottom  q: stop after current file"))
	return b.String()
}

func (m TUIModel) jobLines() []string {
	spinner := spinnerChars[m.frame%len(spinnerChars)]
	lines := make([]string, 0, len(m.jobs))
	for _, j := range m.jobs {
		lines = append(lines, m.fmtJob(j, spinner))
	}
	return lines
}

func (m TUIModel) fmtJob(j JobProgress, spinner string) string {
	counts := fmt.Sprintf("%d applied  %d skipped  %d errors", j.Applied, j.Skipped, j.Errors)
	switch j.State {
	case JobRunning:
		elapsed := time.Since(j.StartedAt).Truncate(time.Second)
		line := runStyle.Render(fmt.Sprintf("  %s %-22s", spinner, j.Name)) +
			" " + progressBar(j.Processed(), j.Total) +
			runStyle.Render(fmt.Sprintf(" %d/%d  %s  %s", j.Processed(), j.Total, elapsed, j.Current))
		if j.Errors > 0 {
			line += "  " + failedStyle.Render(truncate(j.LastError, 40))
		}
		return line
	case JobDone:
		style := doneStyle
		icon := "✓"
		if j.Errors > 0 {
			style = warnStyle
			icon = "!"
		}
		return style.Render(fmt.Sprintf("  %s %-22s %s  %s", icon, j.Name, counts, j.Duration.Truncate(time.Millisecond)))
	case JobFailed:
		return failedStyle.Render(fmt.Sprintf("  ✗ %-22s %s", j.Name, truncate(j.LastError, 60)))
	}
	return dimStyle.Render(fmt.Sprintf("  ─ %-22s queued", j.Name))
}

func (m TUIModel) totalsLine() string {
	var applied, skipped, errors, done int
	for _, j := range m.jobs {
		applied += j.Applied
		skipped += j.Skipped
		errors += j.Errors
		if j.State == JobDone || j.State == JobFailed {
			done++
		}
	}
	parts := []string{
		fmt.Sprintf("%d/%d jobs", done, len(m.jobs)),
		doneStyle.Render(fmt.Sprintf("%d applied", applied)),
		dimStyle.Render(fmt.Sprintf("%d skipped", skipped)),
	}
	if errors > 0 {
		parts = append(parts, failedStyle.Render(fmt.Sprintf("%d errors", errors)))
	}
	return "  " + strings.Join(parts, "  ")
}

func progressBar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = done * barWidth / total
	}
	if filled > barWidth {
		filled = barWidth
	}
	return barStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", barWidth-filled))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
