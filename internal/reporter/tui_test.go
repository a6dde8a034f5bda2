package reporter

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTUIModel_Init(t *testing.T) {
	m := NewTUIModel(sampleJobs, nil)
	if m.Init() == nil {
		t.Fatal("Init should return a tick command")
	}
}

func TestTUIModel_TickPolls(t *testing.T) {
	m := NewTUIModel(sampleJobs, nil)
	m2, cmd := m.Update(tickMsg{})
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
	model := m2.(TUIModel)
	if len(model.jobs) != 4 {
		t.Fatalf("expected 4 jobs after tick, got %d", len(model.jobs))
	}
}

func TestTUIModel_ViewRenders(t *testing.T) {
	m := NewTUIModel(sampleJobs, nil)
	m2, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	m3, _ := m2.Update(tickMsg{})
	view := m3.(TUIModel).View()

	for _, want := range []string{"printforge: 4 jobs", "1/4 jobs", "format-primarchs", "5/20", "queued", "q: stop"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestTUIModel_EmptyBeforeResize(t *testing.T) {
	m := NewTUIModel(sampleJobs, nil)
	if m.View() != "" {
		t.Error("view should be empty before the first window size message")
	}
}

func TestTUIModel_QuitCancels(t *testing.T) {
	cancelled := false
	m := NewTUIModel(sampleJobs, func() { cancelled = true })
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !cancelled {
		t.Error("q should cancel the run")
	}
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestTUIModel_Scroll(t *testing.T) {
	var many []JobProgress
	for i := 0; i < 12; i++ {
		many = append(many, JobProgress{Name: "job"})
	}
	m := NewTUIModel(func() []JobProgress { return many }, nil)
	m.height = 8 // 4 visible rows
	m2, _ := m.Update(tickMsg{})
	m3, _ := m2.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	if got := m3.(TUIModel).scrollOffset; got != 8 {
		t.Errorf("scrollOffset = %d, want 8", got)
	}
	m4, _ := m3.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	if got := m4.(TUIModel).scrollOffset; got != 0 {
		t.Errorf("scrollOffset = %d, want 0", got)
	}
}

func TestProgressBar(t *testing.T) {
	if got := progressBar(0, 0); strings.Count(got, "░") != barWidth {
		t.Errorf("empty bar = %q", got)
	}
	if got := progressBar(10, 10); strings.Count(got, "█") != barWidth {
		t.Errorf("full bar = %q", got)
	}
}
