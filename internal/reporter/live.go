package reporter

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// LiveReporter redraws a compact job list in place, for terminals where the
// full-screen TUI is unwanted.
type LiveReporter struct {
	w         io.Writer
	color     bool
	getJobs   func() []JobProgress
	stop      chan struct{}
	done      chan struct{}
	lastLines int
	frame     int
	mu        sync.Mutex
}

// NewLiveReporter creates a live reporter that polls getJobs.
func NewLiveReporter(w io.Writer, color bool, getJobs func() []JobProgress) *LiveReporter {
	return &LiveReporter{
		w:       w,
		color:   color,
		getJobs: getJobs,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins the periodic refresh loop.
func (lr *LiveReporter) Start() {
	go lr.loop()
}

// Stop halts the refresh loop and clears the live display.
func (lr *LiveReporter) Stop() {
	close(lr.stop)
	<-lr.done
	lr.clearLastFrame()
}

func (lr *LiveReporter) loop() {
	defer close(lr.done)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-lr.stop:
			return
		case <-ticker.C:
			lr.render()
		}
	}
}

func (lr *LiveReporter) clearLastFrame() {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.lastLines > 0 {
		fmt.Fprintf(lr.w, "\033[%dA", lr.lastLines)
		for i := 0; i < lr.lastLines; i++ {
			fmt.Fprintf(lr.w, "\033[K\n")
		}
		fmt.Fprintf(lr.w, "\033[%dA", lr.lastLines)
	}
}

func (lr *LiveReporter) render() {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	lines := lr.buildLines(lr.getJobs())
	if lr.lastLines > 0 {
		fmt.Fprintf(lr.w, "\033[%dA", lr.lastLines)
	}
	for _, line := range lines {
		fmt.Fprintf(lr.w, "\033[K%s\n", line)
	}
	lr.lastLines = len(lines)
	lr.frame++
}

// Render produces the display lines for a given snapshot.
// Exported for testing.
func (lr *LiveReporter) Render(jobs []JobProgress) []string {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.buildLines(jobs)
}

func (lr *LiveReporter) buildLines(jobs []JobProgress) []string {
	spinner := spinnerFrames[lr.frame%len(spinnerFrames)]
	var lines []string
	var queued []string
	for _, j := range jobs {
		switch j.State {
		case JobRunning:
			lines = append(lines, fmt.Sprintf("  %s%s %-22s %d/%d  %s%s",
				lr.c(colorCyan), spinner, j.Name, j.Processed(), j.Total, j.Current, lr.c(colorReset)))
		case JobDone:
			color, icon := colorGreen, "✓"
			if j.Errors > 0 {
				color, icon = colorYellow, "!"
			}
			lines = append(lines, fmt.Sprintf("  %s%s %-22s %d applied, %d skipped, %d errors%s",
				lr.c(color), icon, j.Name, j.Applied, j.Skipped, j.Errors, lr.c(colorReset)))
		case JobFailed:
			lines = append(lines, fmt.Sprintf("  %s✗ %-22s %s%s",
				lr.c(colorRed), j.Name, j.LastError, lr.c(colorReset)))
		default:
			queued = append(queued, j.Name)
		}
	}
	if len(queued) > 0 {
		lines = append(lines, fmt.Sprintf("  %s─ queued: %s%s", lr.c(colorDim), strings.Join(queued, ", "), lr.c(colorReset)))
	}
	return lines
}

func (lr *LiveReporter) c(code string) string {
	if !lr.color {
		return ""
	}
	return code
}
