package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/printforge/internal/job"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

// TextReporter writes human-readable output to a writer.
type TextReporter struct {
	w     io.Writer
	color bool
}

// NewTextReporter creates a text reporter.
// If w is nil, defaults to os.Stdout.
// color enables ANSI codes.
func NewTextReporter(w io.Writer, color bool) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TextReporter{w: w, color: color}
}

// PrintHeader writes the initial banner.
func (r *TextReporter) PrintHeader(jobs int, base string) {
	noun := "jobs"
	if jobs == 1 {
		noun = "job"
	}
	fmt.Fprintf(r.w, "printforge: %d %s in %s\n\n", jobs, noun, base)
}

// PrintJobStart writes the heading of one job.
func (r *TextReporter) PrintJobStart(p *job.Plan) {
	fmt.Fprintf(r.w, "%s%s%s  %s(%d files, root %s)%s\n",
		r.c(colorCyan), p.Job, r.c(colorReset), r.c(colorDim), len(p.Items), p.Root, r.c(colorReset))
}

// PrintResult writes one per-file progress line.
func (r *TextReporter) PrintResult(res job.Result) {
	name := filepath.Base(res.Source)
	switch res.Outcome {
	case job.OutcomeApplied:
		fmt.Fprintf(r.w, "  %s✓ %-7s%s %s → %s\n", r.c(colorGreen), res.Op, r.c(colorReset), name, displayDest(res.Item))
	case job.OutcomeSkipped:
		color := colorDim
		if res.Reason == job.ReasonCollision {
			color = colorYellow
		}
		fmt.Fprintf(r.w, "  %s─ skip    %s (%s)%s\n", r.c(color), name, res.Reason, r.c(colorReset))
	case job.OutcomeError:
		fmt.Fprintf(r.w, "  %s✗ %-7s %s: %s%s\n", r.c(colorRed), res.Op, name, res.Error, r.c(colorReset))
	}
}

// PrintPlan writes what a job would do without touching any file.
func (r *TextReporter) PrintPlan(p *job.Plan) {
	fmt.Fprintf(r.w, "%s%s%s (dry-run): %d operations\n", r.c(colorCyan), p.Job, r.c(colorReset), len(p.Items))
	for i, it := range p.Items {
		fmt.Fprintf(r.w, "  %d. %-7s %s\n", i+1, it.Op, it.Source)
		if it.Source == it.Dest {
			fmt.Fprintf(r.w, "     %s(already named)%s\n", r.c(colorDim), r.c(colorReset))
			continue
		}
		fmt.Fprintf(r.w, "     → %s\n", it.Dest)
	}
	r.printBranches(p.EmptyBranches)
	r.printNotices(p.Notices)
	for _, dir := range p.Cleanup {
		fmt.Fprintf(r.w, "  %sremove if empty: %s%s\n", r.c(colorDim), dir, r.c(colorReset))
	}
	fmt.Fprintln(r.w)
}

// PrintReport writes the outcome of one job.
func (r *TextReporter) PrintReport(rep *job.Report) {
	fmt.Fprintf(r.w, "  %sApplied: %d%s  ", r.c(colorGreen), rep.Applied, r.c(colorReset))
	fmt.Fprintf(r.w, "%sSkipped: %d%s  ", r.c(colorYellow), rep.Skipped, r.c(colorReset))
	fmt.Fprintf(r.w, "%sErrors: %d%s  ", r.c(colorRed), rep.Errors, r.c(colorReset))
	fmt.Fprintf(r.w, "Empty: %d  ", len(rep.EmptyBranches))
	fmt.Fprintf(r.w, "Duration: %s\n", rep.Duration.Truncate(time.Millisecond))

	if rep.Interrupted {
		fmt.Fprintf(r.w, "  %sinterrupted: %d of the planned files were not processed%s\n",
			r.c(colorYellow), rep.Pending(), r.c(colorReset))
	}
	for _, res := range rep.Results {
		if res.Outcome == job.OutcomeError {
			fmt.Fprintf(r.w, "  %s✗ %s: %s%s\n", r.c(colorRed), res.Source, res.Error, r.c(colorReset))
		}
	}
	r.printBranches(rep.EmptyBranches)
	r.printNotices(rep.Notices)
	for _, dir := range rep.Cleaned {
		fmt.Fprintf(r.w, "  removed empty folder %s\n", dir)
	}
	if rep.HoldDir != "" {
		fmt.Fprintf(r.w, "  %d A4 images in %s\n", rep.HoldTotal, rep.HoldDir)
	}
	fmt.Fprintln(r.w)
}

// PrintSummary writes the totals of a multi-job run.
func (r *TextReporter) PrintSummary(rr *job.RunReport) {
	fmt.Fprintf(r.w, "%s--- Summary ---%s\n", r.c(colorCyan), r.c(colorReset))
	fmt.Fprintf(r.w, "Jobs: %d  ", len(rr.Jobs))
	fmt.Fprintf(r.w, "%sApplied: %d%s  ", r.c(colorGreen), rr.Applied, r.c(colorReset))
	fmt.Fprintf(r.w, "%sSkipped: %d%s  ", r.c(colorYellow), rr.Skipped, r.c(colorReset))
	fmt.Fprintf(r.w, "%sErrors: %d%s  ", r.c(colorRed), rr.Errors, r.c(colorReset))
	fmt.Fprintf(r.w, "Empty branches: %d  ", rr.EmptyBranches)
	fmt.Fprintf(r.w, "Duration: %s\n", rr.TotalDuration.Truncate(time.Millisecond))
}

// SkippedInfo describes a job left out by persistent state.
type SkippedInfo struct {
	Name   string
	Reason string
}

// PrintSkippedByState writes the jobs left out of a resumed run.
func (r *TextReporter) PrintSkippedByState(skipped []SkippedInfo) {
	fmt.Fprintf(r.w, "%sSkipped by state:%s\n", r.c(colorDim), r.c(colorReset))
	for _, s := range skipped {
		fmt.Fprintf(r.w, "  %s%-22s%s  %s\n", r.c(colorDim), s.Name, r.c(colorReset), s.Reason)
	}
	fmt.Fprintln(r.w)
}

func (r *TextReporter) printBranches(branches []string) {
	if len(branches) == 0 {
		return
	}
	fmt.Fprintf(r.w, "  %sEmpty branches:%s\n", r.c(colorYellow), r.c(colorReset))
	for _, b := range branches {
		fmt.Fprintf(r.w, "    %s\n", b)
	}
}

func (r *TextReporter) printNotices(notices []string) {
	for _, n := range notices {
		fmt.Fprintf(r.w, "  %s! %s%s\n", r.c(colorYellow), n, r.c(colorReset))
	}
}

func (r *TextReporter) c(code string) string {
	if !r.color {
		return ""
	}
	return code
}

// displayDest shortens same-directory destinations to a base name.
func displayDest(it job.Item) string {
	if filepath.Dir(it.Source) == filepath.Dir(it.Dest) {
		return filepath.Base(it.Dest)
	}
	return it.Dest
}
