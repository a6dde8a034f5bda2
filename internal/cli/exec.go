package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppiankov/printforge/internal/config"
	"github.com/ppiankov/printforge/internal/job"
	"github.com/ppiankov/printforge/internal/layout"
	"github.com/ppiankov/printforge/internal/lock"
	"github.com/ppiankov/printforge/internal/reporter"
	"github.com/ppiankov/printforge/internal/state"
	"github.com/ppiankov/printforge/internal/transform"
)

// errInterrupted is returned when a run was cancelled before every planned
// file was processed.
var errInterrupted = errors.New("interrupted")

// execOptions holds parameters for executeJobs.
type execOptions struct {
	command string   // recorded in the lock file
	jobs    []string // registry names, in execution order
	dryRun  bool
	strict  bool // per-file errors fail the command
	resume  bool // skip jobs completed in the last run
	display string
	out     io.Writer // defaults to os.Stdout
}

// execResult wraps the report and the directory it was written to.
type execResult struct {
	report *job.RunReport
	runDir string
}

// jobRun pairs a plan with its outcome for the final printout.
type jobRun struct {
	plan   *job.Plan
	report *job.Report
}

// session carries what every job of one invocation shares.
type session struct {
	settings *config.Settings
	tracker  *state.Tracker
	progress *reporter.Progress
	text     *reporter.TextReporter
	live     bool // a live display owns the terminal
	runID    string
	resizer  transform.Resizer
}

// executeJobs is the shared execution core used by every command that
// transforms files. Jobs run sequentially; a job that cannot be planned
// aborts the remaining ones.
func executeJobs(ctx context.Context, s *config.Settings, opts execOptions) (*execResult, error) {
	out := opts.out
	if out == nil {
		out = os.Stdout
	}
	isTTY := out == os.Stdout && isTerminal()
	textRep := reporter.NewTextReporter(out, isTTY)

	defs, err := lookupJobs(opts.jobs)
	if err != nil {
		return nil, err
	}
	if opts.dryRun {
		return nil, planJobs(s, defs, textRep)
	}

	stateDir := s.Path(s.StateDir)
	if err := lock.Acquire(stateDir, opts.command); err != nil {
		return nil, err
	}
	defer lock.Release(stateDir)

	tracker := state.Load(state.Path(stateDir))
	if n := tracker.RecoverInterrupted(); n > 0 {
		slog.Warn("recovered interrupted jobs from a previous run", "count", n)
	}

	if opts.resume {
		pending, skipped := state.Resume(jobNames(defs), tracker)
		if len(skipped) > 0 {
			infos := make([]reporter.SkippedInfo, len(skipped))
			for i, sk := range skipped {
				infos[i] = reporter.SkippedInfo{Name: sk.Name, Reason: sk.Reason}
			}
			textRep.PrintSkippedByState(infos)
		}
		if len(pending) == 0 {
			fmt.Fprintln(out, "All jobs completed in the last run. Nothing to do.")
			return nil, nil
		}
		if defs, err = lookupJobs(pending); err != nil {
			return nil, err
		}
	}

	names := jobNames(defs)
	start := time.Now()
	rr := &job.RunReport{
		RunID:      newRunID(start, names),
		Timestamp:  start,
		ConfigFile: configFile,
	}
	runDir := filepath.Join(stateDir, "runs", runDirName(start, rr.RunID))

	slog.Info("starting run", "run_id", rr.RunID, "jobs", len(defs), "base_dir", s.BaseDir)
	textRep.PrintHeader(len(defs), s.BaseDir)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := reporter.NewProgress(names)
	displayMode := resolveDisplay(opts.display, isTTY)
	stopDisplay := startDisplay(displayMode, progress, cancel, out)

	ss := &session{
		settings: s,
		tracker:  tracker,
		progress: progress,
		text:     textRep,
		live:     displayMode != "off",
		runID:    rr.RunID,
		resizer:  transform.NewResizer(s.Target),
	}

	var runs []jobRun
	var fatal error
	for _, d := range defs {
		if ctx.Err() != nil {
			break
		}
		p, rep, err := ss.runJob(ctx, d)
		if err != nil {
			fatal = fmt.Errorf("%s: %w", d.Name, err)
			break
		}
		runs = append(runs, jobRun{plan: p, report: rep})
		rr.Add(rep)
		if rep.Interrupted {
			break
		}
	}
	rr.TotalDuration = time.Since(start)
	stopDisplay()

	if ss.live {
		for _, r := range runs {
			textRep.PrintJobStart(r.plan)
			textRep.PrintReport(r.report)
		}
	}
	if len(rr.Jobs) > 1 {
		textRep.PrintSummary(rr)
	}

	reportPath := filepath.Join(runDir, "report.json")
	if err := reporter.WriteJSONReport(rr, reportPath); err != nil {
		slog.Warn("failed to write report", "error", err)
	} else {
		fmt.Fprintf(out, "\nReport: %s\n", reportPath)
	}

	res := &execResult{report: rr, runDir: runDir}
	switch {
	case fatal != nil:
		return res, fatal
	case ctx.Err() != nil || interrupted(rr):
		return res, errInterrupted
	case opts.strict && rr.Errors > 0:
		return res, fmt.Errorf("%d files failed", rr.Errors)
	}
	return res, nil
}

// runJob plans and executes one job, keeping state and progress current.
func (ss *session) runJob(ctx context.Context, d job.Def) (*job.Plan, *job.Report, error) {
	ss.tracker.MarkStarted(d.Name, ss.runID)

	p, err := d.Plan(ss.settings)
	if err != nil {
		ss.tracker.MarkFailed(d.Name, state.Counts{}, err.Error())
		ss.progress.Finish(d.Name, err)
		slog.Error("job cannot run", "job", d.Name, "error", err)
		return nil, nil, err
	}

	ss.progress.Start(d.Name, len(p.Items))
	if !ss.live {
		ss.text.PrintJobStart(p)
	}
	exec := &transform.Executor{
		Resizer: ss.resizer,
		OnResult: func(res job.Result) {
			ss.progress.Record(d.Name, res)
			if !ss.live {
				ss.text.PrintResult(res)
			}
		},
	}
	rep := exec.Execute(ctx, p)
	if rep.HoldDir != "" {
		rep.HoldTotal = layout.CountMarked(rep.HoldDir, job.FilterFor(ss.settings))
	}

	counts := state.Counts{Applied: rep.Applied, Skipped: rep.Skipped, Errors: rep.Errors}
	var jobErr error
	switch {
	case rep.Interrupted:
		ss.tracker.MarkInterrupted(d.Name, counts)
		jobErr = errInterrupted
	case rep.Errors > 0:
		ss.tracker.MarkFailed(d.Name, counts, fmt.Sprintf("%d files failed", rep.Errors))
	default:
		ss.tracker.MarkCompleted(d.Name, counts)
	}
	ss.progress.Finish(d.Name, jobErr)

	if !ss.live {
		ss.text.PrintReport(rep)
	}
	slog.Debug("job finished", "job", d.Name, "applied", rep.Applied, "skipped", rep.Skipped, "errors", rep.Errors)
	return p, rep, nil
}

// planJobs prints the plan of every job without touching any file.
func planJobs(s *config.Settings, defs []job.Def, textRep *reporter.TextReporter) error {
	for _, d := range defs {
		p, err := d.Plan(s)
		if err != nil {
			return fmt.Errorf("%s: %w", d.Name, err)
		}
		textRep.PrintPlan(p)
	}
	return nil
}

func lookupJobs(names []string) ([]job.Def, error) {
	if len(names) == 0 {
		return nil, errors.New("no jobs selected")
	}
	defs := make([]job.Def, 0, len(names))
	for _, n := range names {
		d, err := job.Lookup(n)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, nil
}

func jobNames(defs []job.Def) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}

func interrupted(rr *job.RunReport) bool {
	for _, r := range rr.Jobs {
		if r.Interrupted {
			return true
		}
	}
	return false
}

// newRunID derives a short run ID from the start time and job names.
func newRunID(start time.Time, jobs []string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d", start.UnixNano())
	for _, j := range jobs {
		fmt.Fprintf(h, "|%s", j)
	}
	return hex.EncodeToString(h.Sum(nil)[:6])
}

// runDirName names a run directory so that names sort chronologically and
// two runs started within the same second never share one.
// "20261018-120805.123-3f9a0c1d2e4b"
func runDirName(start time.Time, runID string) string {
	return start.Format("20060102-150405.000") + "-" + runID
}

// resolveDisplay maps the --tui flag to full, minimal or off.
func resolveDisplay(mode string, isTTY bool) string {
	switch mode {
	case "full", "minimal":
		if isTTY {
			return mode
		}
		return "off"
	case "off":
		return "off"
	}
	// auto or unrecognized
	if isTTY {
		return "full"
	}
	return "off"
}

// startDisplay starts the live display for mode and returns its stop func.
func startDisplay(mode string, progress *reporter.Progress, cancel func(), out io.Writer) func() {
	switch mode {
	case "full":
		tuiProgram := tea.NewProgram(reporter.NewTUIModel(progress.Snapshot, cancel), tea.WithAltScreen())
		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				slog.Warn("TUI error", "error", err)
			}
		}()
		return func() {
			tuiProgram.Quit()
			time.Sleep(100 * time.Millisecond)
		}
	case "minimal":
		live := reporter.NewLiveReporter(out, true, progress.Snapshot)
		live.Start()
		return live.Stop
	}
	return func() {}
}

// signalContext returns a context cancelled on the first interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\ninterrupted, finishing the current file...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
