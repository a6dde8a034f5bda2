package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/printforge/internal/config"
	"github.com/ppiankov/printforge/internal/lock"
	"github.com/ppiankov/printforge/internal/reporter"
	"github.com/ppiankov/printforge/internal/state"
)

var primarchJobs = []string{"rename-primarchs", "format-primarchs", "copy-primarchs"}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	s.BaseDir = t.TempDir()
	s.Target.Width, s.Target.Height = 16, 22
	s.Subjects = nil
	s.FormatOnly = nil
	s.Files = nil
	s.HoldExtras = nil
	return s
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 30, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 30; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 6), B: 120, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	writeFile(t, path, buf.Bytes())
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func primarchDir(s *config.Settings, legion string) string {
	return filepath.Join(s.Path(s.LegionsRoot), legion, "primarch")
}

func execute(t *testing.T, s *config.Settings, opts execOptions) (*execResult, string, error) {
	t.Helper()
	var out bytes.Buffer
	opts.out = &out
	opts.display = "off"
	if opts.command == "" {
		opts.command = "test"
	}
	res, err := executeJobs(context.Background(), s, opts)
	return res, out.String(), err
}

func TestExecuteJobs_PrimarchPipeline(t *testing.T) {
	s := testSettings(t)
	writePNG(t, filepath.Join(primarchDir(s, "legion_x"), "foo.png"))

	res, out, err := execute(t, s, execOptions{jobs: primarchJobs})
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}

	held := filepath.Join(s.Path(s.HoldDir), "Legion_X_primarch_A4.jpeg")
	f, err := os.Open(held)
	if err != nil {
		t.Fatalf("expected %s: %v", held, err)
	}
	defer func() { _ = f.Close() }()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 16 || cfg.Height != 22 {
		t.Errorf("held image is %dx%d, want 16x22", cfg.Width, cfg.Height)
	}

	rr := res.report
	if len(rr.Jobs) != 3 || rr.Applied != 3 || rr.Errors != 0 {
		t.Errorf("unexpected totals: jobs=%d applied=%d errors=%d", len(rr.Jobs), rr.Applied, rr.Errors)
	}
	if rr.Jobs[2].HoldTotal != 1 {
		t.Errorf("expected hold total 1, got %d", rr.Jobs[2].HoldTotal)
	}
	if len(rr.RunID) != 12 {
		t.Errorf("expected 12-char run ID, got %q", rr.RunID)
	}

	loaded, err := reporter.ReadJSONReport(filepath.Join(res.runDir, "report.json"))
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RunID != rr.RunID {
		t.Errorf("persisted run ID %q != %q", loaded.RunID, rr.RunID)
	}

	tracker := state.Load(state.Path(s.Path(s.StateDir)))
	for _, name := range primarchJobs {
		e := tracker.Get(name)
		if e == nil || e.Status != state.StatusCompleted || e.RunID != rr.RunID {
			t.Errorf("%s: unexpected state %+v", name, e)
		}
	}
	if _, err := lock.Read(s.Path(s.StateDir)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("lock should be released, got %v", err)
	}
	if !strings.Contains(out, "1 A4 images in") {
		t.Errorf("output lacks hold total:\n%s", out)
	}
}

func TestExecuteJobs_SecondRunSkipsEverything(t *testing.T) {
	s := testSettings(t)
	writePNG(t, filepath.Join(primarchDir(s, "legion_x"), "foo.png"))

	if _, _, err := execute(t, s, execOptions{jobs: primarchJobs}); err != nil {
		t.Fatal(err)
	}
	res, _, err := execute(t, s, execOptions{jobs: primarchJobs})
	if err != nil {
		t.Fatal(err)
	}
	if res.report.Applied != 0 || res.report.Errors != 0 {
		t.Errorf("second run: applied=%d errors=%d, want 0/0", res.report.Applied, res.report.Errors)
	}
	if res.report.Skipped != 3 {
		t.Errorf("second run: skipped=%d, want 3", res.report.Skipped)
	}
}

func TestExecuteJobs_DryRunTouchesNothing(t *testing.T) {
	s := testSettings(t)
	src := filepath.Join(primarchDir(s, "legion_x"), "foo.png")
	writePNG(t, src)

	res, out, err := execute(t, s, execOptions{jobs: primarchJobs, dryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Error("dry run should not produce a report")
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("source was renamed during dry run")
	}
	if _, err := os.Stat(s.Path(s.StateDir)); !os.IsNotExist(err) {
		t.Error("dry run created the state directory")
	}
	if !strings.Contains(out, "rename-primarchs (dry-run): 1 operations") {
		t.Errorf("plan not printed:\n%s", out)
	}
}

func TestExecuteJobs_MissingRootIsFatal(t *testing.T) {
	s := testSettings(t)

	res, _, err := execute(t, s, execOptions{jobs: primarchJobs})
	if err == nil {
		t.Fatal("expected error for missing legions root")
	}
	if !strings.Contains(err.Error(), "rename-primarchs") {
		t.Errorf("error should name the job: %v", err)
	}
	if len(res.report.Jobs) != 0 {
		t.Errorf("no job should have run, got %d", len(res.report.Jobs))
	}
	e := state.Load(state.Path(s.Path(s.StateDir))).Get("rename-primarchs")
	if e == nil || e.Status != state.StatusFailed {
		t.Errorf("expected failed state, got %+v", e)
	}
}

func TestExecuteJobs_StrictExitOnFileErrors(t *testing.T) {
	s := testSettings(t)
	dir := primarchDir(s, "legion_x")
	writeFile(t, filepath.Join(dir, "Legion_X_primarch.png"), []byte("not an image"))

	res, _, err := execute(t, s, execOptions{jobs: []string{"format-primarchs"}})
	if err != nil {
		t.Fatalf("per-file errors must not fail without --strict: %v", err)
	}
	if res.report.Errors != 1 {
		t.Errorf("expected 1 error, got %d", res.report.Errors)
	}
	e := state.Load(state.Path(s.Path(s.StateDir))).Get("format-primarchs")
	if e == nil || e.Status != state.StatusFailed || e.Errors != 1 {
		t.Errorf("expected failed state with 1 error, got %+v", e)
	}

	_, _, err = execute(t, s, execOptions{jobs: []string{"format-primarchs"}, strict: true})
	if err == nil || !strings.Contains(err.Error(), "1 files failed") {
		t.Errorf("expected strict failure, got %v", err)
	}
}

func TestExecuteJobs_Resume(t *testing.T) {
	s := testSettings(t)
	writePNG(t, filepath.Join(primarchDir(s, "legion_x"), "foo.png"))

	if _, _, err := execute(t, s, execOptions{jobs: primarchJobs}); err != nil {
		t.Fatal(err)
	}
	res, out, err := execute(t, s, execOptions{jobs: primarchJobs, resume: true})
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Error("expected no run when every job completed")
	}
	if !strings.Contains(out, "Skipped by state") || !strings.Contains(out, "Nothing to do") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestExecuteJobs_LockHeld(t *testing.T) {
	s := testSettings(t)
	writePNG(t, filepath.Join(primarchDir(s, "legion_x"), "foo.png"))
	stateDir := s.Path(s.StateDir)
	if err := lock.Acquire(stateDir, "other"); err != nil {
		t.Fatal(err)
	}
	defer lock.Release(stateDir)

	_, _, err := execute(t, s, execOptions{jobs: primarchJobs})
	if !errors.Is(err, lock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(primarchDir(s, "legion_x"), "foo.png")); err != nil {
		t.Error("locked run must not touch files")
	}
}

func TestExecuteJobs_UnknownJob(t *testing.T) {
	s := testSettings(t)
	if _, _, err := execute(t, s, execOptions{jobs: []string{"format-everything"}}); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestExecuteJobs_Cancelled(t *testing.T) {
	s := testSettings(t)
	writePNG(t, filepath.Join(primarchDir(s, "legion_x"), "foo.png"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	_, err := executeJobs(ctx, s, execOptions{jobs: primarchJobs, display: "off", out: &out})
	if !errors.Is(err, errInterrupted) {
		t.Fatalf("expected errInterrupted, got %v", err)
	}
}

func TestExecuteJobs_RunsKeepSeparateReports(t *testing.T) {
	s := testSettings(t)
	writePNG(t, filepath.Join(primarchDir(s, "legion_x"), "foo.png"))

	first, _, err := execute(t, s, execOptions{jobs: primarchJobs})
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := execute(t, s, execOptions{jobs: primarchJobs})
	if err != nil {
		t.Fatal(err)
	}
	if first.runDir == second.runDir {
		t.Fatalf("both runs wrote to %s", first.runDir)
	}
	for _, r := range []*execResult{first, second} {
		loaded, err := reporter.ReadJSONReport(filepath.Join(r.runDir, "report.json"))
		if err != nil {
			t.Fatal(err)
		}
		if loaded.RunID != r.report.RunID {
			t.Errorf("%s holds run %s, want %s", r.runDir, loaded.RunID, r.report.RunID)
		}
	}

	latest, err := findLatestRunDir(filepath.Join(s.Path(s.StateDir), "runs"))
	if err != nil {
		t.Fatal(err)
	}
	if latest != second.runDir {
		t.Errorf("latest run dir = %s, want %s", latest, second.runDir)
	}
}

func TestRunDirName(t *testing.T) {
	at := time.Date(2026, 10, 18, 12, 8, 5, 123_000_000, time.UTC)
	if got := runDirName(at, "abc123def456"); got != "20261018-120805.123-abc123def456" {
		t.Errorf("runDirName = %q", got)
	}
	earlier := runDirName(at, "ffffffffffff")
	later := runDirName(at.Add(time.Millisecond), "000000000000")
	if earlier >= later {
		t.Errorf("%q should sort before %q", earlier, later)
	}
}

func TestResolveTargets(t *testing.T) {
	jobs, err := resolveTargets("format", []string{"primarchs", "legionnaires", "primarchs"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(jobs, ",") != "format-primarchs,format-legionnaires" {
		t.Errorf("unexpected jobs: %v", jobs)
	}

	all, err := resolveTargets("copy", []string{"all"})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 copy jobs, got %v", all)
	}

	if _, err := resolveTargets("rename", []string{"emperor"}); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestResolveDisplay(t *testing.T) {
	tests := []struct {
		mode  string
		tty   bool
		wants string
	}{
		{"auto", true, "full"},
		{"auto", false, "off"},
		{"", true, "full"},
		{"minimal", true, "minimal"},
		{"full", false, "off"},
		{"off", true, "off"},
	}
	for _, tt := range tests {
		if got := resolveDisplay(tt.mode, tt.tty); got != tt.wants {
			t.Errorf("resolveDisplay(%q, %v) = %q, want %q", tt.mode, tt.tty, got, tt.wants)
		}
	}
}

func TestNewRunID(t *testing.T) {
	now := time.Now()
	a := newRunID(now, []string{"rename-primarchs"})
	b := newRunID(now, []string{"format-primarchs"})
	if len(a) != 12 {
		t.Errorf("expected 12-char run ID, got %q", a)
	}
	if a == b {
		t.Error("different jobs should produce different run IDs")
	}
	if a != newRunID(now, []string{"rename-primarchs"}) {
		t.Error("run ID should be deterministic")
	}
}
