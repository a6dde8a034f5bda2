package state

import (
	"path/filepath"
	"strings"
	"testing"
)

var pipeline = []string{"rename-primarchs", "format-primarchs", "copy-primarchs"}

func TestResume_NoState(t *testing.T) {
	tr := Load(filepath.Join(t.TempDir(), "state.json"))
	pending, skipped := Resume(pipeline, tr)
	if len(pending) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(pending))
	}
	if len(skipped) != 0 {
		t.Fatalf("expected 0 skipped, got %d", len(skipped))
	}
}

func TestResume_SkipsCompletedInLastRun(t *testing.T) {
	tr := Load(filepath.Join(t.TempDir(), "state.json"))
	tr.MarkStarted("rename-primarchs", "run-2")
	tr.MarkCompleted("rename-primarchs", Counts{})
	tr.MarkStarted("format-primarchs", "run-2")
	tr.MarkInterrupted("format-primarchs", Counts{Applied: 4})

	pending, skipped := Resume(pipeline, tr)
	if strings.Join(pending, ",") != "format-primarchs,copy-primarchs" {
		t.Fatalf("unexpected pending: %v", pending)
	}
	if len(skipped) != 1 || skipped[0].Name != "rename-primarchs" {
		t.Fatalf("expected rename-primarchs skipped, got %v", skipped)
	}
}

func TestResume_KeepsCompletedFromEarlierRun(t *testing.T) {
	tr := Load(filepath.Join(t.TempDir(), "state.json"))
	tr.MarkStarted("copy-primarchs", "run-1")
	tr.MarkCompleted("copy-primarchs", Counts{})
	tr.MarkStarted("rename-primarchs", "run-2")
	tr.MarkFailed("rename-primarchs", Counts{Errors: 1}, "1 file failed")

	pending, skipped := Resume(pipeline, tr)
	if len(pending) != 3 {
		t.Fatalf("expected all jobs pending, got %v", pending)
	}
	if len(skipped) != 0 {
		t.Fatalf("expected none skipped, got %v", skipped)
	}
}
