package state

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestTracker_Empty(t *testing.T) {
	tr := Load(filepath.Join(t.TempDir(), "state.json"))
	if tr.Count() != 0 {
		t.Fatalf("expected 0 entries, got %d", tr.Count())
	}
	if e := tr.Get("nonexistent"); e != nil {
		t.Fatal("expected nil for nonexistent job")
	}
	if tr.LastRun() != "" {
		t.Fatal("expected no last run")
	}
}

func TestTracker_MarkCompleted(t *testing.T) {
	tr := Load(filepath.Join(t.TempDir(), "state.json"))
	tr.MarkStarted("format-primarchs", "run-1")
	tr.MarkCompleted("format-primarchs", Counts{Applied: 3, Skipped: 17})

	e := tr.Get("format-primarchs")
	if e == nil {
		t.Fatal("expected entry for format-primarchs")
	}
	if e.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", e.Status)
	}
	if e.Applied != 3 || e.Skipped != 17 || e.Errors != 0 {
		t.Fatalf("unexpected counts: %+v", e)
	}
	if e.RunID != "run-1" {
		t.Fatalf("expected run-1, got %s", e.RunID)
	}
}

func TestTracker_MarkFailed(t *testing.T) {
	tr := Load(filepath.Join(t.TempDir(), "state.json"))
	tr.MarkFailed("copy-legionnaires", Counts{Errors: 2}, "2 files failed")

	e := tr.Get("copy-legionnaires")
	if e == nil {
		t.Fatal("expected entry for copy-legionnaires")
	}
	if e.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", e.Status)
	}
	if e.Error != "2 files failed" || e.Errors != 2 {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestTracker_MarkStarted(t *testing.T) {
	tr := Load(filepath.Join(t.TempDir(), "state.json"))
	tr.MarkStarted("reorganize", "run-abc")

	e := tr.Get("reorganize")
	if e == nil {
		t.Fatal("expected entry for reorganize")
	}
	if e.Status != StatusInProgress {
		t.Fatalf("expected in_progress, got %s", e.Status)
	}
	if tr.LastRun() != "run-abc" {
		t.Fatalf("expected last run run-abc, got %s", tr.LastRun())
	}
}

func TestTracker_MarkInterrupted(t *testing.T) {
	tr := Load(filepath.Join(t.TempDir(), "state.json"))
	tr.MarkStarted("format-legionnaires", "run-1")
	tr.MarkInterrupted("format-legionnaires", Counts{Applied: 5})

	e := tr.Get("format-legionnaires")
	if e.Status != StatusInterrupted || e.Applied != 5 {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestTracker_RecoverInterrupted(t *testing.T) {
	tr := Load(filepath.Join(t.TempDir(), "state.json"))
	tr.MarkStarted("rename-primarchs", "")
	tr.MarkStarted("rename-legionnaires", "")
	tr.MarkCompleted("rename-subjects", Counts{})

	count := tr.RecoverInterrupted()
	if count != 2 {
		t.Fatalf("expected 2 recovered, got %d", count)
	}

	e1 := tr.Get("rename-primarchs")
	if e1.Status != StatusInterrupted {
		t.Fatalf("expected interrupted, got %s", e1.Status)
	}

	// completed should not be affected
	e3 := tr.Get("rename-subjects")
	if e3.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", e3.Status)
	}
}

func TestTracker_PersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	tr := Load(path)
	tr.MarkStarted("copy-primarchs", "run-7")
	tr.MarkCompleted("copy-primarchs", Counts{Applied: 1})
	tr.MarkFailed("format-files", Counts{}, "root missing")

	tr2 := Load(path)
	if tr2.Count() != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", tr2.Count())
	}
	if tr2.LastRun() != "run-7" {
		t.Fatalf("expected last run run-7, got %s", tr2.LastRun())
	}

	e1 := tr2.Get("copy-primarchs")
	if e1.Status != StatusCompleted || e1.Applied != 1 || e1.RunID != "run-7" {
		t.Fatalf("unexpected entry: %+v", e1)
	}

	e2 := tr2.Get("format-files")
	if e2.Status != StatusFailed || e2.Error != "root missing" {
		t.Fatalf("unexpected entry: %+v", e2)
	}
}

func TestTracker_MissingFile(t *testing.T) {
	tr := Load(filepath.Join(t.TempDir(), "nonexistent", "state.json"))
	if tr.Count() != 0 {
		t.Fatal("missing file should return empty tracker")
	}
}

func TestTracker_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	_ = os.WriteFile(path, []byte("not json"), 0o644)

	tr := Load(path)
	if tr.Count() != 0 {
		t.Fatal("corrupt file should return empty tracker")
	}
}

func TestTracker_Reset(t *testing.T) {
	tr := Load(filepath.Join(t.TempDir(), "state.json"))
	tr.MarkCompleted("rename-primarchs", Counts{})
	tr.MarkCompleted("rename-subjects", Counts{})

	tr.Reset("rename-primarchs")
	if tr.Get("rename-primarchs") != nil {
		t.Fatal("rename-primarchs should be removed after reset")
	}
	if tr.Get("rename-subjects") == nil {
		t.Fatal("rename-subjects should still exist")
	}
}

func TestTracker_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	tr := Load(path)
	tr.MarkStarted("reorganize", "run-1")
	tr.MarkCompleted("reorganize", Counts{})
	tr.Clear()

	if tr.Count() != 0 || tr.LastRun() != "" {
		t.Fatal("expected empty tracker after clear")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("state file should be deleted after clear")
	}
}

func TestTracker_AtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	tr := Load(path)
	tr.MarkCompleted("copy-subjects", Counts{})

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("tmp file should not persist after successful write")
	}

	tr2 := Load(path)
	if tr2.Count() != 1 {
		t.Fatalf("expected 1 entry, got %d", tr2.Count())
	}
}

func TestTracker_ConcurrentAccess(t *testing.T) {
	tr := Load(filepath.Join(t.TempDir(), "state.json"))
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			name := "job-" + string(rune('A'+n%26))
			tr.MarkStarted(name, "run")
			tr.Get(name)
			tr.MarkCompleted(name, Counts{Applied: n})
		}(i)
	}
	wg.Wait()

	if tr.Count() == 0 {
		t.Fatal("expected entries after concurrent writes")
	}
}

func TestTracker_SnapshotIsolation(t *testing.T) {
	tr := Load(filepath.Join(t.TempDir(), "state.json"))
	tr.MarkCompleted("reorganize", Counts{})

	e := tr.Get("reorganize")
	e.Status = "modified"

	if tr.Get("reorganize").Status != StatusCompleted {
		t.Fatal("modifying copy should not affect tracker")
	}
}
