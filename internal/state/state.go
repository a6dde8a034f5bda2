package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Status constants for persistent job state.
const (
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusInProgress  = "in_progress"
	StatusInterrupted = "interrupted"
)

// JobEntry is the persistent state of a job's most recent execution.
type JobEntry struct {
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started,omitempty"`
	FinishedAt time.Time `json:"finished,omitempty"`
	RunID      string    `json:"run_id,omitempty"`
	Applied    int       `json:"applied"`
	Skipped    int       `json:"skipped"`
	Errors     int       `json:"errors"`
	Error      string    `json:"error,omitempty"`
}

// Counts carries the per-file totals of a finished job.
type Counts struct {
	Applied int
	Skipped int
	Errors  int
}

type stateFile struct {
	LastRun string               `json:"last_run,omitempty"`
	Jobs    map[string]*JobEntry `json:"jobs"`
}

// Tracker provides persistent job state across runs.
// Thread-safe with sync.RWMutex. Writes are atomic (tmp → rename).
type Tracker struct {
	mu      sync.RWMutex
	jobs    map[string]*JobEntry
	lastRun string
	path    string
}

// Path returns the state file inside stateDir.
func Path(stateDir string) string {
	return filepath.Join(stateDir, "state.json")
}

// Load reads the state file from disk. Returns an empty tracker if the file
// does not exist or is corrupt.
func Load(path string) *Tracker {
	t := &Tracker{
		jobs: make(map[string]*JobEntry),
		path: path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t
	}
	var sf stateFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return t
	}
	if sf.Jobs != nil {
		t.jobs = sf.Jobs
	}
	t.lastRun = sf.LastRun
	return t
}

// RecoverInterrupted marks stale in_progress jobs as interrupted.
// Returns the number of jobs recovered.
func (t *Tracker) RecoverInterrupted() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for _, e := range t.jobs {
		if e.Status == StatusInProgress {
			e.Status = StatusInterrupted
			e.FinishedAt = time.Now()
			e.Error = "interrupted: process killed before completion"
			count++
		}
	}
	if count > 0 {
		_ = t.saveLocked()
	}
	return count
}

// MarkStarted records a job as in_progress within runID.
func (t *Tracker) MarkStarted(name, runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[name] = &JobEntry{
		Status:    StatusInProgress,
		StartedAt: time.Now(),
		RunID:     runID,
	}
	if runID != "" {
		t.lastRun = runID
	}
	_ = t.saveLocked()
}

// MarkCompleted records a job that processed every file.
func (t *Tracker) MarkCompleted(name string, c Counts) {
	t.finish(name, StatusCompleted, c, "")
}

// MarkFailed records a job that could not run or had per-file errors.
func (t *Tracker) MarkFailed(name string, c Counts, errMsg string) {
	t.finish(name, StatusFailed, c, errMsg)
}

// MarkInterrupted records a job stopped by cancellation.
func (t *Tracker) MarkInterrupted(name string, c Counts) {
	t.finish(name, StatusInterrupted, c, "interrupted")
}

func (t *Tracker) finish(name, status string, c Counts, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.jobs[name]
	if e == nil {
		e = &JobEntry{StartedAt: time.Now()}
		t.jobs[name] = e
	}
	e.Status = status
	e.FinishedAt = time.Now()
	e.Applied, e.Skipped, e.Errors = c.Applied, c.Skipped, c.Errors
	e.Error = errMsg
	_ = t.saveLocked()
}

// Get returns a copy of the entry for the given job, or nil if not tracked.
func (t *Tracker) Get(name string) *JobEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e, ok := t.jobs[name]; ok {
		cpy := *e
		return &cpy
	}
	return nil
}

// Entries returns a copy of all tracked jobs.
func (t *Tracker) Entries() map[string]*JobEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make(map[string]*JobEntry, len(t.jobs))
	for k, v := range t.jobs {
		cpy := *v
		result[k] = &cpy
	}
	return result
}

// LastRun returns the ID of the most recently started run.
func (t *Tracker) LastRun() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastRun
}

// Count returns the number of tracked jobs.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.jobs)
}

// Reset removes a single job entry.
func (t *Tracker) Reset(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, name)
	_ = t.saveLocked()
}

// Clear removes all state and deletes the state file.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs = make(map[string]*JobEntry)
	t.lastRun = ""
	_ = os.Remove(t.path)
}

func (t *Tracker) saveLocked() error {
	sf := stateFile{LastRun: t.lastRun, Jobs: t.jobs}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return err
	}
	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, t.path)
}
