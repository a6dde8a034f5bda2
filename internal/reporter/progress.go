package reporter

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/ppiankov/printforge/internal/job"
)

// JobState is the display state of one job in a pipeline.
type JobState int

const (
	JobQueued JobState = iota
	JobRunning
	JobDone
	JobFailed
)

// JobProgress is a point-in-time view of one job.
type JobProgress struct {
	Name      string
	State     JobState
	Total     int
	Applied   int
	Skipped   int
	Errors    int
	Current   string // base name of the last processed file
	LastError string
	StartedAt time.Time
	Duration  time.Duration
}

// Processed returns the number of items handled so far.
func (p JobProgress) Processed() int {
	return p.Applied + p.Skipped + p.Errors
}

// Progress collects live counters for the displays. Safe for concurrent use:
// the executor writes while a display goroutine polls Snapshot.
type Progress struct {
	mu   sync.Mutex
	jobs []*JobProgress
}

// NewProgress creates a tracker for the given pipeline order.
func NewProgress(names []string) *Progress {
	p := &Progress{}
	for _, n := range names {
		p.jobs = append(p.jobs, &JobProgress{Name: n})
	}
	return p
}

func (p *Progress) find(name string) *JobProgress {
	for _, j := range p.jobs {
		if j.Name == name {
			return j
		}
	}
	j := &JobProgress{Name: name}
	p.jobs = append(p.jobs, j)
	return j
}

// Start marks a job running with total planned items.
func (p *Progress) Start(name string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	j := p.find(name)
	j.State = JobRunning
	j.Total = total
	j.StartedAt = time.Now()
}

// Record folds one item result into the job counters.
func (p *Progress) Record(name string, res job.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	j := p.find(name)
	switch res.Outcome {
	case job.OutcomeApplied:
		j.Applied++
	case job.OutcomeSkipped:
		j.Skipped++
	case job.OutcomeError:
		j.Errors++
		j.LastError = filepath.Base(res.Source) + ": " + res.Error
	}
	j.Current = filepath.Base(res.Source)
}

// Finish marks a job done, or failed when err is set.
func (p *Progress) Finish(name string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	j := p.find(name)
	j.State = JobDone
	if err != nil {
		j.State = JobFailed
		j.LastError = err.Error()
	}
	if !j.StartedAt.IsZero() {
		j.Duration = time.Since(j.StartedAt)
	}
	j.Current = ""
}

// Snapshot returns a copy of all jobs in pipeline order.
func (p *Progress) Snapshot() []JobProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]JobProgress, len(p.jobs))
	for i, j := range p.jobs {
		out[i] = *j
	}
	return out
}
