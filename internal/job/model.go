package job

import (
	"encoding/json"
	"fmt"
	"time"
)

// Op is the transformation applied to one file.
type Op string

const (
	OpCopy   Op = "copy"
	OpRename Op = "rename"
	OpResize Op = "resize"
	OpMove   Op = "move"
)

// Outcome is the terminal state of one item within a run.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeSkipped
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "APPLIED"
	case OutcomeSkipped:
		return "SKIPPED"
	case OutcomeError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON writes the outcome as its lowercase name.
func (o Outcome) MarshalJSON() ([]byte, error) {
	switch o {
	case OutcomeApplied:
		return []byte(`"applied"`), nil
	case OutcomeSkipped:
		return []byte(`"skipped"`), nil
	case OutcomeError:
		return []byte(`"error"`), nil
	}
	return nil, fmt.Errorf("unknown outcome %d", int(o))
}

// UnmarshalJSON accepts the names written by MarshalJSON.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "applied":
		*o = OutcomeApplied
	case "skipped":
		*o = OutcomeSkipped
	case "error":
		*o = OutcomeError
	default:
		return fmt.Errorf("unknown outcome %q", s)
	}
	return nil
}

// Skip reasons recorded on skipped results.
const (
	ReasonPresent   = "already present"
	ReasonNamed     = "already named"
	ReasonCollision = "name collision"
	ReasonDuplicate = "duplicate removed"
)

// Item is one planned operation.
type Item struct {
	Op     Op     `json:"op"`
	Branch string `json:"branch"` // e.g. "Blood Angels/legionnaire/1"
	Source string `json:"source"`
	Dest   string `json:"dest"`
	// Drop removes Source when Dest already exists (move only).
	Drop bool `json:"drop,omitempty"`
}

// Plan is the ordered work of one job.
type Plan struct {
	Job           string   `json:"job"`
	Root          string   `json:"root"`
	Items         []Item   `json:"items"`
	EmptyBranches []string `json:"empty_branches,omitempty"`
	Notices       []string `json:"notices,omitempty"`
	// Cleanup lists directories removed after the items when empty.
	Cleanup []string `json:"cleanup,omitempty"`
	// HoldDir is set by copy jobs to report the hold total.
	HoldDir string `json:"hold_dir,omitempty"`
}

// Notice records a planning warning.
func (p *Plan) Notice(format string, args ...any) {
	p.Notices = append(p.Notices, fmt.Sprintf(format, args...))
}

// Result captures the outcome of one item.
type Result struct {
	Item
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Report is the outcome of one job.
type Report struct {
	Job           string        `json:"job"`
	Root          string        `json:"root"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	Planned       int           `json:"planned"`
	Applied       int           `json:"applied"`
	Skipped       int           `json:"skipped"`
	Errors        int           `json:"errors"`
	EmptyBranches []string      `json:"empty_branches,omitempty"`
	Notices       []string      `json:"notices,omitempty"`
	Cleaned       []string      `json:"cleaned,omitempty"`
	Interrupted   bool          `json:"interrupted,omitempty"`
	HoldDir       string        `json:"hold_dir,omitempty"`
	HoldTotal     int           `json:"hold_total,omitempty"`
	Results       []Result      `json:"results"`
}

// Record appends a result and updates the counters.
func (r *Report) Record(res Result) {
	switch res.Outcome {
	case OutcomeApplied:
		r.Applied++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeError:
		r.Errors++
	}
	r.Results = append(r.Results, res)
}

// Pending returns the planned items that were never processed.
func (r *Report) Pending() int {
	return r.Planned - len(r.Results)
}

// RunReport is the persisted output of one printforge invocation.
type RunReport struct {
	RunID         string        `json:"run_id"`
	Timestamp     time.Time     `json:"timestamp"`
	ConfigFile    string        `json:"config_file,omitempty"`
	DryRun        bool          `json:"dry_run,omitempty"`
	Jobs          []*Report     `json:"jobs"`
	Applied       int           `json:"applied"`
	Skipped       int           `json:"skipped"`
	Errors        int           `json:"errors"`
	EmptyBranches int           `json:"empty_branches"`
	TotalDuration time.Duration `json:"total_duration"`
}

// Add appends a job report and folds its counts into the totals.
func (rr *RunReport) Add(r *Report) {
	rr.Jobs = append(rr.Jobs, r)
	rr.Applied += r.Applied
	rr.Skipped += r.Skipped
	rr.Errors += r.Errors
	rr.EmptyBranches += len(r.EmptyBranches)
}
