package transform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/printforge/internal/job"
	"github.com/ppiankov/printforge/internal/layout"
)

// Resizer writes a print-sized version of src to dst.
type Resizer interface {
	Resize(src, dst string) error
}

// Executor applies plans one item at a time. No destination is ever
// overwritten: an existing destination turns the item into a skip.
type Executor struct {
	Resizer  Resizer
	OnResult func(job.Result) // called after every item, may be nil
}

// Execute runs every item of p in order. Per-item failures are recorded and
// never stop the batch; cancellation of ctx stops it between items.
func (e *Executor) Execute(ctx context.Context, p *job.Plan) *job.Report {
	start := time.Now()
	rep := &job.Report{
		Job:           p.Job,
		Root:          p.Root,
		StartedAt:     start,
		Planned:       len(p.Items),
		EmptyBranches: p.EmptyBranches,
		Notices:       p.Notices,
		HoldDir:       p.HoldDir,
	}

	for _, it := range p.Items {
		if ctx.Err() != nil {
			rep.Interrupted = true
			slog.Warn("interrupted", "job", p.Job, "remaining", rep.Pending())
			break
		}
		res := e.apply(it)
		rep.Record(res)
		if e.OnResult != nil {
			e.OnResult(res)
		}
	}

	if !rep.Interrupted {
		for _, dir := range p.Cleanup {
			removed, err := removeIfEmpty(dir)
			if err != nil {
				rep.Notices = append(rep.Notices, fmt.Sprintf("cleanup %s: %v", filepath.Base(dir), err))
				continue
			}
			if removed {
				rep.Cleaned = append(rep.Cleaned, dir)
			} else {
				rep.Notices = append(rep.Notices, fmt.Sprintf("%s not empty, kept", filepath.Base(dir)))
			}
		}
	}

	rep.Duration = time.Since(start)
	return rep
}

func (e *Executor) apply(it job.Item) job.Result {
	res := job.Result{Item: it, Outcome: job.OutcomeSkipped}
	name := filepath.Base(it.Source)

	if it.Source == it.Dest {
		res.Reason = job.ReasonNamed
		return res
	}

	if layout.Exists(it.Dest) {
		switch {
		case it.Op == job.OpRename:
			slog.Warn("target exists, skipping", "file", name, "target", filepath.Base(it.Dest))
			res.Reason = job.ReasonCollision
		case it.Op == job.OpMove && it.Drop:
			if err := os.Remove(it.Source); err != nil {
				return failed(res, err)
			}
			res.Reason = job.ReasonDuplicate
		default:
			res.Reason = job.ReasonPresent
		}
		return res
	}

	var err error
	switch it.Op {
	case job.OpCopy:
		err = CopyFile(it.Source, it.Dest)
	case job.OpRename:
		err = os.Rename(it.Source, it.Dest)
	case job.OpMove:
		err = MoveFile(it.Source, it.Dest)
	case job.OpResize:
		if e.Resizer == nil {
			err = errors.New("no resizer configured")
		} else {
			err = e.Resizer.Resize(it.Source, it.Dest)
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedOp, it.Op)
	}
	if err != nil {
		return failed(res, err)
	}

	slog.Debug("applied", "op", it.Op, "file", name, "dest", it.Dest)
	res.Outcome = job.OutcomeApplied
	return res
}

func failed(res job.Result, err error) job.Result {
	slog.Error("transform failed", "op", res.Op, "file", filepath.Base(res.Source), "error", err)
	res.Outcome = job.OutcomeError
	res.Reason = ""
	res.Error = err.Error()
	return res
}

// removeIfEmpty removes dir only when it has no entries.
func removeIfEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if len(entries) > 0 {
		return false, nil
	}
	return true, os.Remove(dir)
}
