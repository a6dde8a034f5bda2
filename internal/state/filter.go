package state

import "log/slog"

// SkippedJob records why a job was left out of a resumed pipeline.
type SkippedJob struct {
	Name   string
	Reason string
}

// Resume drops the jobs that already completed in the last run, keeping the
// pipeline order. Jobs that failed, were interrupted, or belong to an
// earlier run are kept; every job is idempotent, so rerunning them only
// picks up the files still missing.
func Resume(jobs []string, tracker *Tracker) ([]string, []SkippedJob) {
	last := tracker.LastRun()
	if last == "" {
		return jobs, nil
	}

	var pending []string
	var skipped []SkippedJob
	for _, name := range jobs {
		e := tracker.Get(name)
		if e != nil && e.Status == StatusCompleted && e.RunID == last {
			skipped = append(skipped, SkippedJob{Name: name, Reason: "completed in run " + last})
			slog.Info("skipping job", "job", name, "run", last)
			continue
		}
		pending = append(pending, name)
	}
	return pending, skipped
}
