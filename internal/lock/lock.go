// Package lock keeps two printforge processes from transforming the same
// tree at once.
package lock

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// FileName is the lock file created inside the state directory.
const FileName = "printforge.lock"

// ErrLocked is returned when a live process holds the lock.
var ErrLocked = errors.New("tree is locked")

// Info describes the owner of a lock.
type Info struct {
	PID       int       `json:"pid"`
	Command   string    `json:"command"`
	StartedAt time.Time `json:"started_at"`
}

// Acquire creates the lock file in stateDir, creating the directory when
// needed. A lock left behind by a dead process is reclaimed.
func Acquire(stateDir, command string) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	path := filepath.Join(stateDir, FileName)
	info := Info{
		PID:       os.Getpid(),
		Command:   command,
		StartedAt: time.Now(),
	}

	err := write(path, &info)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create lock %s: %w", path, err)
	}

	existing, readErr := Read(stateDir)
	if readErr != nil {
		return fmt.Errorf("%w (could not read %s: %v)", ErrLocked, path, readErr)
	}
	if alive(existing.PID) {
		return fmt.Errorf("%w by PID %d since %s (%s); run 'printforge unlock' if that process is gone",
			ErrLocked, existing.PID, existing.StartedAt.Format(time.RFC3339), existing.Command)
	}

	slog.Warn("reclaiming stale lock", "stale_pid", existing.PID, "command", existing.Command)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove stale lock: %w", err)
	}
	if err := write(path, &info); err != nil {
		return fmt.Errorf("acquire after stale removal: %w", err)
	}
	return nil
}

// Release removes the lock file. It is idempotent.
func Release(stateDir string) {
	path := filepath.Join(stateDir, FileName)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to release lock", "path", path, "error", err)
	}
}

// Read returns the current lock owner.
func Read(stateDir string) (*Info, error) {
	data, err := os.ReadFile(filepath.Join(stateDir, FileName))
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse lock: %w", err)
	}
	return &info, nil
}

// Alive reports whether the lock owner is still running.
func (i *Info) Alive() bool {
	return alive(i.PID)
}

func write(path string, info *Info) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	encErr := json.NewEncoder(f).Encode(info)
	closeErr := f.Close()
	if encErr != nil {
		return encErr
	}
	return closeErr
}

func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// signal 0 checks existence without delivering anything
	return proc.Signal(syscall.Signal(0)) == nil
}
