package pipeline

import (
	"fmt"
	"sync"

	"github.com/gofrs/flock"
)

// Stage names used for single-flight guarding.
const (
	StageTranscribe = "transcribe"
	StageSummarize  = "summarize"
)

// Guard enforces one in-flight run per stage within the process.
type Guard struct {
	mu     sync.Mutex
	owners map[string]string
}

// NewGuard returns a guard with no stages held.
func NewGuard() *Guard {
	return &Guard{owners: make(map[string]string)}
}

// Acquire claims a stage for the given meeting. It fails with
// AlreadyRunningError naming the current owner when the stage is busy.
// The returned release function is idempotent.
func (g *Guard) Acquire(stage, meetingID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if owner, busy := g.owners[stage]; busy {
		return nil, &AlreadyRunningError{Stage: stage, Owner: owner}
	}
	g.owners[stage] = meetingID

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.owners, stage)
			g.mu.Unlock()
		})
	}
	return release, nil
}

// Owner reports the meeting currently holding a stage.
func (g *Guard) Owner(stage string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	owner, busy := g.owners[stage]
	return owner, busy
}

// ProcessLock is an advisory file lock preventing two minutes processes
// from working on the same library concurrently.
type ProcessLock struct {
	fl *flock.Flock
}

// AcquireProcessLock takes the library-wide lock or fails immediately when
// another process holds it.
func AcquireProcessLock(path string) (*ProcessLock, error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire process lock %s: %w", path, err)
	}
	if !locked {
		return nil, &AlreadyRunningError{Stage: "process", Owner: path}
	}
	return &ProcessLock{fl: fl}, nil
}

// Release drops the lock.
func (p *ProcessLock) Release() error {
	if p == nil || p.fl == nil {
		return nil
	}
	return p.fl.Unlock()
}
