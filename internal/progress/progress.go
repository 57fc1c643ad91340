// Package progress tracks in-flight pipeline state and fans snapshots out
// to subscribers. A tracker is always in exactly one phase; completing or
// aborting a run returns it to idle.
package progress

import (
	"sync"
	"time"
)

// Phase identifies what the pipeline is currently doing.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseTranscribing Phase = "transcribing"
	PhaseSummarizing  Phase = "summarizing"
)

// Snapshot is an immutable view of tracker state.
type Snapshot struct {
	Phase       Phase
	MeetingID   string
	ChunksDone  int
	ChunksTotal int
	Message     string
	StartedAt   time.Time
	UpdatedAt   time.Time
}

// Active reports whether a run is in flight.
func (s Snapshot) Active() bool {
	return s.Phase != PhaseIdle && s.Phase != ""
}

// Percent returns completion as 0-100. An active run with an unknown chunk
// total reports 0.
func (s Snapshot) Percent() float64 {
	if s.ChunksTotal <= 0 {
		return 0
	}
	pct := float64(s.ChunksDone) / float64(s.ChunksTotal) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// Tracker holds current pipeline progress and notifies subscribers on
// every transition.
type Tracker struct {
	mu      sync.Mutex
	snap    Snapshot
	subs    map[int]chan Snapshot
	nextSub int
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{
		snap: Snapshot{Phase: PhaseIdle},
		subs: make(map[int]chan Snapshot),
	}
}

// Begin transitions the tracker into an active phase with the given chunk
// total. Chunk progress starts at zero.
func (t *Tracker) Begin(phase Phase, meetingID string, chunksTotal int) {
	now := time.Now()
	t.mu.Lock()
	t.snap = Snapshot{
		Phase:       phase,
		MeetingID:   meetingID,
		ChunksTotal: chunksTotal,
		StartedAt:   now,
		UpdatedAt:   now,
	}
	snap := t.snap
	t.mu.Unlock()
	t.publish(snap)
}

// Advance records completed chunk progress. Calls on an idle tracker are
// ignored.
func (t *Tracker) Advance(chunksDone int, message string) {
	t.mu.Lock()
	if !t.snap.Active() {
		t.mu.Unlock()
		return
	}
	t.snap.ChunksDone = chunksDone
	t.snap.Message = message
	t.snap.UpdatedAt = time.Now()
	snap := t.snap
	t.mu.Unlock()
	t.publish(snap)
}

// Finish returns the tracker to idle regardless of the outcome of the run.
func (t *Tracker) Finish() {
	t.mu.Lock()
	t.snap = Snapshot{Phase: PhaseIdle, UpdatedAt: time.Now()}
	snap := t.snap
	t.mu.Unlock()
	t.publish(snap)
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// Subscribe registers a snapshot listener. The returned cancel function
// unregisters it and closes the channel. Slow subscribers miss updates
// rather than blocking the pipeline.
func (t *Tracker) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	t.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (t *Tracker) publish(snap Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
