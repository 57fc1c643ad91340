package pipeline

import "fmt"

// AlreadyRunningError reports that a stage is busy with another meeting.
// Owner identifies the meeting holding the stage.
type AlreadyRunningError struct {
	Stage string
	Owner string
}

func (e *AlreadyRunningError) Error() string {
	if e.Owner == "" {
		return fmt.Sprintf("%s already running", e.Stage)
	}
	return fmt.Sprintf("%s already running for %s", e.Stage, e.Owner)
}

// ChunkError wraps a failure while processing one chunk, preserving which
// chunk failed and the underlying cause.
type ChunkError struct {
	Stage string
	Index int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("%s chunk %d: %v", e.Stage, e.Index, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
