package tournament

import "github.com/verte-zerg/sortbench/internal/model"

// ProgressListener receives progress updates.
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event.
type EventType string

// EventType constants
const (
	EventTournamentStart    EventType = "tournament_start"
	EventTournamentComplete EventType = "tournament_complete"
	EventRunStart           EventType = "run_start"
	EventRunComplete        EventType = "run_complete"
	EventRunSkipped         EventType = "run_skipped"
)

// ProgressEvent represents a progress update.
type ProgressEvent struct {
	EventType  EventType
	RunID      int64
	Repetition int
	Shape      model.ArrayShape
	A          string
	B          string
	Size       int
	Completed  int
	Total      int

	// Set on EventRunComplete.
	WonA    bool
	WonB    bool
	FailedA error
	FailedB error

	// Set on EventRunSkipped.
	Err error

	// Set on EventTournamentComplete.
	Skipped  int
	Failures int
}

// Percent returns the completed share of runs in [0, 100].
func (e ProgressEvent) Percent() float64 {
	if e.Total <= 0 {
		return 100
	}
	return float64(e.Completed) / float64(e.Total) * 100
}
