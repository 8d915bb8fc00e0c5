package history

import (
	"context"
	"time"
)

type Outcome string

const (
	OutcomeDownloaded Outcome = "downloaded"
	OutcomeSkipped    Outcome = "skipped"   // declined at the prompt
	OutcomeExists     Outcome = "exists"    // target file was already on disk
	OutcomeEmpty      Outcome = "empty"     // no enclosure
	OutcomeFailed     Outcome = "failed"
	OutcomeCaughtUp   Outcome = "caught_up"
)

type Entry struct {
	ID           int64
	RunID        string
	Action       string
	FeedURL      string
	FeedTitle    string
	GUID         string
	Title        string
	EnclosureURL string
	Target       string
	Outcome      Outcome
	Error        string
	RecordedAt   time.Time
}

// Recorder is what a run needs to journal item outcomes.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}
