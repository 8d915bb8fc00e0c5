package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Run identifies one invocation. Its ID is stamped on every history entry.
type Run struct {
	ID        string
	Action    Action
	StartedAt *time.Time
}

func NewRun(action Action) *Run {
	return &Run{
		ID:     uuid.NewString(),
		Action: action,
	}
}

func (r *Run) Start() {
	now := time.Now()
	r.StartedAt = &now
}

func (r *Run) GetDuration() time.Duration {
	if r.StartedAt == nil {
		return 0
	}
	return time.Since(*r.StartedAt)
}
