package tasks

import (
	"context"

	"github.com/lysyi3m/getpods/app/feed"
)

// SeenStore is the durable seen set as used by a run.
type SeenStore interface {
	feed.SeenSet
	Persist() error
	Path() string
}

// RunnerInterface defines a single pass over the configured feeds.
// Example usage:
//
//	runner := NewRunner(Deps{Feeds: feeds, Source: source, Store: store, ...})
//	summary, err := runner.Run(ctx, ActionAll)
//	if summary.Downloaded > 0 {
//		hook.Run(ctx, command, os.Stdout)
//	}
type RunnerInterface interface {
	Run(ctx context.Context, action Action) (Summary, error)
}
