package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/lysyi3m/getpods/app/download"
	"github.com/lysyi3m/getpods/app/feed"
	"github.com/lysyi3m/getpods/app/history"
	"github.com/lysyi3m/getpods/app/prompt"
	"github.com/sirupsen/logrus"
)

var _ RunnerInterface = (*Runner)(nil)

// Summary is the outcome of one run. Downloaded is what decides whether the
// post-download hook fires.
type Summary struct {
	RunID      string
	Found      int
	Downloaded int
	Failed     int
	Skipped    int
	FeedErrors int
}

type Deps struct {
	Feeds      []*feed.Config
	Source     feed.Source
	Store      SeenStore
	Downloader download.Downloader
	Confirmer  prompt.Confirmer
	Journal    history.Recorder // optional
	Root       string           // podcasts directory
	Out        io.Writer        // run narration

	// Progress creates a progress display for one transfer. Nil disables it.
	Progress func() (download.ProgressFunc, func())
}

type Runner struct {
	Deps
	reconciler *feed.Reconciler
}

func NewRunner(deps Deps) *Runner {
	if deps.Out == nil {
		deps.Out = io.Discard
	}

	return &Runner{
		Deps:       deps,
		reconciler: feed.NewReconciler(deps.Store),
	}
}

// Run updates every feed, then handles the new items according to action.
// Per-feed and per-item failures are reported and counted. A returned error
// means the seen store could not be written or ctx was cancelled.
func (r *Runner) Run(ctx context.Context, action Action) (Summary, error) {
	run := NewRun(action)
	run.Start()
	summary := Summary{RunID: run.ID}

	items, err := r.update(ctx, run, &summary)
	if err != nil {
		return summary, err
	}

	summary.Found = len(items)
	switch summary.Found {
	case 0:
		fmt.Fprintln(r.Out, "No new episodes found.")
		return summary, nil
	case 1:
		fmt.Fprintln(r.Out, "One new episode found!")
	default:
		fmt.Fprintf(r.Out, "%d new episodes found!\n", summary.Found)
	}

	if action == ActionCatchup {
		err = r.catchup(ctx, run, items)
	} else {
		err = r.dispose(ctx, run, items, &summary)
	}

	logrus.WithFields(logrus.Fields{
		"run_id":      run.ID,
		"action":      action.String(),
		"duration":    run.GetDuration(),
		"found":       summary.Found,
		"downloaded":  summary.Downloaded,
		"failed":      summary.Failed,
		"skipped":     summary.Skipped,
		"feed_errors": summary.FeedErrors,
	}).Debug("Run completed")

	return summary, err
}

// update fetches and reconciles each feed in order. An item already surfaced
// by an earlier feed is not surfaced again.
func (r *Runner) update(ctx context.Context, run *Run, summary *Summary) ([]*feed.Item, error) {
	var items []*feed.Item
	surfaced := make(feed.Surfaced)

	for _, config := range r.Feeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := r.Source.Fetch(ctx, config.URL)
		if err != nil {
			fmt.Fprintf(r.Out, "Error updating %s: %v\n", config.URL, err)
			logrus.WithFields(logrus.Fields{
				"url":   config.URL,
				"error": err,
			}).Warn("Feed update failed")
			summary.FeedErrors++
			continue
		}

		fmt.Fprintf(r.Out, "Updating %s ...\n", doc.Title)

		result := r.reconciler.Run(doc, config, run.Action.Limit(), surfaced)
		if result.Truncated > 0 {
			logrus.WithFields(logrus.Fields{
				"feed":      doc.Title,
				"truncated": result.Truncated,
			}).Debug("Older new items marked as seen")

			if err := r.persist(); err != nil {
				return nil, err
			}
		}

		items = append(items, result.New...)
	}

	return items, nil
}

func (r *Runner) catchup(ctx context.Context, run *Run, items []*feed.Item) error {
	fmt.Fprintln(r.Out, "\nMarking all episodes as seen...")

	for _, item := range items {
		r.Store.Mark(item.GUID)
	}
	if err := r.persist(); err != nil {
		return err
	}

	for _, item := range items {
		r.record(ctx, run, item, "", history.OutcomeCaughtUp, nil)
	}

	fmt.Fprintf(r.Out, "Caught up: %d episodes marked as seen.\n", len(items))
	return nil
}

func (r *Runner) dispose(ctx context.Context, run *Run, items []*feed.Item, summary *Summary) error {
	queue, query := Partition(items)

	if run.Action == ActionAuto {
		for _, item := range query {
			fmt.Fprintf(r.Out, "* [%s] %s [not downloaded]\n", item.FeedTitle, item.Title)
		}
	} else {
		approved, err := r.ask(ctx, run, query, summary)
		if err != nil {
			return err
		}
		queue = append(queue, approved...)
	}

	if len(queue) == 0 {
		return nil
	}

	fmt.Fprintln(r.Out, "\nDownloading episodes...")
	for _, item := range queue {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.fetch(ctx, run, item, summary); err != nil {
			return err
		}
	}

	if summary.Downloaded+summary.Failed > 0 {
		fmt.Fprintf(r.Out, "Downloaded %d episode(s), %d failed.\n", summary.Downloaded, summary.Failed)
	}
	return nil
}

// ask resolves items that need confirmation. A declined item is final and is
// persisted right away. If the answer cannot be read, the remaining items stay
// pending for the next run.
func (r *Runner) ask(ctx context.Context, run *Run, query []*feed.Item, summary *Summary) ([]*feed.Item, error) {
	var approved []*feed.Item

	for _, item := range query {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ok, err := r.Confirmer.Confirm(item)
		if err != nil {
			logrus.WithError(err).Warn("Could not read answer, leaving remaining episodes for the next run")
			break
		}
		if ok {
			approved = append(approved, item)
			continue
		}

		r.Store.Mark(item.GUID)
		if err := r.persist(); err != nil {
			return nil, err
		}
		summary.Skipped++
		r.record(ctx, run, item, "", history.OutcomeSkipped, nil)
	}

	return approved, nil
}

// fetch downloads one item. Only a persist failure is returned; everything
// else is reported and counted.
func (r *Runner) fetch(ctx context.Context, run *Run, item *feed.Item, summary *Summary) error {
	fmt.Fprintf(r.Out, "* [%s] %s\n", item.FeedTitle, item.Title)

	target, err := download.Prepare(r.Root, item)
	switch {
	case errors.Is(err, download.ErrNoEnclosure):
		fmt.Fprintln(r.Out, "  nothing to download")
		return r.settle(ctx, run, item, target, history.OutcomeEmpty)

	case errors.Is(err, download.ErrTargetExists):
		fmt.Fprintf(r.Out, "  %s already exists, not downloading again.\n", target)
		fmt.Fprintf(r.Out, "  To force a new download remove that file and the line %q from %s\n", item.GUID, r.Store.Path())
		return r.settle(ctx, run, item, target, history.OutcomeExists)

	case err != nil:
		r.fail(ctx, run, item, target, err, summary)
		return nil
	}

	var report download.ProgressFunc
	finish := func() {}
	if r.Progress != nil {
		report, finish = r.Progress()
	}

	err = r.Downloader.Fetch(ctx, item.EnclosureURL, target, report)
	finish()
	if err != nil {
		r.fail(ctx, run, item, target, err, summary)
		return nil
	}

	fmt.Fprintf(r.Out, "  => %s\n", target)
	summary.Downloaded++
	return r.settle(ctx, run, item, target, history.OutcomeDownloaded)
}

// settle marks a handled item seen and persists the store.
func (r *Runner) settle(ctx context.Context, run *Run, item *feed.Item, target string, outcome history.Outcome) error {
	r.Store.Mark(item.GUID)
	if err := r.persist(); err != nil {
		return err
	}
	r.record(ctx, run, item, target, outcome, nil)
	return nil
}

// fail reports a failed item. It is not marked seen so the next run retries it.
func (r *Runner) fail(ctx context.Context, run *Run, item *feed.Item, target string, err error, summary *Summary) {
	fmt.Fprintf(r.Out, "  download failed: %v\n", err)
	logrus.WithFields(logrus.Fields{
		"guid":  item.GUID,
		"url":   item.EnclosureURL,
		"error": err,
	}).Warn("Download failed")

	summary.Failed++
	r.record(ctx, run, item, target, history.OutcomeFailed, err)
}

func (r *Runner) persist() error {
	if err := r.Store.Persist(); err != nil {
		logrus.WithFields(logrus.Fields{
			"path":  r.Store.Path(),
			"error": err,
		}).Error("Failed to save seen episodes")
		return fmt.Errorf("failed to save seen episodes: %w", err)
	}
	return nil
}

func (r *Runner) record(ctx context.Context, run *Run, item *feed.Item, target string, outcome history.Outcome, cause error) {
	if r.Journal == nil {
		return
	}

	entry := history.Entry{
		RunID:        run.ID,
		Action:       run.Action.String(),
		FeedTitle:    item.FeedTitle,
		GUID:         item.GUID,
		Title:        item.Title,
		EnclosureURL: item.EnclosureURL,
		Target:       target,
		Outcome:      outcome,
	}
	if item.Feed != nil {
		entry.FeedURL = item.Feed.URL
	}
	if cause != nil {
		entry.Error = cause.Error()
	}

	// The journal is informational; a write failure never stops the run.
	if err := r.Journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		logrus.WithError(err).Warn("Failed to record history entry")
	}
}
