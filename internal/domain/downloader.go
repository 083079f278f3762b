package domain

import "context"

// Fetcher executes one download task: it streams the task's URL to the
// task's destination path, updating the task's byte counters as it goes.
// A destination that already exists short-circuits to a skipped outcome.
// Fetch returns an error only for the failed terminal state; skipped and
// completed both return nil.
type Fetcher interface {
	Fetch(ctx context.Context, task *DownloadTask) error
}
