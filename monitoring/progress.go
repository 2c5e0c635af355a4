package monitoring

import (
	"sync/atomic"
	"time"
)

// Progress is a point-in-time view of a ProgressBar.
type Progress struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// A ProgressBar tracks a long run, such as a bounded number of polls. It may
// be updated from several goroutines.
type ProgressBar struct {
	id        string
	name      string
	startTime time.Time
	total     uint64

	finished   atomic.Uint64
	inProgress atomic.Uint64
}

// Start marks amount items as in progress.
func (b *ProgressBar) Start(amount uint64) {
	b.inProgress.Add(amount)
}

// Finish moves amount in-progress items to finished.
func (b *ProgressBar) Finish(amount uint64) {
	b.inProgress.Add(^(amount - 1))
	b.finished.Add(amount)
}

// Done counts amount items as finished without starting them first.
func (b *ProgressBar) Done(amount uint64) {
	b.finished.Add(amount)
}

// Snapshot returns the current counts.
func (b *ProgressBar) Snapshot() Progress {
	return Progress{
		ID:         b.id,
		Name:       b.name,
		StartTime:  b.startTime,
		Total:      b.total,
		Finished:   b.finished.Load(),
		InProgress: b.inProgress.Load(),
	}
}
