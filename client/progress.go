package client

import (
	"sync"
	"time"
)

// ProgressTracker coalesces watch-position reports for one enrollment. Video
// players emit positions far faster than they are worth persisting; the
// tracker forwards at most one report per interval and keeps the newest
// value pending in between, so the last write always reaches the server.
type ProgressTracker struct {
	courses      *CoursesClient
	enrollmentID uint
	interval     time.Duration

	mu       sync.Mutex
	lastSent time.Time
	pending  *float64
	now      func() time.Time
}

// NewProgressTracker creates a tracker that sends at most one report per
// interval for the given enrollment.
func NewProgressTracker(c *Client, enrollmentID uint, interval time.Duration) *ProgressTracker {
	return &ProgressTracker{
		courses:      c.Courses,
		enrollmentID: enrollmentID,
		interval:     interval,
		now:          time.Now,
	}
}

// Report records a new watch position. If enough time has passed since the
// last send, the value goes out immediately; otherwise it replaces any
// pending value and waits for the next Report or Flush.
func (t *ProgressTracker) Report(percentage float64) error {
	t.mu.Lock()
	now := t.now()
	if now.Sub(t.lastSent) < t.interval {
		t.pending = &percentage
		t.mu.Unlock()
		return nil
	}
	t.lastSent = now
	t.pending = nil
	t.mu.Unlock()

	_, err := t.courses.ReportProgress(t.enrollmentID, percentage)
	return err
}

// Flush sends the pending value if there is one. Call on pause, seek-away
// and teardown so the final position is never lost to coalescing.
func (t *ProgressTracker) Flush() error {
	t.mu.Lock()
	if t.pending == nil {
		t.mu.Unlock()
		return nil
	}
	value := *t.pending
	t.pending = nil
	t.lastSent = t.now()
	t.mu.Unlock()

	_, err := t.courses.ReportProgress(t.enrollmentID, value)
	return err
}
