package daemon

import (
	"sync"
	"time"
)

// Lifecycle shuts the daemon down after a period without requests.
type Lifecycle struct {
	timeout time.Duration
	started time.Time

	mu       sync.Mutex
	timer    *time.Timer
	lastSeen time.Time

	done     chan struct{}
	doneOnce sync.Once
}

// NewLifecycle starts the idle timer.
func NewLifecycle(timeout time.Duration) *Lifecycle {
	now := time.Now()
	l := &Lifecycle{
		timeout:  timeout,
		started:  now,
		lastSeen: now,
		done:     make(chan struct{}),
	}
	l.timer = time.AfterFunc(timeout, l.finish)
	return l
}

// Touch records activity and restarts the idle timer.
func (l *Lifecycle) Touch() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastSeen = time.Now()
	l.timer.Reset(l.timeout)
}

// IdleRemaining returns the time left before an idle shutdown.
func (l *Lifecycle) IdleRemaining() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return max(l.timeout-time.Since(l.lastSeen), 0)
}

// Uptime returns how long the daemon has been running.
func (l *Lifecycle) Uptime() time.Duration {
	return time.Since(l.started)
}

// LastActivity returns when the last request arrived.
func (l *Lifecycle) LastActivity() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSeen
}

// Done is closed once shutdown was requested or the daemon went idle.
func (l *Lifecycle) Done() <-chan struct{} {
	return l.done
}

// Stop requests shutdown. It is idempotent.
func (l *Lifecycle) Stop() {
	l.timer.Stop()
	l.finish()
}

func (l *Lifecycle) finish() {
	l.doneOnce.Do(func() { close(l.done) })
}
