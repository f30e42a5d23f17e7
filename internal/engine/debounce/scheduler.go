// Package debounce coalesces repeated per-key triggers into a single delayed action.
package debounce

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	// ErrSuperseded settles a token whose action was replaced by a later Schedule on the same key.
	ErrSuperseded = zerr.New("debounced action superseded")

	// ErrCancelled settles a token whose action was dropped by CancelAll.
	// An action may also return it to give up without being logged as a failure.
	ErrCancelled = zerr.New("debounced action cancelled")

	// ErrActionPanicked settles a token whose action panicked.
	ErrActionPanicked = zerr.New("debounced action panicked")
)

// Token tracks one scheduled action.
type Token struct {
	key  string
	done chan struct{}
	once sync.Once
	err  error
}

func newToken(key string) *Token {
	return &Token{key: key, done: make(chan struct{})}
}

func (t *Token) settle(err error) {
	t.once.Do(func() {
		t.err = err
		close(t.done)
	})
}

// Key returns the key the action was scheduled under.
func (t *Token) Key() string {
	return t.key
}

// Done returns a channel closed once the action ran, failed, or was dropped.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// Err returns the settlement error. It is only meaningful after Done is closed.
func (t *Token) Err() error {
	<-t.done
	return t.err
}

// Wait blocks until the token settles or ctx is done.
func (t *Token) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type pending struct {
	timer *time.Timer
	token *Token
}

// Scheduler owns at most one pending timer per key.
type Scheduler struct {
	logger ports.Logger

	mu      sync.Mutex
	pending map[string]*pending
	closed  bool
}

// NewScheduler creates a scheduler that logs action failures to logger.
func NewScheduler(logger ports.Logger) *Scheduler {
	return &Scheduler{
		logger:  logger,
		pending: make(map[string]*pending),
	}
}

// Schedule runs action after delay unless another Schedule for key arrives first.
// A pending action under the same key is cancelled and its token settles with ErrSuperseded.
func (s *Scheduler) Schedule(key string, delay time.Duration, action func() error) *Token {
	token := newToken(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		token.settle(ErrCancelled)
		return token
	}

	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
		delete(s.pending, key)
		prev.token.settle(ErrSuperseded)
	}

	p := &pending{token: token}
	p.timer = time.AfterFunc(delay, func() { s.fire(key, p, action) })
	s.pending[key] = p

	return token
}

// fire runs action if p is still the live entry for key.
func (s *Scheduler) fire(key string, p *pending, action func() error) {
	s.mu.Lock()
	if s.pending[key] != p {
		// Superseded or cancelled between the timer firing and acquiring the lock.
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	err := run(action)
	if err != nil && !errors.Is(err, ErrCancelled) && s.logger != nil {
		s.logger.Error(zerr.With(err, "key", key))
	}
	p.token.settle(err)
}

func run(action func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = zerr.With(ErrActionPanicked, "panic", fmt.Sprint(r))
		}
	}()
	if action == nil {
		return nil
	}
	return action()
}

// Pending returns the number of keys with a live timer.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// CancelAll stops every pending timer. None of their actions run.
// The scheduler rejects new schedules afterwards.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, p := range s.pending {
		p.timer.Stop()
		p.token.settle(ErrCancelled)
		delete(s.pending, key)
	}
	s.closed = true
}
