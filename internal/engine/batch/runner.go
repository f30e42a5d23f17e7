// Package batch runs a processor over many items with a concurrency ceiling.
package batch

import (
	"context"
	"fmt"

	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/zerr"
)

// ErrItemPanicked is recorded for an item whose processor panicked.
var ErrItemPanicked = zerr.New("batch item panicked")

// Item is anything the runner can name in progress reports.
type Item interface {
	Name() string
}

// Processor transforms one item.
type Processor[T Item] func(ctx context.Context, item T) error

// Summary counts the settled items of one run.
type Summary struct {
	Attempted int
	Succeeded int
	Failed    int
	// Skipped counts items never admitted because the context was cancelled.
	Skipped int
}

// Progress is reported once per settled item.
type Progress struct {
	Done  int
	Total int
	Name  string
	Err   error
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d: %s", p.Done, p.Total, p.Name)
}

// Option configures a run.
type Option func(*config)

type config struct {
	logger     ports.Logger
	tracer     ports.Tracer
	onProgress func(Progress)
}

// WithLogger logs item failures to l.
func WithLogger(l ports.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithTracer opens one span per item.
func WithTracer(t ports.Tracer) Option {
	return func(c *config) { c.tracer = t }
}

// WithProgress registers a callback invoked after each item settles.
// Calls are serialized and Done is strictly increasing.
func WithProgress(fn func(Progress)) Option {
	return func(c *config) { c.onProgress = fn }
}

type result struct {
	index int
	err   error
}

type session[T Item] struct {
	ctx         context.Context
	items       []T
	concurrency int
	process     Processor[T]
	cfg         config

	results chan result
	summary Summary
	settled int
}

// Run processes items with at most concurrency processors in flight.
// Items are admitted in input order. A failing or panicking item is counted and
// logged; it never stops the others. Cancelling ctx stops admissions, while
// items already started run to completion.
func Run[T Item](ctx context.Context, items []T, concurrency int, process Processor[T], opts ...Option) Summary {
	if len(items) == 0 {
		return Summary{}
	}
	concurrency = max(1, min(concurrency, len(items)))

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &session[T]{
		ctx:         ctx,
		items:       items,
		concurrency: concurrency,
		process:     process,
		cfg:         cfg,
		results:     make(chan result, concurrency),
	}
	return s.run()
}

func (s *session[T]) run() Summary {
	next, active := 0, 0

	for {
		for next < len(s.items) && active < s.concurrency && s.ctx.Err() == nil {
			s.summary.Attempted++
			active++
			go s.execute(next)
			next++
		}

		if active == 0 {
			break
		}

		// Started items always settle; only admission observes ctx.
		res := <-s.results
		active--
		s.handle(res)
	}

	s.summary.Skipped = len(s.items) - next
	return s.summary
}

func (s *session[T]) execute(index int) {
	item := s.items[index]
	ctx := context.WithoutCancel(s.ctx)

	err := func() (err error) {
		if s.cfg.tracer != nil {
			var span ports.Span
			ctx, span = s.cfg.tracer.Start(ctx, item.Name())
			defer func() {
				if err != nil {
					span.RecordError(err)
				}
				span.End()
			}()
		}

		defer func() {
			if r := recover(); r != nil {
				err = zerr.With(ErrItemPanicked, "panic", fmt.Sprint(r))
			}
		}()

		return s.process(ctx, item)
	}()

	s.results <- result{index: index, err: err}
}

func (s *session[T]) handle(res result) {
	item := s.items[res.index]
	s.settled++

	if res.err != nil {
		s.summary.Failed++
		if s.cfg.logger != nil {
			err := zerr.Wrap(res.err, domain.ErrItemTransformFailed.Error())
			s.cfg.logger.Error(zerr.With(err, "item", item.Name()))
		}
	} else {
		s.summary.Succeeded++
	}

	if s.cfg.onProgress != nil {
		s.cfg.onProgress(Progress{
			Done:  s.settled,
			Total: len(s.items),
			Name:  item.Name(),
			Err:   res.err,
		})
	}
}
