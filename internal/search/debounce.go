package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"mediaminder/internal/logging"
)

// DefaultDelay is the quiet period after the last keystroke before a search
// starts.
const DefaultDelay = 500 * time.Millisecond

// RunFunc executes one search.
type RunFunc[T any] func(ctx context.Context, query string) (T, error)

// Result is the outcome of one debounced search. Stale is set when a newer
// query was triggered after this one, in which case callers should discard
// it.
type Result[T any] struct {
	Query string
	Value T
	Err   error
	Stale bool
}

// Debouncer delays search initiation until input has been quiet for a fixed
// delay. In-flight searches are not cancelled; their results are flagged as
// stale instead.
type Debouncer[T any] struct {
	delay   time.Duration
	run     RunFunc[T]
	results chan Result[T]
	quit    chan struct{}
	logger  *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	latest  string
	stopped bool
	wg      sync.WaitGroup
}

// NewDebouncer returns a Debouncer that calls run. A non-positive delay uses
// DefaultDelay.
func NewDebouncer[T any](delay time.Duration, run RunFunc[T], logger *slog.Logger) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{
		delay:   delay,
		run:     run,
		results: make(chan Result[T], 8),
		quit:    make(chan struct{}),
		logger:  logging.NewComponentLogger(logger, "search"),
	}
}

// Results delivers completed searches in completion order. It is closed by
// Stop once pending searches finish.
func (d *Debouncer[T]) Results() <-chan Result[T] {
	return d.results
}

// Trigger records query as the latest input and restarts the delay. Blank
// queries only cancel the pending timer.
func (d *Debouncer[T]) Trigger(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.seq++
	d.latest = query
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
	if query == "" {
		return
	}

	seq := d.seq
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.fire(ctx, seq, query)
	})
}

// Latest returns the most recently triggered query.
func (d *Debouncer[T]) Latest() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest
}

// Wait blocks until the pending search, if any, has run and its result has
// been delivered. Call it from the goroutine that calls Trigger.
func (d *Debouncer[T]) Wait() {
	d.wg.Wait()
}

// Stop cancels any pending search, waits for running ones, and closes the
// results channel. A running search whose result cannot be buffered is
// dropped.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.quit)
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
	d.mu.Unlock()

	d.wg.Wait()
	close(d.results)
}

func (d *Debouncer[T]) fire(ctx context.Context, seq uint64, query string) {
	d.mu.Lock()
	if d.stopped || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	logger := logging.WithContext(ctx, d.logger)
	logger.Debug("search started", logging.String("query", query))
	value, err := d.run(ctx, query)

	d.mu.Lock()
	stale := seq != d.seq
	d.mu.Unlock()
	if stale {
		logger.Debug("search superseded", logging.String("query", query))
	}
	select {
	case d.results <- Result[T]{Query: query, Value: value, Err: err, Stale: stale}:
	case <-d.quit:
	}
}
