package search_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mediaminder/internal/media"
	"mediaminder/internal/search"
	"mediaminder/internal/services"
)

const testDelay = 20 * time.Millisecond

func receive[T any](t *testing.T, ch <-chan search.Result[T]) search.Result[T] {
	t.Helper()
	select {
	case res, ok := <-ch:
		if !ok {
			t.Fatalf("results channel closed")
		}
		return res
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for search result")
	}
	return search.Result[T]{}
}

func TestDebouncerRunsOnlyLastQueryOfBurst(t *testing.T) {
	var mu sync.Mutex
	var ran []string
	d := search.NewDebouncer(testDelay, func(_ context.Context, q string) (int, error) {
		mu.Lock()
		ran = append(ran, q)
		mu.Unlock()
		return len(q), nil
	}, nil)
	defer d.Stop()

	ctx := context.Background()
	for _, q := range []string{"d", "du", "dun", "dune"} {
		d.Trigger(ctx, q)
	}

	res := receive(t, d.Results())
	if res.Query != "dune" || res.Value != 4 || res.Stale || res.Err != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	time.Sleep(3 * testDelay)
	mu.Lock()
	defer mu.Unlock()
	if len(ran) != 1 {
		t.Fatalf("expected one search, ran %v", ran)
	}
}

func TestDebouncerFlagsSupersededResults(t *testing.T) {
	started := make(chan string, 2)
	release := make(chan struct{})
	d := search.NewDebouncer(testDelay, func(_ context.Context, q string) (string, error) {
		started <- q
		if q == "first" {
			<-release
		}
		return "results for " + q, nil
	}, nil)
	defer d.Stop()

	ctx := context.Background()
	d.Trigger(ctx, "first")
	if got := <-started; got != "first" {
		t.Fatalf("unexpected start %q", got)
	}
	d.Trigger(ctx, "second")
	if got := <-started; got != "second" {
		t.Fatalf("unexpected start %q", got)
	}

	res := receive(t, d.Results())
	if res.Query != "second" || res.Stale {
		t.Fatalf("expected fresh second result, got %+v", res)
	}
	close(release)
	res = receive(t, d.Results())
	if res.Query != "first" || !res.Stale {
		t.Fatalf("expected stale first result, got %+v", res)
	}
	if d.Latest() != "second" {
		t.Fatalf("unexpected latest %q", d.Latest())
	}
}

func TestDebouncerBlankQueryCancelsPending(t *testing.T) {
	d := search.NewDebouncer(testDelay, func(context.Context, string) (int, error) {
		return 0, errors.New("should not run")
	}, nil)

	ctx := context.Background()
	d.Trigger(ctx, "alien")
	d.Trigger(ctx, "   ")

	select {
	case res := <-d.Results():
		t.Fatalf("unexpected result %+v", res)
	case <-time.After(4 * testDelay):
	}
	d.Stop()
	if _, ok := <-d.Results(); ok {
		t.Fatalf("expected closed results channel")
	}
}

func TestDebouncerPassesErrors(t *testing.T) {
	d := search.NewDebouncer(testDelay, func(context.Context, string) (int, error) {
		return 0, services.ErrUnavailable
	}, nil)
	defer d.Stop()

	d.Trigger(context.Background(), "heat")
	res := receive(t, d.Results())
	if !errors.Is(res.Err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", res.Err)
	}
}

func TestDebouncerTriggerAfterStopIsIgnored(t *testing.T) {
	d := search.NewDebouncer(0, func(context.Context, string) (int, error) { return 1, nil }, nil)
	d.Stop()
	d.Stop()
	d.Trigger(context.Background(), "late")
	if _, ok := <-d.Results(); ok {
		t.Fatalf("expected no results after stop")
	}
}

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		t     media.Type
		query string
		ok    bool
	}{
		{media.TypeBook, "du", false},
		{media.TypeBook, " dun ", true},
		{media.TypeBook, "日本語", true},
		{media.TypeMovie, "up", true},
		{media.TypeTVShow, "  ", false},
	}
	for _, tc := range tests {
		err := search.ValidateQuery(tc.t, tc.query)
		if tc.ok && err != nil {
			t.Fatalf("%s %q: unexpected error %v", tc.t, tc.query, err)
		}
		if !tc.ok && !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%s %q: expected validation error, got %v", tc.t, tc.query, err)
		}
	}
}
