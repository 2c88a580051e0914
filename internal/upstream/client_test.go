package upstream_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"mediaminder/internal/services"
	"mediaminder/internal/upstream"
)

func TestGetJSONDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Fatalf("expected json accept header, got %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Fight Club","id":550}`))
	}))
	defer srv.Close()

	client := upstream.New("tmdb")
	var out struct {
		Name string `json:"name"`
		ID   int64  `json:"id"`
	}
	if err := client.GetJSON(context.Background(), "movie details", srv.URL, nil, &out); err != nil {
		t.Fatalf("GetJSON returned error: %v", err)
	}
	if out.Name != "Fight Club" || out.ID != 550 {
		t.Fatalf("unexpected decode result %+v", out)
	}
}

func TestStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		marker error
	}{
		{http.StatusNotFound, services.ErrNotFound},
		{http.StatusUnauthorized, services.ErrUnauthorized},
		{http.StatusConflict, services.ErrConflict},
		{http.StatusBadRequest, services.ErrValidation},
		{http.StatusInternalServerError, services.ErrUnavailable},
		{http.StatusTooManyRequests, services.ErrUnavailable},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		}))
		client := upstream.New("backend")
		err := client.GetJSON(context.Background(), "list", srv.URL, nil, nil)
		srv.Close()

		if !errors.Is(err, tc.marker) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.marker, err)
		}
		var upErr *upstream.Error
		if !errors.As(err, &upErr) || upErr.Status != tc.status || upErr.Service != "backend" {
			t.Fatalf("status %d: expected *upstream.Error with status, got %#v", tc.status, err)
		}
	}
}

func TestDecodeFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := upstream.New("openlibrary").GetJSON(context.Background(), "search", srv.URL, nil, &out)
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := upstream.New("tmdb", upstream.WithBreaker(2, time.Minute))
	for i := 0; i < 2; i++ {
		if err := client.GetJSON(context.Background(), "search", srv.URL, nil, nil); !errors.Is(err, services.ErrUnavailable) {
			t.Fatalf("call %d: expected unavailable, got %v", i, err)
		}
	}
	err := client.GetJSON(context.Background(), "search", srv.URL, nil, nil)
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected open circuit to surface as unavailable, got %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected open circuit to skip the request, server saw %d hits", got)
	}
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := upstream.New("openlibrary", upstream.WithBreaker(1, time.Minute))
	for i := 0; i < 3; i++ {
		if err := client.GetJSON(context.Background(), "work", srv.URL, nil, nil); !errors.Is(err, services.ErrNotFound) {
			t.Fatalf("call %d: expected not found, got %v", i, err)
		}
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("expected every call to reach the server, got %d", got)
	}
}

func TestDoJSONSendsBodyAndCorrelationID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-Request-ID"); got != "req-1" {
			t.Fatalf("expected correlation header, got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("unexpected content type %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"title":"Dune"}` {
			t.Fatalf("unexpected body %s", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := upstream.New("backend", upstream.WithCorrelationHeader("X-Request-ID"))
	ctx := services.WithRequestID(context.Background(), "req-1")
	var out struct {
		OK bool `json:"ok"`
	}
	payload := struct {
		Title string `json:"title"`
	}{Title: "Dune"}
	if err := client.DoJSON(ctx, "create", http.MethodPost, srv.URL, nil, payload, &out); err != nil {
		t.Fatalf("DoJSON returned error: %v", err)
	}
	if !out.OK {
		t.Fatal("expected decoded response")
	}
}

func TestRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := upstream.New("openlibrary", upstream.WithRateLimit(0.001))
	if err := client.GetJSON(context.Background(), "search", srv.URL, nil, nil); err != nil {
		t.Fatalf("first call should use the burst token: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := client.GetJSON(ctx, "search", srv.URL, nil, nil)
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected rate limit wait to fail as unavailable, got %v", err)
	}
}
