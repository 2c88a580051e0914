package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediaminder/internal/catalog/tmdb"
	"mediaminder/internal/services"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en-US"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error when api key missing, got %v", err)
	}
}

func TestSearchMovieSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_key") != "key" || q.Get("include_adult") != "false" || q.Get("language") != "en-US" {
			t.Fatalf("unexpected query parameters %q", r.URL.RawQuery)
		}
		if q.Get("query") != "Fight Club" {
			t.Fatalf("unexpected query %q", q.Get("query"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"total_results":1,"results":[{"id":550,"title":"Fight Club","release_date":"1999-10-15","poster_path":"/p.jpg","vote_average":8.4}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	resp, err := client.SearchMovie(context.Background(), " Fight Club ")
	if err != nil {
		t.Fatalf("SearchMovie returned error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].DisplayTitle() != "Fight Club" || resp.Results[0].Year() != 1999 {
		t.Fatalf("unexpected response: %#v", resp)
	}
}

func TestSearchTVUsesName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/tv" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"results":[{"id":1399,"name":"Game of Thrones","first_air_date":"2011-04-17"}]}`))
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "")
	resp, err := client.SearchTV(context.Background(), "thrones")
	if err != nil {
		t.Fatalf("SearchTV returned error: %v", err)
	}
	if resp.Results[0].DisplayTitle() != "Game of Thrones" || resp.Results[0].Year() != 2011 {
		t.Fatalf("unexpected result %#v", resp.Results[0])
	}
}

func TestSearchMovieHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status_code":500}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := client.SearchMovie(context.Background(), "fail"); !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable error when TMDB returns 500, got %v", err)
	}
}

func TestSearchMovieEmptyQuery(t *testing.T) {
	client, err := tmdb.New("key", "https://example.com", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.SearchMovie(context.Background(), "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty query, got %v", err)
	}
}

func TestMovieDetailsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "")
	if _, err := client.MovieDetails(context.Background(), 1); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMovieDetailsGenres(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":550,"title":"Fight Club","genres":[{"id":18,"name":"Drama"}]}`))
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "")
	details, err := client.MovieDetails(context.Background(), 550)
	if err != nil {
		t.Fatalf("MovieDetails returned error: %v", err)
	}
	if len(details.Genres) != 1 || details.Genres[0].ID != 18 {
		t.Fatalf("unexpected genres %#v", details.Genres)
	}
}

func TestDiscoverTVBuildsFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discover/tv" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("sort_by") != "popularity.desc" || q.Get("with_genres") != "18" {
			t.Fatalf("unexpected discover query %q", r.URL.RawQuery)
		}
		if q.Get("first_air_date.gte") != "2026-07-18" || q.Get("first_air_date.lte") != "2026-10-18" {
			t.Fatalf("unexpected date window %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "")
	to := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	_, err := client.DiscoverTV(context.Background(), tmdb.DiscoverOptions{GenreID: 18, From: to.AddDate(0, -3, 0), To: to})
	if err != nil {
		t.Fatalf("DiscoverTV returned error: %v", err)
	}
}

func TestRecommendationsPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550/recommendations" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"results":[{"id":680,"title":"Pulp Fiction"}]}`))
	}))
	t.Cleanup(server.Close)

	client, _ := tmdb.New("key", server.URL, "")
	resp, err := client.MovieRecommendations(context.Background(), 550)
	if err != nil || len(resp.Results) != 1 {
		t.Fatalf("unexpected recommendations %#v err=%v", resp, err)
	}
}
