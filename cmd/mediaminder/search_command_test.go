package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"mediaminder/internal/services"
)

func TestSearchMoviesJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "search", "movies", "fight", "club"}, env.configPath)
	if err != nil {
		t.Fatalf("search movies: %v", err)
	}

	var payload searchOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode search output: %v\n%s", err, out)
	}
	if payload.Query != "fight club" {
		t.Fatalf("expected joined query, got %q", payload.Query)
	}
	if payload.TotalCount != 1 || len(payload.Results) != 1 {
		t.Fatalf("unexpected results %+v", payload)
	}
	got := payload.Results[0]
	if got.ID != "movie_550" || got.Title != "Fight Club" || got.Year != 1999 {
		t.Fatalf("unexpected item %+v", got)
	}
	if !strings.HasSuffix(got.ImageURL, "/fc.jpg") {
		t.Fatalf("expected poster url, got %q", got.ImageURL)
	}
}

func TestSearchBooksTable(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"search", "books", "hail mary"}, env.configPath)
	if err != nil {
		t.Fatalf("search books: %v", err)
	}
	requireContains(t, out, "Project Hail Mary")
	requireContains(t, out, "Andy Weir")
	requireContains(t, out, `1 of 1 results for "hail mary"`)
}

func TestSearchNoResults(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"search", "movies", "nothing"}, env.configPath)
	if err != nil {
		t.Fatalf("search movies: %v", err)
	}
	requireContains(t, out, `No movies found for "nothing"`)
}

func TestSearchBooksRejectsShortQuery(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"search", "books", "ab"}, env.configPath)
	if err == nil {
		t.Fatal("expected short book query to fail")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if seen := env.catalog.seen(); len(seen) != 0 {
		t.Fatalf("expected no catalog queries, got %v", seen)
	}
}

func TestInteractiveSearchRunsLastQuery(t *testing.T) {
	env := setupCLITestEnv(t)

	input := strings.NewReader("f\nfi\nfight\n")
	out, _, err := runCLIWithInput(t, []string{"search", "movies", "--interactive"}, env.configPath, input)
	if err != nil {
		t.Fatalf("interactive search: %v", err)
	}
	requireContains(t, out, "Fight Club")

	seen := env.catalog.seen()
	if len(seen) != 1 || seen[0] != "fight" {
		t.Fatalf("expected only the final query to reach the catalog, got %v", seen)
	}
}
