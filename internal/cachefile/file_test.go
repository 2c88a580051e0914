package cachefile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mediaminder/internal/cachefile"
	"mediaminder/internal/testsupport"
)

type snapshot struct {
	ComputedAt time.Time `json:"computed_at"`
	Items      []string  `json:"items"`
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "snap.json")
	file := cachefile.New[snapshot](path, nil)
	ctx := context.Background()

	if _, ok, err := file.Load(ctx); err != nil || ok {
		t.Fatalf("expected empty load, got ok=%v err=%v", ok, err)
	}

	want := snapshot{ComputedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), Items: []string{"movie_550"}}
	if err := file.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := cachefile.New[snapshot](path, nil).Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if !got.ComputedAt.Equal(want.ComputedAt) || len(got.Items) != 1 || got.Items[0] != "movie_550" {
		t.Fatalf("unexpected snapshot %+v", got)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}

func TestCorruptFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	testsupport.WriteFile(t, path, []byte("{not json"))

	file := cachefile.New[snapshot](path, nil)
	if _, ok, err := file.Load(context.Background()); err != nil || ok {
		t.Fatalf("expected corrupt file to load empty, got ok=%v err=%v", ok, err)
	}
	if err := file.Save(context.Background(), snapshot{Items: []string{"x"}}); err != nil {
		t.Fatalf("Save over corrupt file: %v", err)
	}
	if _, ok, _ := file.Load(context.Background()); !ok {
		t.Fatalf("expected rewritten file to load")
	}
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	file := cachefile.New[snapshot](path, nil)
	ctx := context.Background()
	if err := file.Remove(ctx); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}
	if err := file.Save(ctx, snapshot{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := file.Remove(ctx); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
}

func TestEmptyPathIsNoop(t *testing.T) {
	file := cachefile.New[snapshot]("", nil)
	ctx := context.Background()
	if err := file.Save(ctx, snapshot{Items: []string{"x"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok, err := file.Load(ctx); ok || err != nil {
		t.Fatalf("expected noop load, got ok=%v err=%v", ok, err)
	}
}
