package cachefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"

	"mediaminder/internal/logging"
)

const lockRetryDelay = 25 * time.Millisecond

// File is a JSON snapshot on disk shared between processes. Reads take a
// shared lock, writes an exclusive one, and writes replace the file
// atomically.
type File[T any] struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// New returns a File at path. An empty path yields a File whose operations
// are no-ops.
func New[T any](path string, logger *slog.Logger) *File[T] {
	path = strings.TrimSpace(path)
	f := &File[T]{
		path:   path,
		logger: logging.NewComponentLogger(logger, "cachefile"),
	}
	if path != "" {
		f.lock = flock.New(path + ".lock")
	}
	return f
}

// Path returns the snapshot location.
func (f *File[T]) Path() string {
	return f.path
}

// Load reads the snapshot. Missing and corrupt files report false with a nil
// error so callers start empty.
func (f *File[T]) Load(ctx context.Context) (T, bool, error) {
	var zero T
	if f.path == "" {
		return zero, false, nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return zero, false, fmt.Errorf("create cache directory: %w", err)
	}
	locked, err := f.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return zero, false, fmt.Errorf("lock cache file: %w", err)
	}
	if !locked {
		return zero, false, fmt.Errorf("lock cache file: %s busy", f.path)
	}
	defer func() { _ = f.lock.Unlock() }()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("read cache file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return zero, false, nil
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		logging.WarnWithContext(f.logger, "ignoring corrupt cache file", "cachefile_corrupt",
			logging.String("path", f.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the file is rewritten on the next save"),
			logging.String(logging.FieldImpact, "cached results are recomputed"),
		)
		return zero, false, nil
	}
	return value, true, nil
}

// Save replaces the snapshot with value.
func (f *File[T]) Save(ctx context.Context, value T) error {
	if f.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	locked, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock cache file: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock cache file: %s busy", f.path)
	}
	defer func() { _ = f.lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	f.logger.Debug("cache file saved", logging.String("path", f.path), logging.Int("bytes", len(data)))
	return nil
}

// Remove deletes the snapshot. A missing file is not an error.
func (f *File[T]) Remove(ctx context.Context) error {
	if f.path == "" {
		return nil
	}
	locked, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock cache file: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock cache file: %s busy", f.path)
	}
	defer func() { _ = f.lock.Unlock() }()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}
