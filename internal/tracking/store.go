package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"mediaminder/internal/backend"
	"mediaminder/internal/catalog"
	"mediaminder/internal/logging"
	"mediaminder/internal/media"
	"mediaminder/internal/mediaid"
	"mediaminder/internal/services"
)

// Backend is the persistence API the store mediates.
type Backend interface {
	List(ctx context.Context) ([]backend.Record, error)
	Create(ctx context.Context, req backend.CreateRequest) (backend.Record, error)
	Patch(ctx context.Context, id string, req backend.PatchRequest) (backend.Record, error)
	Delete(ctx context.Context, id string) error
}

var _ Backend = (*backend.Client)(nil)

// Store owns the in-memory tracked list for the signed-in user. Mutations go
// to the backend first and only touch local state once the backend accepted
// them. Concurrent mutations of the same item are not serialized.
type Store struct {
	backend Backend
	images  catalog.Images
	logger  *slog.Logger

	mu      sync.RWMutex
	items   []media.TrackedItem
	loaded  bool
	lastErr string
}

// NewStore constructs an empty store. Call Load to populate it.
func NewStore(b Backend, images catalog.Images, logger *slog.Logger) *Store {
	return &Store{
		backend: b,
		images:  images,
		logger:  logging.NewComponentLogger(logger, "tracking"),
		items:   []media.TrackedItem{},
	}
}

// Load fetches the full tracked list. On failure the list is empty and the
// error is also recorded for LastError.
func (s *Store) Load(ctx context.Context) error {
	items, err := s.fetch(ctx)
	if err != nil {
		s.mu.Lock()
		s.items = []media.TrackedItem{}
		s.loaded = false
		s.mu.Unlock()
		return s.fail(ctx, "load", "", "Failed to load your tracked media", err)
	}
	s.mu.Lock()
	s.items = items
	s.loaded = true
	s.lastErr = ""
	s.mu.Unlock()
	s.logger.Debug("tracked list loaded", logging.Int("items", len(items)))
	return nil
}

// Loaded reports whether the last Load succeeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Add tracks a catalog item with status. Adding an item that is already
// tracked updates its status in place.
func (s *Store) Add(ctx context.Context, item catalog.Item, status media.Status) error {
	if !status.Valid() {
		return s.fail(ctx, "add", "", "", services.Wrap(services.ErrValidation, "tracking", "add", fmt.Sprintf("unknown status %q", status), nil))
	}
	if existing, ok := s.Item(item.Kind(), item.ExternalID()); ok {
		return s.UpdateStatus(ctx, existing.ID, status)
	}

	_, err := s.backend.Create(ctx, s.createRequest(item, status, nil))
	if errors.Is(err, services.ErrConflict) {
		s.logger.Info("item already tracked on server; resyncing",
			logging.String(logging.FieldMediaType, string(item.Kind())),
			logging.String(logging.FieldExternalID, item.ExternalID()),
		)
		return s.resyncAndPatch(ctx, item, backend.StatusPatch(status))
	}
	if err != nil {
		return s.fail(ctx, "add", catalog.CompoundID(item), "Failed to add media", err)
	}
	s.refresh(ctx)
	return nil
}

// Rate applies a star rating to a catalog item. Untracked items are added
// with status none first. Clicking the current rating clears it.
func (s *Store) Rate(ctx context.Context, item catalog.Item, star int) error {
	if !media.ValidRating(star) {
		return s.fail(ctx, "rate", "", "", services.Wrap(services.ErrValidation, "tracking", "rate", fmt.Sprintf("rating %d out of range", star), nil))
	}
	if existing, ok := s.Item(item.Kind(), item.ExternalID()); ok {
		return s.UpdateRating(ctx, existing.ID, star)
	}
	rating := star
	_, err := s.backend.Create(ctx, s.createRequest(item, media.StatusNone, &rating))
	if errors.Is(err, services.ErrConflict) {
		return s.resyncAndPatch(ctx, item, backend.RatingPatch(star))
	}
	if err != nil {
		return s.fail(ctx, "rate", catalog.CompoundID(item), "Failed to update rating", err)
	}
	s.refresh(ctx)
	return nil
}

// UpdateStatus sets the status of the item identified by a local or
// compound id.
func (s *Store) UpdateStatus(ctx context.Context, id string, status media.Status) error {
	if !status.Valid() {
		return s.fail(ctx, "update status", id, "", services.Wrap(services.ErrValidation, "tracking", "update status", fmt.Sprintf("unknown status %q", status), nil))
	}
	return s.patch(ctx, "update status", id, "Failed to update status", func(media.TrackedItem) backend.PatchRequest {
		return backend.StatusPatch(status)
	})
}

// UpdateRating applies star to the identified item with toggle semantics:
// repeating the current rating clears it.
func (s *Store) UpdateRating(ctx context.Context, id string, star int) error {
	if !media.ValidRating(star) {
		return s.fail(ctx, "update rating", id, "", services.Wrap(services.ErrValidation, "tracking", "update rating", fmt.Sprintf("rating %d out of range", star), nil))
	}
	return s.patch(ctx, "update rating", id, "Failed to update rating", func(current media.TrackedItem) backend.PatchRequest {
		return backend.RatingPatch(media.ToggleRating(current.Rating, star))
	})
}

// Remove deletes the identified item.
func (s *Store) Remove(ctx context.Context, id string) error {
	target, ok := s.Lookup(id)
	if !ok {
		return s.fail(ctx, "remove", id, "Failed to remove media", notTracked("remove", id))
	}
	if err := s.backend.Delete(ctx, target.ID); err != nil {
		return s.fail(ctx, "remove", id, "Failed to remove media", err)
	}
	s.mu.Lock()
	filtered := make([]media.TrackedItem, 0, len(s.items))
	for _, item := range s.items {
		if item.ID != target.ID {
			filtered = append(filtered, item)
		}
	}
	s.items = filtered
	s.lastErr = ""
	s.mu.Unlock()
	return nil
}

// LastError returns the user-facing message of the most recent failed
// operation, or "" after a success.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) patch(ctx context.Context, op, id, message string, build func(media.TrackedItem) backend.PatchRequest) error {
	target, ok := s.Lookup(id)
	if !ok {
		return s.fail(ctx, op, id, message, notTracked(op, id))
	}
	req := build(target)
	rec, err := s.backend.Patch(ctx, target.ID, req)
	if err != nil {
		return s.fail(ctx, op, id, message, err)
	}
	s.apply(ctx, target, req, rec)
	return nil
}

// apply merges the server's canonical record into the local list. A
// response without a record still means the patch was accepted: the
// requested fields are applied locally and the list is re-read for the
// server timestamp.
func (s *Store) apply(ctx context.Context, target media.TrackedItem, req backend.PatchRequest, rec backend.Record) {
	updated := target
	fresh, echoed := rec.ToItem()
	if echoed {
		updated.Status = fresh.Status
		updated.Rating = fresh.Rating
		if !fresh.UpdatedAt.IsZero() {
			updated.UpdatedAt = fresh.UpdatedAt
		}
	} else {
		if req.Status != nil {
			updated.Status = media.Status(*req.Status)
		}
		if req.Rating != nil {
			updated.Rating = *req.Rating
		}
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == target.ID {
			s.items[i] = updated
			break
		}
	}
	s.lastErr = ""
	s.mu.Unlock()

	if !echoed {
		s.logger.Debug("patch response carried no record; resyncing",
			logging.String(logging.FieldMediaType, string(target.MediaType)),
			logging.String(logging.FieldExternalID, target.ExternalID),
		)
		s.refresh(ctx)
	}
}

func (s *Store) resyncAndPatch(ctx context.Context, item catalog.Item, req backend.PatchRequest) error {
	items, err := s.fetch(ctx)
	if err != nil {
		return s.fail(ctx, "resync", catalog.CompoundID(item), "Failed to add media", err)
	}
	s.replace(items)
	existing, ok := s.Item(item.Kind(), item.ExternalID())
	if !ok {
		return s.fail(ctx, "resync", catalog.CompoundID(item), "Failed to add media",
			services.Wrap(services.ErrConflict, "tracking", "resync", "server reported a duplicate that is not in the list", nil))
	}
	rec, err := s.backend.Patch(ctx, existing.ID, req)
	if err != nil {
		return s.fail(ctx, "resync", catalog.CompoundID(item), "Failed to add media", err)
	}
	s.apply(ctx, existing, req, rec)
	return nil
}

// refresh re-reads the list after a successful create so local state matches
// the server. A failed re-read keeps the previous list.
func (s *Store) refresh(ctx context.Context) {
	items, err := s.fetch(ctx)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "refresh after mutation failed", "tracking_refresh_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'mediaminder track list' to resync"),
			logging.String(logging.FieldImpact, "local list may lag the server until the next load"),
		)
		return
	}
	s.replace(items)
}

func (s *Store) replace(items []media.TrackedItem) {
	s.mu.Lock()
	s.items = items
	s.loaded = true
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *Store) fetch(ctx context.Context) ([]media.TrackedItem, error) {
	records, err := s.backend.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]media.TrackedItem, 0, len(records))
	for _, rec := range records {
		item, ok := rec.ToItem()
		if !ok {
			s.logger.Debug("skipping incomplete backend record", logging.String("record_id", string(rec.ID)))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Store) createRequest(item catalog.Item, status media.Status, rating *int) backend.CreateRequest {
	externalID := item.ExternalID()
	if book, ok := item.(catalog.Book); ok {
		externalID = mediaid.NormalizeBookKey(book.Key)
	}
	req := backend.NewCreateRequest(item.Kind(), externalID, item.DisplayTitle(), item.PosterRef(), s.images.ItemImageURL(item), status)
	req.Rating = rating
	return req
}

// fail records the user-facing message and logs the failure. An empty
// message falls back to services.UserMessage.
func (s *Store) fail(ctx context.Context, op, id, message string, err error) error {
	if message == "" || errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrUnauthorized) {
		message = services.UserMessage(err)
	}
	s.mu.Lock()
	s.lastErr = message
	s.mu.Unlock()

	logger := logging.WithContext(ctx, s.logger)
	logging.WarnWithContext(logger, message, "tracking_"+strings.ReplaceAll(op, " ", "_")+"_failed",
		logging.String(logging.FieldMediaID, id),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.UserMessage(err)),
		logging.String(logging.FieldImpact, "tracked list unchanged"),
	)
	return fmt.Errorf("%s: %w", op, err)
}

func notTracked(op, id string) error {
	return services.Wrap(services.ErrNotFound, "tracking", op, fmt.Sprintf("no tracked item matches %q", id), nil)
}
