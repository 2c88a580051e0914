package testsupport

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// FakeRecord is one row held by FakeBackend.
type FakeRecord struct {
	ID         int
	ExternalID string
	Type       string
	Title      string
	ImageURL   string
	Status     string
	Rating     *int
	UpdatedAt  time.Time
}

// FakeBackend is an in-memory stand-in for the persistence API. It mirrors
// the real server's rules: duplicate adds answer 409 and unknown ids 404.
type FakeBackend struct {
	Server *httptest.Server

	mu         sync.Mutex
	nextID     int
	clock      time.Time
	records    map[int]*FakeRecord
	failures   map[string][]int
	calls      map[string]int
	requestIDs []string
	auth       string
	bareUpdate bool
}

// NewFakeBackend starts a fake backend and registers its shutdown.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		nextID:   1,
		clock:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		records:  make(map[int]*FakeRecord),
		failures: make(map[string][]int),
		calls:    make(map[string]int),
	}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.Server.Close)
	return fb
}

// URL returns the API base URL.
func (fb *FakeBackend) URL() string {
	return fb.Server.URL + "/api"
}

// Seed inserts a record directly and returns its id.
func (fb *FakeBackend) Seed(wireType, externalID, title, status string, rating int) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	rec := &FakeRecord{
		ID:         fb.nextID,
		ExternalID: externalID,
		Type:       wireType,
		Title:      title,
		Status:     status,
		UpdatedAt:  fb.tick(),
	}
	if rating > 0 {
		rec.Rating = &rating
	}
	fb.records[rec.ID] = rec
	fb.nextID++
	return rec.ID
}

// FailNext makes the next call with method answer status instead.
func (fb *FakeBackend) FailNext(method string, status int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures[method] = append(fb.failures[method], status)
}

// OmitPatchItem makes successful PATCH responses carry only the message,
// without the updated record.
func (fb *FakeBackend) OmitPatchItem() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.bareUpdate = true
}

// Calls reports how many requests arrived with method.
func (fb *FakeBackend) Calls(method string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.calls[method]
}

// Records returns a copy of the stored rows ordered by id.
func (fb *FakeBackend) Records() []FakeRecord {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]FakeRecord, 0, len(fb.records))
	for _, rec := range fb.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RequestIDs lists the X-Request-ID values seen so far.
func (fb *FakeBackend) RequestIDs() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.requestIDs...)
}

// Authorization returns the last Authorization header seen.
func (fb *FakeBackend) Authorization() string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.auth
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	fb.calls[r.Method]++
	fb.auth = r.Header.Get("Authorization")
	if rid := r.Header.Get("X-Request-ID"); rid != "" {
		fb.requestIDs = append(fb.requestIDs, rid)
	}
	if queued := fb.failures[r.Method]; len(queued) > 0 {
		fb.failures[r.Method] = queued[1:]
		writeJSON(w, queued[0], map[string]string{"error": "injected failure"})
		return
	}

	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api"), "/")
	switch {
	case path == "/media" && r.Method == http.MethodGet:
		fb.list(w)
	case path == "/media" && r.Method == http.MethodPost:
		fb.create(w, r)
	case strings.HasPrefix(path, "/media/"):
		id, err := strconv.Atoi(strings.TrimPrefix(path, "/media/"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Media item not found"})
			return
		}
		switch r.Method {
		case http.MethodPatch:
			fb.patch(w, r, id)
		case http.MethodDelete:
			fb.remove(w, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (fb *FakeBackend) list(w http.ResponseWriter) {
	ids := make([]int, 0, len(fb.records))
	for id := range fb.records {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, fb.records[id].wire())
	}
	writeJSON(w, http.StatusOK, out)
}

func (fb *FakeBackend) create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		MediaID    json.RawMessage `json:"media_id"`
		Title      string          `json:"title"`
		MediaType  string          `json:"media_type"`
		Status     string          `json:"status"`
		PosterPath string          `json:"poster_path"`
		Rating     *int            `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	externalID := strings.Trim(string(payload.MediaID), `"`)
	if externalID == "" || payload.Title == "" || payload.MediaType == "" || payload.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"})
		return
	}
	for _, rec := range fb.records {
		if rec.ExternalID == externalID && rec.Type == payload.MediaType {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "Media already in your list"})
			return
		}
	}
	rec := &FakeRecord{
		ID:         fb.nextID,
		ExternalID: externalID,
		Type:       payload.MediaType,
		Title:      payload.Title,
		ImageURL:   payload.PosterPath,
		Status:     payload.Status,
		Rating:     payload.Rating,
		UpdatedAt:  fb.tick(),
	}
	fb.records[rec.ID] = rec
	fb.nextID++
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Media added successfully", "item": rec.wire()})
}

func (fb *FakeBackend) patch(w http.ResponseWriter, r *http.Request, id int) {
	rec, ok := fb.records[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Media item not found"})
		return
	}
	var payload struct {
		Status *string `json:"status"`
		Rating *int    `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if payload.Status != nil {
		rec.Status = *payload.Status
	}
	if payload.Rating != nil {
		rating := *payload.Rating
		rec.Rating = &rating
	}
	rec.UpdatedAt = fb.tick()
	if fb.bareUpdate {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Media item updated successfully"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Media item updated successfully", "item": rec.wire()})
}

func (fb *FakeBackend) remove(w http.ResponseWriter, id int) {
	if _, ok := fb.records[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Media item not found"})
		return
	}
	delete(fb.records, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Media item deleted successfully"})
}

func (fb *FakeBackend) tick() time.Time {
	fb.clock = fb.clock.Add(time.Minute)
	return fb.clock
}

func (rec *FakeRecord) wire() map[string]any {
	var image any
	if rec.ImageURL != "" {
		image = rec.ImageURL
	}
	var rating any
	if rec.Rating != nil {
		rating = *rec.Rating
	}
	return map[string]any{
		"id":       rec.ID,
		"media_id": rec.ID,
		"media": map[string]any{
			"id":          rec.ID,
			"external_id": rec.ExternalID,
			"type":        rec.Type,
			"title":       rec.Title,
			"image_url":   image,
		},
		"status":     rec.Status,
		"rating":     rating,
		"review":     nil,
		"updated_at": rec.UpdatedAt.Format("2006-01-02T15:04:05.000000"),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
