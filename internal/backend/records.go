package backend

import (
	"bytes"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"mediaminder/internal/media"
)

// FlexString decodes a JSON string or number into its string form. The
// backend returns integer ids while catalog ids arrive as strings.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// MediaRef is the catalog half of a backend record.
type MediaRef struct {
	ID         FlexString `json:"id"`
	ExternalID FlexString `json:"external_id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	ImageURL   *string    `json:"image_url"`
}

// Record is one tracked-media row as the backend returns it.
type Record struct {
	ID        FlexString `json:"id"`
	Media     *MediaRef  `json:"media"`
	Status    string     `json:"status"`
	Rating    *int       `json:"rating"`
	Review    *string    `json:"review"`
	UpdatedAt string     `json:"updated_at"`
}

type mutationResponse struct {
	Message string `json:"message"`
	Item    Record `json:"item"`
}

// ToItem converts a record to a TrackedItem. Records without a catalog
// reference or with an unknown type report false.
func (r Record) ToItem() (media.TrackedItem, bool) {
	if r.Media == nil || strings.TrimSpace(string(r.Media.ExternalID)) == "" {
		return media.TrackedItem{}, false
	}
	t, err := media.TypeFromWire(r.Media.Type)
	if err != nil {
		return media.TrackedItem{}, false
	}
	status, err := media.ParseStatus(r.Status)
	if err != nil {
		status = media.Status(r.Status)
	}
	item := media.TrackedItem{
		ID:         string(r.ID),
		ExternalID: string(r.Media.ExternalID),
		MediaType:  t,
		Title:      r.Media.Title,
		Status:     status,
	}
	if r.Media.ImageURL != nil {
		item.PosterRef = *r.Media.ImageURL
	}
	if r.Rating != nil {
		item.Rating = *r.Rating
	}
	if ts, ok := ParseTimestamp(r.UpdatedAt); ok {
		item.AddedAt = ts
		item.UpdatedAt = ts
	}
	return item, true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp reads ISO-8601 timestamps. Values without a zone are the
// backend's naive UTC timestamps.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// CreateRequest is the POST /media payload.
type CreateRequest struct {
	MediaID    string `json:"media_id" validate:"required"`
	Title      string `json:"title" validate:"required"`
	MediaType  string `json:"media_type" validate:"required,oneof=book movie series"`
	Status     string `json:"status" validate:"required,oneof=want_to_view in_progress finished none"`
	PosterPath string `json:"poster_path,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	Rating     *int   `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
}

// NewCreateRequest builds a create payload using the backend vocabulary.
func NewCreateRequest(t media.Type, externalID, title, posterRef, imageURL string, status media.Status) CreateRequest {
	return CreateRequest{
		MediaID:    strings.TrimSpace(externalID),
		Title:      strings.TrimSpace(title),
		MediaType:  t.Wire(),
		Status:     string(status),
		PosterPath: posterRef,
		ImageURL:   imageURL,
	}
}

// PatchRequest is the PATCH /media/{id} payload. At least one field is set.
type PatchRequest struct {
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=want_to_view in_progress finished none"`
	Rating *int    `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
}

// StatusPatch sets only the status.
func StatusPatch(status media.Status) PatchRequest {
	s := string(status)
	return PatchRequest{Status: &s}
}

// RatingPatch sets only the rating.
func RatingPatch(rating int) PatchRequest {
	return PatchRequest{Rating: &rating}
}
