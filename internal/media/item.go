package media

import "time"

// MaxRating is the highest star value.
const MaxRating = 5

// TrackedItem is one user's record about one catalog item.
type TrackedItem struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"externalId"`
	MediaType  Type      `json:"mediaType"`
	Title      string    `json:"title"`
	PosterRef  string    `json:"posterPath,omitempty"`
	Rating     int       `json:"rating,omitempty"`
	Status     Status    `json:"status"`
	AddedAt    time.Time `json:"addedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Rated reports whether the item carries a non-zero rating.
func (i TrackedItem) Rated() bool {
	return i.Rating > 0
}

// ValidRating reports whether r is within 0..MaxRating.
func ValidRating(r int) bool {
	return r >= 0 && r <= MaxRating
}

// ToggleRating returns the rating that results from clicking star on an item
// currently rated current. Clicking the current star clears the rating.
func ToggleRating(current, star int) int {
	if star == current {
		return 0
	}
	return star
}
