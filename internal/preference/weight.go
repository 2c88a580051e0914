package preference

import "mediaminder/internal/media"

const (
	significantRating = 3
	favoriteRating    = 4
	unratedWeight     = 0.5
	weightBoost       = 1.2
)

func statusWeight(s media.Status) float64 {
	switch s {
	case media.StatusFinished:
		return 1.0
	case media.StatusInProgress:
		return 0.7
	default:
		return 0.3
	}
}

// Significant reports whether item should shape the profile: rated 3 or
// higher, or finished.
func Significant(item media.TrackedItem) bool {
	return item.Rating >= significantRating || item.Status == media.StatusFinished
}

// Favorite reports whether item is rated 4 or higher.
func Favorite(item media.TrackedItem) bool {
	return item.Rating >= favoriteRating
}

// Weight is the contribution of item to genre and subject scores, in (0, 1].
func Weight(item media.TrackedItem) float64 {
	rating := unratedWeight
	if item.Rated() {
		rating = float64(item.Rating) / media.MaxRating
	}
	w := rating * statusWeight(item.Status) * weightBoost
	if w > 1 {
		return 1
	}
	return w
}
