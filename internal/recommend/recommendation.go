package recommend

import (
	"mediaminder/internal/catalog"
	"mediaminder/internal/media"
	"mediaminder/internal/mediaid"
)

// bookRelevance is the fixed relevance given to book suggestions, which carry
// no vote average.
const bookRelevance = 0.7

// Recommendation is one suggested catalog item with its display image
// already resolved.
type Recommendation struct {
	ID         string     `json:"id"`
	ExternalID string     `json:"externalId"`
	MediaType  media.Type `json:"mediaType"`
	Title      string     `json:"title"`
	PosterRef  string     `json:"posterPath,omitempty"`
	ImageURL   string     `json:"imageUrl,omitempty"`
	Relevance  float64    `json:"relevance"`
	Year       int        `json:"year,omitempty"`
}

func fromItem(item catalog.Item, images catalog.Images) Recommendation {
	return Recommendation{
		ID:         catalog.CompoundID(item),
		ExternalID: item.ExternalID(),
		MediaType:  item.Kind(),
		Title:      item.DisplayTitle(),
		PosterRef:  item.PosterRef(),
		ImageURL:   images.ItemImageURL(item),
		Relevance:  relevance(item),
		Year:       item.ReleaseYear(),
	}
}

func relevance(item catalog.Item) float64 {
	return catalog.Match(item,
		func(catalog.Book) float64 { return bookRelevance },
		func(m catalog.Movie) float64 { return m.VoteAverage / 10 },
		func(s catalog.TVShow) float64 { return s.VoteAverage / 10 },
	)
}

type curated struct {
	t         media.Type
	id        string
	title     string
	poster    string
	relevance float64
	year      int
}

var curatedDefaults = []curated{
	{media.TypeMovie, "550", "Fight Club", "/pB8BM7pdSp6B6Ih7QZ4DrQ3PmJK.jpg", 0.95, 1999},
	{media.TypeBook, "OL82586W", "Project Hail Mary", "12522399", 0.9, 2021},
	{media.TypeTVShow, "1399", "Game of Thrones", "/z9gCSwIObDOD2BEtmUwfasar3xs.jpg", 0.89, 2011},
	{media.TypeBook, "OL27464W", "The Hobbit", "10480949", 0.85, 1937},
	{media.TypeMovie, "680", "Pulp Fiction", "/d5iIlFn5s0ImszYzBPb8JPIfbXD.jpg", 0.84, 1994},
	{media.TypeTVShow, "66732", "Stranger Things", "/49WJfeN0moxb9IPfGn8AIqMGskD.jpg", 0.83, 2016},
	{media.TypeTVShow, "1396", "Breaking Bad", "/ggFHVNu6YYI5L9pCfOacjizRGt.jpg", 0.82, 2008},
	{media.TypeMovie, "299534", "Avengers: Endgame", "/or06FN3Dka5tukK1e9sl16pB3iy.jpg", 0.81, 2019},
}

// Defaults returns the curated list shown when there is too little signal to
// personalize. Each call returns a fresh slice.
func Defaults(images catalog.Images) []Recommendation {
	out := make([]Recommendation, 0, len(curatedDefaults))
	for _, c := range curatedDefaults {
		out = append(out, Recommendation{
			ID:         mediaid.Join(c.t, c.id),
			ExternalID: c.id,
			MediaType:  c.t,
			Title:      c.title,
			PosterRef:  c.poster,
			ImageURL:   images.PosterURL(c.t, c.poster),
			Relevance:  c.relevance,
			Year:       c.year,
		})
	}
	return out
}
