package openlibrary

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Doc is one search.json result.
type Doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	CoverI           int64    `json:"cover_i"`
	CoverEditionKey  string   `json:"cover_edition_key"`
	EditionKey       []string `json:"edition_key"`
	ISBN             []string `json:"isbn"`
	FirstPublishYear int      `json:"first_publish_year"`
	Subject          []string `json:"subject"`
}

// SearchResponse models the search.json payload.
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Start    int   `json:"start"`
	Docs     []Doc `json:"docs"`
}

// Text holds OpenLibrary prose fields, which arrive either as a plain string
// or as {"type": "/type/text", "value": "..."}.
type Text string

// UnmarshalJSON accepts both shapes.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var typed struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	*t = Text(typed.Value)
	return nil
}

// Work is the /works/{id}.json payload.
type Work struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Description      Text     `json:"description"`
	Subjects         []string `json:"subjects"`
	Covers           []int64  `json:"covers"`
	FirstPublishDate string   `json:"first_publish_date"`
}

// SubjectAuthor is an author entry inside a subject listing.
type SubjectAuthor struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// SubjectWork is one work inside a subject listing.
type SubjectWork struct {
	Key              string          `json:"key"`
	Title            string          `json:"title"`
	CoverID          int64           `json:"cover_id"`
	CoverI           int64           `json:"cover_i"`
	CoverEditionKey  string          `json:"cover_edition_key"`
	FirstPublishYear int             `json:"first_publish_year"`
	Authors          []SubjectAuthor `json:"authors"`
}

// Cover returns whichever numeric cover field the listing populated.
func (w SubjectWork) Cover() int64 {
	if w.CoverID > 0 {
		return w.CoverID
	}
	return w.CoverI
}

// SubjectResponse models the /subjects/{name}.json payload.
type SubjectResponse struct {
	Name      string        `json:"name"`
	WorkCount int           `json:"work_count"`
	Works     []SubjectWork `json:"works"`
}
