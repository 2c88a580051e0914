package main

import (
	"strings"

	"mediaminder/internal/catalog"
	"mediaminder/internal/media"
	"mediaminder/internal/recommend"
)

// itemView is the flattened form of a catalog item used for tables and JSON.
type itemView struct {
	ID         string     `json:"id"`
	ExternalID string     `json:"externalId"`
	MediaType  media.Type `json:"mediaType"`
	Title      string     `json:"title"`
	Year       int        `json:"year,omitempty"`
	Creators   []string   `json:"creators,omitempty"`
	ImageURL   string     `json:"imageUrl,omitempty"`
	Overview   string     `json:"overview,omitempty"`
	Genres     []string   `json:"genres,omitempty"`
	Subjects   []string   `json:"subjects,omitempty"`
	Status     string     `json:"status,omitempty"`
	Rating     int        `json:"rating,omitempty"`
}

func newItemView(item catalog.Item, images catalog.Images) itemView {
	view := itemView{
		ID:         catalog.CompoundID(item),
		ExternalID: item.ExternalID(),
		MediaType:  item.Kind(),
		Title:      item.DisplayTitle(),
		Year:       item.ReleaseYear(),
		ImageURL:   images.ItemImageURL(item),
	}
	catalog.Match(item,
		func(b catalog.Book) struct{} {
			view.Creators = b.Authors
			view.Overview = b.Description
			view.Subjects = b.Subjects
			return struct{}{}
		},
		func(m catalog.Movie) struct{} {
			view.Overview = m.Overview
			view.Genres = genreNames(m.GenreList())
			return struct{}{}
		},
		func(s catalog.TVShow) struct{} {
			view.Overview = s.Overview
			view.Genres = genreNames(s.GenreList())
			return struct{}{}
		},
	)
	return view
}

func itemViews(items []catalog.Item, images catalog.Images) []itemView {
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, newItemView(item, images))
	}
	return views
}

func genreNames(genres []catalog.Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		if name := strings.TrimSpace(g.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func itemRows(views []itemView) [][]string {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{v.ID, v.MediaType.Label(), v.Title, yearText(v.Year), strings.Join(v.Creators, ", ")})
	}
	return rows
}

func renderItems(views []itemView) string {
	return renderTable(
		[]string{"ID", "Type", "Title", "Year", "By"},
		itemRows(views),
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func trackedRows(items []media.TrackedItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		updated := "-"
		if !item.UpdatedAt.IsZero() {
			updated = item.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			item.ID,
			item.MediaType.Label(),
			item.Title,
			item.Status.DisplayText(item.MediaType),
			stars(item.Rating),
			updated,
		})
	}
	return rows
}

func renderTracked(items []media.TrackedItem) string {
	return renderTable(
		[]string{"ID", "Type", "Title", "Status", "Rating", "Updated"},
		trackedRows(items),
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func renderRecommendations(recs []recommend.Recommendation) string {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []string{
			rec.ID,
			rec.MediaType.Label(),
			rec.Title,
			yearText(rec.Year),
			percentText(rec.Relevance),
		})
	}
	return renderTable(
		[]string{"ID", "Type", "Title", "Year", "Relevance"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}
