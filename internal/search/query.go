package search

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"mediaminder/internal/media"
	"mediaminder/internal/services"
)

// MinBookQueryLength is the shortest book query worth sending; the book
// catalog returns noise for one or two characters.
const MinBookQueryLength = 3

// ValidateQuery checks that query may be sent to the catalog for t.
func ValidateQuery(t media.Type, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return services.Wrap(services.ErrValidation, "search", "validate", "search query is empty", nil)
	}
	if t == media.TypeBook && utf8.RuneCountInString(query) < MinBookQueryLength {
		return services.Wrap(services.ErrValidation, "search", "validate",
			fmt.Sprintf("book searches need at least %d characters", MinBookQueryLength), nil)
	}
	return nil
}
