package media

import (
	"fmt"
	"strings"
)

// Status is the user's progress with an item. Any status may follow any other.
type Status string

const (
	StatusWantToView Status = "want_to_view"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
	// StatusNone marks an item that was rated before a status was chosen.
	StatusNone Status = "none"
)

var allStatuses = []Status{
	StatusWantToView,
	StatusInProgress,
	StatusFinished,
	StatusNone,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// ParseStatus accepts canonical names and a few hyphen/space variants.
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case "want", "want_to_read", "want_to_watch":
		return StatusWantToView, nil
	case "reading", "watching":
		return StatusInProgress, nil
	case "done", "read", "watched":
		return StatusFinished, nil
	}
	s := Status(normalized)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// DisplayText renders s with the verb that fits the media type.
func (s Status) DisplayText(t Type) string {
	book := t == TypeBook
	switch s {
	case StatusWantToView:
		if book {
			return "Want to read"
		}
		return "Want to watch"
	case StatusInProgress:
		if book {
			return "Currently reading"
		}
		return "Currently watching"
	case StatusFinished:
		if book {
			return "Finished reading"
		}
		return "Finished watching"
	default:
		return strings.ReplaceAll(string(s), "_", " ")
	}
}
