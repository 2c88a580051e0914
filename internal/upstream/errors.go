package upstream

import (
	"fmt"
	"net/http"

	"mediaminder/internal/services"
)

// Error wraps an upstream failure with the service and operation that produced
// it. It unwraps to one of the services markers so callers can use errors.Is.
type Error struct {
	Service string // tmdb, openlibrary, backend
	Op      string // search movies, work details, create media
	Status  int    // HTTP status, 0 when no response was received
	Kind    error  // services marker
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s %s: status %d: %v", e.Service, e.Op, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: status %d: %v", e.Service, e.Op, e.Status, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// classifyStatus maps a non-2xx HTTP status to a services marker.
func classifyStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return services.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return services.ErrUnauthorized
	case http.StatusConflict:
		return services.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return services.ErrValidation
	default:
		return services.ErrUnavailable
	}
}
