package openlibrary

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"mediaminder/internal/mediaid"
	"mediaminder/internal/services"
	"mediaminder/internal/upstream"
)

const defaultLimit = 10

// Client provides access to the OpenLibrary search, works and subjects APIs.
type Client struct {
	baseURL string
	limit   int
	api     *upstream.Client
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	limit    int
	upstream []upstream.Option
}

// WithSearchLimit sets the number of docs requested per search.
func WithSearchLimit(limit int) Option {
	return func(o *clientOptions) {
		if limit > 0 {
			o.limit = limit
		}
	}
}

// WithUpstreamOptions forwards options to the guarded HTTP client.
func WithUpstreamOptions(opts ...upstream.Option) Option {
	return func(o *clientOptions) {
		o.upstream = append(o.upstream, opts...)
	}
}

// New creates an OpenLibrary client. The API needs no key.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "openlibrary", "new", "base url required", nil)
	}
	o := clientOptions{limit: defaultLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   o.limit,
		api:     upstream.New("openlibrary", o.upstream...),
	}, nil
}

// Search runs a free-text book search. A blank query returns an empty
// response without calling upstream.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &SearchResponse{Docs: []Doc{}}, nil
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(c.limit))
	return c.search(ctx, "search", params)
}

// SearchPublished lists books first published between fromYear and toYear,
// newest first.
func (c *Client) SearchPublished(ctx context.Context, fromYear, toYear int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("first_publish_year:[%d TO %d]", fromYear, toYear))
	params.Set("sort", "new")
	params.Set("limit", strconv.Itoa(c.limit))
	return c.search(ctx, "search published", params)
}

func (c *Client) search(ctx context.Context, op string, params url.Values) (*SearchResponse, error) {
	var payload SearchResponse
	if err := c.get(ctx, op, "/search.json", params, &payload); err != nil {
		return nil, err
	}
	if payload.Docs == nil {
		payload.Docs = []Doc{}
	}
	return &payload, nil
}

// Work fetches a work by any accepted key shape (OL1W, works/OL1W, /works/OL1W).
func (c *Client) Work(ctx context.Context, key string) (*Work, error) {
	path := mediaid.NormalizeBookKey(key)
	if path == "" {
		return nil, services.Wrap(services.ErrMalformedID, "openlibrary", "work", "empty work key", nil)
	}
	var payload Work
	if err := c.get(ctx, "work", path+".json", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Subject lists works tagged with subject.
func (c *Client) Subject(ctx context.Context, subject string, limit int) (*SubjectResponse, error) {
	slug := SubjectSlug(subject)
	if slug == "" {
		return &SubjectResponse{Works: []SubjectWork{}}, nil
	}
	if limit <= 0 {
		limit = c.limit
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	var payload SubjectResponse
	if err := c.get(ctx, "subject", "/subjects/"+url.PathEscape(slug)+".json", params, &payload); err != nil {
		return nil, err
	}
	if payload.Works == nil {
		payload.Works = []SubjectWork{}
	}
	return &payload, nil
}

// SubjectSlug converts a subject name to the form used in /subjects/ paths.
func SubjectSlug(subject string) string {
	fields := strings.Fields(strings.ToLower(subject))
	return strings.Join(fields, "_")
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	if err := c.api.GetJSON(ctx, op, endpoint, nil, out); err != nil {
		return fmt.Errorf("openlibrary: %w", err)
	}
	return nil
}
