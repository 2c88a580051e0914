package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"mediaminder/internal/services"
	"mediaminder/internal/upstream"
)

// RequestIDHeader carries the per-command correlation id.
const RequestIDHeader = "X-Request-ID"

// Client talks to the MediaMinder persistence API.
type Client struct {
	baseURL   string
	token     string
	api       *upstream.Client
	validator *payloadValidator
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	upstream []upstream.Option
}

// WithUpstreamOptions forwards options to the guarded HTTP client.
func WithUpstreamOptions(opts ...upstream.Option) Option {
	return func(o *clientOptions) {
		o.upstream = append(o.upstream, opts...)
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return WithUpstreamOptions(upstream.WithLogger(logger))
}

// New constructs a backend client. The token may be empty for unauthenticated
// development servers.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "backend", "new", "base url required", nil)
	}
	o := clientOptions{upstream: []upstream.Option{upstream.WithCorrelationHeader(RequestIDHeader)}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		baseURL:   baseURL,
		token:     strings.TrimSpace(token),
		api:       upstream.New("backend", o.upstream...),
		validator: newPayloadValidator(),
	}, nil
}

// List returns every tracked record for the signed-in user.
func (c *Client) List(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := c.api.DoJSON(ctx, "list media", http.MethodGet, c.baseURL+"/media", c.header(), nil, &records); err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Create tracks a new item. A 409 response surfaces as services.ErrConflict.
func (c *Client) Create(ctx context.Context, req CreateRequest) (Record, error) {
	if err := c.validator.validate("create media", req); err != nil {
		return Record{}, err
	}
	var resp mutationResponse
	if err := c.api.DoJSON(ctx, "create media", http.MethodPost, c.baseURL+"/media", c.header(), req, &resp); err != nil {
		return Record{}, fmt.Errorf("backend: %w", err)
	}
	return resp.Item, nil
}

// Patch updates status and/or rating and returns the server's record.
func (c *Client) Patch(ctx context.Context, id string, req PatchRequest) (Record, error) {
	endpoint, err := c.itemURL("patch media", id)
	if err != nil {
		return Record{}, err
	}
	if req.Status == nil && req.Rating == nil {
		return Record{}, services.Wrap(services.ErrValidation, "backend", "patch media", "empty patch", nil)
	}
	if err := c.validator.validate("patch media", req); err != nil {
		return Record{}, err
	}
	var resp mutationResponse
	if err := c.api.DoJSON(ctx, "patch media", http.MethodPatch, endpoint, c.header(), req, &resp); err != nil {
		return Record{}, fmt.Errorf("backend: %w", err)
	}
	return resp.Item, nil
}

// Delete removes a tracked record.
func (c *Client) Delete(ctx context.Context, id string) error {
	endpoint, err := c.itemURL("delete media", id)
	if err != nil {
		return err
	}
	if err := c.api.DoJSON(ctx, "delete media", http.MethodDelete, endpoint, c.header(), nil, nil); err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	return nil
}

func (c *Client) itemURL(op, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", services.Wrap(services.ErrMalformedID, "backend", op, "record id required", nil)
	}
	return c.baseURL + "/media/" + url.PathEscape(id), nil
}

func (c *Client) header() http.Header {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	return header
}
