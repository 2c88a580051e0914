package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"mediaminder/internal/logging"
	"mediaminder/internal/services"
)

const (
	defaultTimeout          = 15 * time.Second
	defaultTripAfter        = 5
	defaultOpenTimeout      = 30 * time.Second
	defaultHalfOpenRequests = 1
	maxErrorBody            = 512
)

// Client performs guarded HTTP calls against one upstream service: requests
// wait on a rate limiter and run inside a circuit breaker. Only unavailability
// (network errors, 429, 5xx) counts against the breaker.
type Client struct {
	name          string
	http          *http.Client
	limiter       *rate.Limiter
	breaker       *gobreaker.CircuitBreaker[[]byte]
	logger        *slog.Logger
	correlationID string
	tripAfter     uint32
	openTimeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRateLimit allows rps requests per second with a burst of the same size.
// Non-positive values disable limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBreaker opens the circuit after tripAfter consecutive failures and keeps
// it open for openTimeout before probing again.
func WithBreaker(tripAfter uint32, openTimeout time.Duration) Option {
	return func(c *Client) {
		if tripAfter > 0 {
			c.tripAfter = tripAfter
		}
		if openTimeout > 0 {
			c.openTimeout = openTimeout
		}
	}
}

// WithLogger sets the logger used for latency and breaker transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCorrelationHeader forwards the request id found in the context under
// the given header name.
func WithCorrelationHeader(name string) Option {
	return func(c *Client) {
		c.correlationID = strings.TrimSpace(name)
	}
}

// New constructs a guarded client for the named service.
func New(name string, opts ...Option) *Client {
	c := &Client{
		name:        name,
		http:        &http.Client{Timeout: defaultTimeout},
		tripAfter:   defaultTripAfter,
		openTimeout: defaultOpenTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, name).With(logging.String(logging.FieldService, name))
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: defaultHalfOpenRequests,
		Timeout:     c.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.tripAfter
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, services.ErrUnavailable) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logging.WarnWithContext(c.logger, "circuit opened", "circuit_open",
					logging.String("from", from.String()),
					logging.String(logging.FieldErrorHint, "upstream is failing; requests are short-circuited until it recovers"),
					logging.String(logging.FieldImpact, "catalog results will be empty"),
				)
				return
			}
			c.logger.Info("circuit state change", logging.String("from", from.String()), logging.String("to", to.String()))
		},
	})
	return c
}

// Name returns the service name used in errors and logs.
func (c *Client) Name() string {
	return c.name
}

// GetJSON issues a GET and decodes a 2xx JSON body into out.
func (c *Client) GetJSON(ctx context.Context, op, endpoint string, header http.Header, out any) error {
	return c.DoJSON(ctx, op, http.MethodGet, endpoint, header, nil, out)
}

// DoJSON sends payload (when non-nil) as a JSON body and decodes the 2xx
// response into out (when non-nil).
func (c *Client) DoJSON(ctx context.Context, op, method, endpoint string, header http.Header, payload, out any) error {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return &Error{Service: c.name, Op: op, Kind: services.ErrValidation, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = encoded
		if header == nil {
			header = http.Header{}
		}
		header.Set("Content-Type", "application/json")
	}
	data, err := c.Do(ctx, op, method, endpoint, header, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Service: c.name, Op: op, Kind: services.ErrUnavailable, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Do runs one guarded request and returns the raw 2xx body.
func (c *Client) Do(ctx context.Context, op, method, endpoint string, header http.Header, body []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Service: c.name, Op: op, Kind: services.ErrUnavailable, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, op, method, endpoint, header, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &Error{Service: c.name, Op: op, Kind: services.ErrUnavailable, Err: err}
		}
		return nil, err
	}
	return data, nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, endpoint string, header http.Header, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &Error{Service: c.name, Op: op, Kind: services.ErrValidation, Err: fmt.Errorf("build request: %w", err)}
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json")
	if c.correlationID != "" {
		if rid, ok := services.RequestIDFromContext(ctx); ok {
			req.Header.Set(c.correlationID, rid)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, &Error{Service: c.name, Op: op, Kind: services.ErrUnavailable, Err: fmt.Errorf("execute request (latency=%v): %w", latency, err)}
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream call",
		logging.String("op", op),
		logging.String("method", method),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var detail error
		if text := strings.TrimSpace(string(snippet)); text != "" {
			detail = errors.New(text)
		}
		return nil, &Error{Service: c.name, Op: op, Status: resp.StatusCode, Kind: classifyStatus(resp.StatusCode), Err: detail}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Service: c.name, Op: op, Status: resp.StatusCode, Kind: services.ErrUnavailable, Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}
