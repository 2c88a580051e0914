package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mediaminder/internal/services"
	"mediaminder/internal/upstream"
)

const dateLayout = "2006-01-02"

// Result represents a single TMDB list entry (search, recommendations, discover).
type Result struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   string  `json:"poster_path"`
	GenreIDs     []int64 `json:"genre_ids"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
}

// DisplayTitle returns the movie title or the show name.
func (r Result) DisplayTitle() string {
	if strings.TrimSpace(r.Title) != "" {
		return r.Title
	}
	return r.Name
}

// Year returns the release (or first air) year, or 0 when unknown.
func (r Result) Year() int {
	if r.ReleaseDate != "" {
		return yearOf(r.ReleaseDate)
	}
	return yearOf(r.FirstAirDate)
}

// Response models the TMDB paginated list response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Genre is a TMDB genre entry.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Details captures the movie or TV detail payload fields MediaMinder uses.
type Details struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Name            string  `json:"name"`
	Overview        string  `json:"overview"`
	Tagline         string  `json:"tagline"`
	ReleaseDate     string  `json:"release_date"`
	FirstAirDate    string  `json:"first_air_date"`
	PosterPath      string  `json:"poster_path"`
	Genres          []Genre `json:"genres"`
	VoteAverage     float64 `json:"vote_average"`
	Runtime         int     `json:"runtime"`
	NumberOfSeasons int     `json:"number_of_seasons"`
	Status          string  `json:"status"`
}

// DisplayTitle returns the movie title or the show name.
func (d Details) DisplayTitle() string {
	if strings.TrimSpace(d.Title) != "" {
		return d.Title
	}
	return d.Name
}

// Year returns the release (or first air) year, or 0 when unknown.
func (d Details) Year() int {
	if d.ReleaseDate != "" {
		return yearOf(d.ReleaseDate)
	}
	return yearOf(d.FirstAirDate)
}

// DiscoverOptions filters a discover query.
type DiscoverOptions struct {
	GenreID int64
	From    time.Time
	To      time.Time
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	api      *upstream.Client
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	upstream []upstream.Option
}

// WithUpstreamOptions forwards options to the guarded HTTP client (HTTP
// client, rate limit, breaker, logger).
func WithUpstreamOptions(opts ...upstream.Option) Option {
	return func(o *clientOptions) {
		o.upstream = append(o.upstream, opts...)
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new", "base url required", nil)
	}
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: strings.TrimSpace(language),
		api:      upstream.New("tmdb", o.upstream...),
	}, nil
}

// SearchMovie searches TMDB movies for the supplied title.
func (c *Client) SearchMovie(ctx context.Context, query string) (*Response, error) {
	return c.search(ctx, "search movies", "/search/movie", query)
}

// SearchTV searches TMDB TV shows for the supplied title.
func (c *Client) SearchTV(ctx context.Context, query string) (*Response, error) {
	return c.search(ctx, "search tv", "/search/tv", query)
}

func (c *Client) search(ctx context.Context, op, path, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "tmdb", op, "query must not be empty", nil)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("page", "1")
	var payload Response
	if err := c.get(ctx, op, path, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieDetails fetches a movie by TMDB id.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*Details, error) {
	var payload Details
	if err := c.get(ctx, "movie details", "/movie/"+strconv.FormatInt(id, 10), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// TVDetails fetches a TV show by TMDB id.
func (c *Client) TVDetails(ctx context.Context, id int64) (*Details, error) {
	var payload Details
	if err := c.get(ctx, "tv details", "/tv/"+strconv.FormatInt(id, 10), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieRecommendations lists movies TMDB recommends for the given movie.
func (c *Client) MovieRecommendations(ctx context.Context, id int64) (*Response, error) {
	var payload Response
	if err := c.get(ctx, "movie recommendations", "/movie/"+strconv.FormatInt(id, 10)+"/recommendations", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// TVRecommendations lists shows TMDB recommends for the given show.
func (c *Client) TVRecommendations(ctx context.Context, id int64) (*Response, error) {
	var payload Response
	if err := c.get(ctx, "tv recommendations", "/tv/"+strconv.FormatInt(id, 10)+"/recommendations", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DiscoverMovies lists popular movies matching opts.
func (c *Client) DiscoverMovies(ctx context.Context, opts DiscoverOptions) (*Response, error) {
	return c.discover(ctx, "discover movies", "/discover/movie", "primary_release_date", opts)
}

// DiscoverTV lists popular shows matching opts.
func (c *Client) DiscoverTV(ctx context.Context, opts DiscoverOptions) (*Response, error) {
	return c.discover(ctx, "discover tv", "/discover/tv", "first_air_date", opts)
}

func (c *Client) discover(ctx context.Context, op, path, dateField string, opts DiscoverOptions) (*Response, error) {
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	params.Set("include_adult", "false")
	params.Set("page", "1")
	if opts.GenreID > 0 {
		params.Set("with_genres", strconv.FormatInt(opts.GenreID, 10))
	}
	if !opts.From.IsZero() {
		params.Set(dateField+".gte", opts.From.Format(dateLayout))
	}
	if !opts.To.IsZero() {
		params.Set(dateField+".lte", opts.To.Format(dateLayout))
	}
	var payload Response
	if err := c.get(ctx, op, path, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "tmdb", op, "parse tmdb url", err)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()
	if err := c.api.GetJSON(ctx, op, endpoint.String(), nil, out); err != nil {
		return fmt.Errorf("tmdb: %w", err)
	}
	return nil
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
