package radarr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AlternateTitle is one alternate name a movie is known by.
type AlternateTitle struct {
	Title string `json:"title"`
}

// Movie models the subset of the Radarr movie resource this tool touches.
// The same shape is returned by both the library and lookup endpoints.
type Movie struct {
	ID                  int64            `json:"id,omitempty"`
	Title               string           `json:"title"`
	OriginalTitle       string           `json:"originalTitle,omitempty"`
	AlternateTitles     []AlternateTitle `json:"alternateTitles,omitempty"`
	TitleSlug           string           `json:"titleSlug,omitempty"`
	FolderName          string           `json:"folderName,omitempty"`
	QualityProfileID    int64            `json:"qualityProfileId,omitempty"`
	ProfileID           int64            `json:"profileId,omitempty"`
	LanguageProfileID   int64            `json:"languageProfileId,omitempty"`
	TmdbID              int64            `json:"tmdbId,omitempty"`
	ImdbID              string           `json:"imdbId,omitempty"`
	Year                int              `json:"year,omitempty"`
	Monitored           *bool            `json:"monitored,omitempty"`
	MinimumAvailability string           `json:"minimumAvailability,omitempty"`
	RootFolderPath      string           `json:"rootFolderPath,omitempty"`
	Path                string           `json:"path,omitempty"`
	Tags                []int64          `json:"tags,omitempty"`
}

// Titles returns every name the movie can be indexed under.
func (m Movie) Titles() []string {
	titles := []string{m.Title, m.OriginalTitle}
	for _, alt := range m.AlternateTitles {
		titles = append(titles, alt.Title)
	}
	return titles
}

// MovieFile is a downloaded file attached to a library movie.
type MovieFile struct {
	ID      int64 `json:"id"`
	MovieID int64 `json:"movieId"`
}

// Client provides access to the Radarr v3 API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a Radarr client.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("radarr base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("radarr api key required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Movies fetches the full movie library.
func (c *Client) Movies(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	if err := c.do(ctx, http.MethodGet, "/api/v3/movie", nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// Lookup searches Radarr's metadata provider for the given term.
func (c *Client) Lookup(ctx context.Context, term string) ([]Movie, error) {
	var movies []Movie
	endpoint := "/api/v3/movie/lookup?term=" + url.QueryEscape(term)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// MovieFiles lists the files attached to a library movie.
func (c *Client) MovieFiles(ctx context.Context, movieID int64) ([]MovieFile, error) {
	var files []MovieFile
	endpoint := fmt.Sprintf("/api/v3/moviefile?movieId=%d", movieID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteMovieFile removes one file, leaving the movie entry in place.
func (c *Client) DeleteMovieFile(ctx context.Context, fileID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v3/moviefile/%d", fileID), nil, nil)
}

// Add registers a new movie in the library.
func (c *Client) Add(ctx context.Context, payload map[string]any) (*Movie, error) {
	var added Movie
	if err := c.do(ctx, http.MethodPost, "/api/v3/movie", payload, &added); err != nil {
		return nil, err
	}
	return &added, nil
}

// SearchMovies triggers a MoviesSearch command for the given library IDs.
func (c *Client) SearchMovies(ctx context.Context, movieIDs []int64) error {
	return c.command(ctx, map[string]any{"name": "MoviesSearch", "movieIds": movieIDs})
}

// SearchByQuery triggers a MoviesSearch command by free-text query, used
// when an add response carried no usable ID.
func (c *Client) SearchByQuery(ctx context.Context, query string) error {
	return c.command(ctx, map[string]any{"name": "MoviesSearch", "searchQuery": query})
}

func (c *Client) command(ctx context.Context, payload map[string]any) error {
	return c.do(ctx, http.MethodPost, "/api/v3/command", payload, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode radarr payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("build radarr request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("radarr request %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("radarr %s %s returned %d: %s", method, endpoint, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read radarr response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode radarr response: %w", err)
	}
	return nil
}
