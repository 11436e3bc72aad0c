package sonarr

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

// AlternateTitle is one alternate name a series is known by.
type AlternateTitle struct {
	Title          string `json:"title,omitempty"`
	AlternateTitle string `json:"alternateTitle,omitempty"`
}

// Season mirrors the per-season monitoring state Sonarr stores.
type Season struct {
	SeasonNumber int  `json:"seasonNumber"`
	Monitored    bool `json:"monitored"`
}

// Series models the subset of the Sonarr series resource this tool touches.
type Series struct {
	ID                int64            `json:"id,omitempty"`
	Title             string           `json:"title"`
	OriginalTitle     string           `json:"originalTitle,omitempty"`
	AlternateTitles   []AlternateTitle `json:"alternateTitles,omitempty"`
	TitleSlug         string           `json:"titleSlug,omitempty"`
	QualityProfileID  int64            `json:"qualityProfileId,omitempty"`
	LanguageProfileID int64            `json:"languageProfileId,omitempty"`
	TvdbID            int64            `json:"tvdbId,omitempty"`
	ImdbID            string           `json:"imdbId,omitempty"`
	TmdbID            int64            `json:"tmdbId,omitempty"`
	Year              int              `json:"year,omitempty"`
	Monitored         *bool            `json:"monitored,omitempty"`
	SeasonFolder      *bool            `json:"seasonFolder,omitempty"`
	SeriesType        string           `json:"seriesType,omitempty"`
	UseSceneNumbering bool             `json:"useSceneNumbering,omitempty"`
	RootFolderPath    string           `json:"rootFolderPath,omitempty"`
	Path              string           `json:"path,omitempty"`
	Tags              []int64          `json:"tags,omitempty"`
	Seasons           []Season         `json:"seasons,omitempty"`
}

// Titles returns every name the series can be indexed under.
func (s Series) Titles() []string {
	titles := []string{s.Title, s.OriginalTitle}
	for _, alt := range s.AlternateTitles {
		if alt.Title != "" {
			titles = append(titles, alt.Title)
		} else if alt.AlternateTitle != "" {
			titles = append(titles, alt.AlternateTitle)
		}
	}
	return titles
}

// Episode is one episode record with its file association.
type Episode struct {
	ID            int64 `json:"id"`
	SeriesID      int64 `json:"seriesId"`
	SeasonNumber  int   `json:"seasonNumber"`
	EpisodeNumber int   `json:"episodeNumber"`
	HasFile       bool  `json:"hasFile"`
	EpisodeFileID int64 `json:"episodeFileId"`
}

// EpisodeFile is a downloaded file attached to a series.
type EpisodeFile struct {
	ID       int64 `json:"id"`
	SeriesID int64 `json:"seriesId"`
}

// Client provides access to the Sonarr v3 API.
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

// New creates a Sonarr client.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("sonarr base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("sonarr api key required")
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

// AllSeries fetches the full series library.
func (c *Client) AllSeries(ctx context.Context) ([]Series, error) {
	var series []Series
	if err := c.do(ctx, http.MethodGet, "/api/v3/series", nil, &series); err != nil {
		return nil, err
	}
	return series, nil
}

// Lookup searches Sonarr's metadata provider for the given term.
func (c *Client) Lookup(ctx context.Context, term string) ([]Series, error) {
	var series []Series
	endpoint := "/api/v3/series/lookup?term=" + url.QueryEscape(term)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &series); err != nil {
		return nil, err
	}
	return series, nil
}

// Episodes lists a series' episodes with file associations.
func (c *Client) Episodes(ctx context.Context, seriesID int64) ([]Episode, error) {
	var episodes []Episode
	endpoint := fmt.Sprintf("/api/v3/episode?seriesId=%d", seriesID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &episodes); err != nil {
		return nil, err
	}
	return episodes, nil
}

// EpisodeFiles lists the files attached to a series.
func (c *Client) EpisodeFiles(ctx context.Context, seriesID int64) ([]EpisodeFile, error) {
	var files []EpisodeFile
	endpoint := fmt.Sprintf("/api/v3/episodefile?seriesId=%d", seriesID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteEpisodeFile removes one file, leaving episode records in place.
func (c *Client) DeleteEpisodeFile(ctx context.Context, fileID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v3/episodefile/%d", fileID), nil, nil)
}

// Add registers a new series in the library.
func (c *Client) Add(ctx context.Context, payload map[string]any) (*Series, error) {
	var added Series
	if err := c.do(ctx, http.MethodPost, "/api/v3/series", payload, &added); err != nil {
		return nil, err
	}
	return &added, nil
}

// SearchEpisodes triggers an EpisodeSearch command for specific episodes.
func (c *Client) SearchEpisodes(ctx context.Context, episodeIDs []int64) error {
	return c.command(ctx, map[string]any{"name": "EpisodeSearch", "episodeIds": episodeIDs})
}

// SearchSeries triggers a SeriesSearch command for one library series.
func (c *Client) SearchSeries(ctx context.Context, seriesID int64) error {
	return c.command(ctx, map[string]any{"name": "SeriesSearch", "seriesId": seriesID})
}

// SearchNewSeries triggers a SeriesSearch command for freshly added series.
func (c *Client) SearchNewSeries(ctx context.Context, seriesIDs []int64) error {
	return c.command(ctx, map[string]any{"name": "SeriesSearch", "seriesIds": seriesIDs})
}

// SearchByQuery triggers a SeriesSearch command by free-text query.
func (c *Client) SearchByQuery(ctx context.Context, query string) error {
	return c.command(ctx, map[string]any{"name": "SeriesSearch", "searchQuery": query})
}

func (c *Client) command(ctx context.Context, payload map[string]any) error {
	return c.do(ctx, http.MethodPost, "/api/v3/command", payload, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode sonarr payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("build sonarr request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sonarr request %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sonarr %s %s returned %d: %s", method, endpoint, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read sonarr response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode sonarr response: %w", err)
	}
	return nil
}
