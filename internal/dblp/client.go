package dblp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"confwatch/internal/logging"
)

const (
	// DefaultBaseURL is the public publication search endpoint.
	DefaultBaseURL = "https://dblp.org/search/publ/api"
	// DefaultPace is the delay observed after every search request.
	DefaultPace = 1500 * time.Millisecond

	untitled = "No Title"
)

// Paper is a single publication returned by the index.
type Paper struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type searchResponse struct {
	Result struct {
		Status struct {
			Code string `json:"@code"`
			Text string `json:"text"`
		} `json:"status"`
		Hits struct {
			Total string  `json:"@total"`
			Hit   hitList `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

type hit struct {
	Info hitInfo `json:"info"`
}

// hitList decodes "hit" as either an array or, for a single result, a bare object.
type hitList []hit

// UnmarshalJSON implements json.Unmarshaler for hitList.
func (l *hitList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*l = nil
		return nil
	case trimmed[0] == '{':
		var single hit
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		*l = hitList{single}
		return nil
	default:
		var many []hit
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*l = many
		return nil
	}
}

type hitInfo struct {
	Title string          `json:"title"`
	EE    json.RawMessage `json:"ee"`
	URL   string          `json:"url"`
}

// link prefers the first electronic-edition link, then a scalar electronic
// edition, then the index page URL.
func (i hitInfo) link() string {
	raw := strings.TrimSpace(string(i.EE))
	if raw != "" && raw != "null" {
		var list []string
		if err := json.Unmarshal(i.EE, &list); err == nil {
			if len(list) > 0 {
				return list[0]
			}
			return i.URL
		}
		var single string
		if err := json.Unmarshal(i.EE, &single); err == nil {
			return single
		}
	}
	return i.URL
}

// Client queries the bibliographic search API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	pace       time.Duration
	sleeper    func(context.Context, time.Duration) error
	logger     *slog.Logger
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

// WithPace sets the delay observed after every search.
func WithPace(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.pace = d
		}
	}
}

// WithSleeper overrides the pacing sleep, primarily for tests.
func WithSleeper(fn func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleeper = fn
		}
	}
}

// WithLogger attaches a logger used for best-effort fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "dblp")
	}
}

// New creates a search client with a bounded request timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		pace:       DefaultPace,
		sleeper:    sleepWithContext,
		logger:     logging.NewComponentLogger(nil, "dblp"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Search returns up to limit papers published at venue in year.
func (c *Client) Search(ctx context.Context, venue string, year, limit int) ([]Paper, error) {
	venue = strings.TrimSpace(venue)
	if venue == "" {
		return nil, errors.New("venue must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse dblp url: %w", err)
	}
	params := url.Values{}
	params.Set("q", fmt.Sprintf("venue:%s year:%d", venue, year))
	if limit > 0 {
		params.Set("h", strconv.Itoa(limit))
	}
	params.Set("format", "json")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dblp search returned %d (latency=%v): %s", resp.StatusCode, latency, strings.TrimSpace(string(snippet)))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode dblp response: %w", err)
	}

	papers := make([]Paper, 0, len(payload.Result.Hits.Hit))
	for _, h := range payload.Result.Hits.Hit {
		title := strings.TrimSpace(h.Info.Title)
		if title == "" {
			title = untitled
		}
		papers = append(papers, Paper{Title: title, Link: h.Info.link()})
	}
	c.logger.Debug("dblp search complete",
		logging.String(logging.FieldVenue, venue),
		logging.Int(logging.FieldYear, year),
		logging.String("status", payload.Result.Status.Text),
		logging.Int("hits", len(papers)),
		logging.Duration("latency", latency),
	)
	return papers, nil
}

// FetchPapers is the best-effort form of Search: any failure is logged and
// yields an empty list. The pacing delay follows every call.
func (c *Client) FetchPapers(ctx context.Context, venue string, year, limit int) []Paper {
	papers, err := c.Search(ctx, venue, year, limit)
	if err != nil {
		logging.WarnWithContext(c.logger, "dblp fetch failed", "dblp_fetch_failed",
			logging.String(logging.FieldVenue, venue),
			logging.Int(logging.FieldYear, year),
			logging.Error(err),
			logging.String(logging.FieldImpact, "year is left unanalyzed and retried on a later run"),
			logging.String(logging.FieldErrorHint, "check network access to dblp.org"),
		)
		papers = nil
	} else if len(papers) == 0 {
		c.logger.Info("dblp returned no papers",
			logging.String(logging.FieldVenue, venue),
			logging.Int(logging.FieldYear, year),
		)
	}
	if c.pace > 0 {
		_ = c.sleeper(ctx, c.pace)
	}
	return papers
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
