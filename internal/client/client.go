package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"video-grid/internal/catalog"
	"video-grid/internal/logging"
	"video-grid/internal/settings"
)

// DefaultTimeout bounds a whole request, including reading the body.
const DefaultTimeout = 30 * time.Second

// StatusError is returned when the server answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Suggestion is a fuzzy name match offered when a search finds nothing.
type Suggestion struct {
	catalog.Entry
	Similarity float32 `json:"similarity"`
}

var defaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 30 * time.Second,
	MaxIdleConns:          10,
	IdleConnTimeout:       90 * time.Second,
}

// Client is an HTTP client for one server.
type Client struct {
	*http.Client
	base *url.URL
}

// New creates a client for the server at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string) (*Client, error) {
	return NewWithHTTPClient(baseURL, &http.Client{
		Transport: defaultTransport,
		Timeout:   DefaultTimeout,
	})
}

// NewWithHTTPClient creates a client that sends requests through hc.
func NewWithHTTPClient(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse server url: unsupported scheme %q", u.Scheme)
	}
	return &Client{Client: hc, base: u}, nil
}

func (c *Client) endpoint(p string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + p
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("error performing GET request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logging.Debug("error closing response body: %v", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("error decoding %s: %w", req.URL.Path, err)
	}
	return nil
}

// List fetches one directory listing. dir is relative to the media root;
// "" is the root.
func (c *Client) List(ctx context.Context, dir string) ([]catalog.Entry, error) {
	var entries []catalog.Entry
	if err := c.getJSON(ctx, c.endpoint("/api/list", url.Values{"path": {dir}}), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Catalog fetches every directory and video under the media root. Its
// signature matches search.Loader.
func (c *Client) Catalog(ctx context.Context) ([]catalog.Entry, error) {
	var entries []catalog.Entry
	if err := c.getJSON(ctx, c.endpoint("/api/catalog", nil), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Suggestions asks the server for names close to q.
func (c *Client) Suggestions(ctx context.Context, q string, limit int) ([]Suggestion, error) {
	query := url.Values{"q": {q}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var out []Suggestion
	if err := c.getJSON(ctx, c.endpoint("/api/search/suggestions", query), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Settings fetches the grid preferences.
func (c *Client) Settings(ctx context.Context) (settings.Settings, error) {
	s := settings.Defaults()
	if err := c.getJSON(ctx, c.endpoint("/api/config", nil), &s); err != nil {
		return settings.Defaults(), err
	}
	return s, nil
}

// VideoURL returns the URL that streams the video at rel.
func (c *Client) VideoURL(rel string) string {
	return c.fileURL("/videos/", rel, "")
}

// ThumbnailURL returns the URL of the thumbnail for the video at rel.
func (c *Client) ThumbnailURL(rel string) string {
	return c.fileURL("/thumbs/", rel, ".jpg")
}

func (c *Client) fileURL(prefix, rel, suffix string) string {
	segments := strings.Split(strings.Trim(rel, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	u := *c.base
	u.RawQuery = ""
	u.Path = ""
	return strings.TrimRight(u.String(), "/") + strings.TrimRight(c.base.EscapedPath(), "/") +
		prefix + strings.Join(segments, "/") + suffix
}
