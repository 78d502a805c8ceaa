// Package fetch is the client side of the remote item source: typed calls
// for the three read endpoints of a minifeed server.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/minifeed/internal/model"
	"github.com/abelbrown/minifeed/internal/otel"
)

const (
	pathGroups = "/api/getGroups"
	pathFeeds  = "/api/getFeeds"
	pathItems  = "/api/getItems"

	userAgent = "minifeed/0.1"

	// maxBody caps the decoded response size.
	maxBody = 32 << 20
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d %s", e.Path, e.Code, http.StatusText(e.Code))
}

// IsStatus reports whether err wraps a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Client talks to a minifeed server. Goroutine-safe.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	events  *otel.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit caps outgoing requests at rps per second with the given
// burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithEvents attaches a structured event logger.
func WithEvents(l *otel.Logger) Option {
	return func(c *Client) { c.events = l }
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Groups lists the group identifiers.
func (c *Client) Groups(ctx context.Context) ([]string, error) {
	var groups []string
	if err := c.getJSON(ctx, pathGroups, nil, &groups); err != nil {
		return nil, fmt.Errorf("get groups: %w", err)
	}
	return groups, nil
}

// Feeds lists every feed with its group and favicon.
func (c *Client) Feeds(ctx context.Context) ([]model.Feed, error) {
	var feeds []model.Feed
	if err := c.getJSON(ctx, pathFeeds, nil, &feeds); err != nil {
		return nil, fmt.Errorf("get feeds: %w", err)
	}
	return feeds, nil
}

// Items runs an item query. The order of the returned slice is whatever the
// server sent.
func (c *Client) Items(ctx context.Context, q model.Query) ([]model.Item, error) {
	var items []model.Item
	if err := c.getJSON(ctx, pathItems, ItemParams(q), &items); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return items, nil
}

// ItemParams encodes q as getItems query parameters.
func ItemParams(q model.Query) url.Values {
	v := url.Values{}
	if q.Since > 0 {
		v.Set("since", strconv.FormatInt(q.Since, 10))
	}
	if q.After != "" {
		v.Set("after", q.After)
	}
	switch q.Scope.Kind {
	case model.ScopeGroup:
		v.Set("group_id", q.Scope.ID)
	case model.ScopeFeed:
		v.Set("feed_id", q.Scope.ID)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	c.events.Emit(otel.Event{Kind: otel.KindFetchStart, Comp: "fetch", Msg: path + "?" + u.RawQuery})

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Path: path}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	c.events.Emit(otel.Event{
		Kind: otel.KindFetchComplete,
		Comp: "fetch",
		Dur:  time.Since(start),
		Msg:  path,
	})
	return nil
}
