package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/go-realign/coord"
)

// Client configuration defaults.
const (
	DefaultMaxIdleConns        = 50
	DefaultMaxIdleConnsPerHost = 20
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultRequestTimeout      = 15 * time.Second
	DefaultChunkSize           = 100
	DefaultConcurrency         = 4
)

// HTTPError reports a non-200 response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// Is makes a 404 match ErrNotFound.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to a REST translation and metadata service.
type Client struct {
	baseURL     string
	client      *http.Client
	chunkSize   int
	concurrency int

	metadataCache sync.Map // map[coord.GA]*Metadata
	translations  sync.Map // map[string]Translation keyed by GAV string
	forbidden     sync.Map // map[coord.GA]map[string]bool from translations
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets the HTTP request timeout.
// Zero or negative values fall back to DefaultRequestTimeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		} else {
			c.client.Timeout = DefaultRequestTimeout
		}
	}
}

// WithChunkSize sets how many coordinates go into one lookup request.
func WithChunkSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithConcurrency bounds the number of lookup requests in flight.
func WithConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	transport := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout:   DefaultRequestTimeout,
			Transport: transport,
		},
		chunkSize:   DefaultChunkSize,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetMetadata fetches {base}/metadata/{group}/{artifact}.
// Results are cached by coordinate.
func (c *Client) GetMetadata(ctx context.Context, ga coord.GA) (*Metadata, error) {
	if cached, ok := c.metadataCache.Load(ga); ok {
		return cached.(*Metadata), nil
	}

	u := fmt.Sprintf("%s/metadata/%s/%s", c.baseURL, url.PathEscape(ga.Group), url.PathEscape(ga.Artifact))
	data, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, notFound(c, ga)
		}
		return nil, zerr.With(zerr.Wrap(err, "fetch metadata"), "coordinate", ga.String())
	}

	metadata, err := ValidateMetadataJSON(data)
	if err != nil {
		return nil, zerr.With(err, "coordinate", ga.String())
	}

	c.metadataCache.Store(ga, metadata)
	return metadata, nil
}

// Versions returns the published versions of ga.
func (c *Client) Versions(ctx context.Context, ga coord.GA) ([]string, error) {
	return versionsFrom(ctx, c, ga)
}

// Forbidden reports whether gav must not be used, consulting translations
// already fetched before asking the metadata endpoint.
func (c *Client) Forbidden(ctx context.Context, gav coord.GAV) (string, bool, error) {
	if set, ok := c.forbidden.Load(gav.GA); ok && set.(map[string]bool)[gav.Version] {
		return "forbidden by translation service", true, nil
	}
	return forbiddenFrom(ctx, c, gav)
}

// Translate looks up translations for gavs. Duplicates are collapsed and
// cached answers are reused; the rest is posted in chunks, concurrently.
// The result follows the order of gavs; coordinates the service did not
// answer for are omitted.
func (c *Client) Translate(ctx context.Context, gavs []coord.GAV) ([]Translation, error) {
	var ordered, pending []coord.GAV
	seen := make(map[string]bool, len(gavs))
	for _, gav := range gavs {
		key := gav.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		ordered = append(ordered, gav)
		if _, ok := c.translations.Load(key); !ok {
			pending = append(pending, gav)
		}
	}

	chunks := chunk(pending, c.chunkSize)
	results := make([][]Translation, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, batch := range chunks {
		g.Go(func() error {
			res, err := c.lookup(gctx, batch)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range results {
		for _, t := range res {
			c.translations.Store(t.GAV().String(), t)
			c.rememberForbidden(t)
		}
	}

	out := make([]Translation, 0, len(ordered))
	for _, gav := range ordered {
		if t, ok := c.translations.Load(gav.String()); ok {
			out = append(out, t.(Translation))
		}
	}
	return out, nil
}

func (c *Client) rememberForbidden(t Translation) {
	if len(t.ForbiddenVersions) == 0 {
		return
	}
	ga := coord.NewGA(t.GroupID, t.ArtifactID)
	set := make(map[string]bool, len(t.ForbiddenVersions))
	if prev, ok := c.forbidden.Load(ga); ok {
		for v := range prev.(map[string]bool) {
			set[v] = true
		}
	}
	for _, v := range t.ForbiddenVersions {
		set[v] = true
	}
	c.forbidden.Store(ga, set)
}

func (c *Client) lookup(ctx context.Context, batch []coord.GAV) ([]Translation, error) {
	req := make([]gavRequest, len(batch))
	for i, gav := range batch {
		req[i] = gavRequest{GroupID: gav.Group, ArtifactID: gav.Artifact, Version: gav.Version}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, zerr.Wrap(err, "encode lookup request")
	}

	data, err := c.do(ctx, http.MethodPost, c.baseURL+"/lookup/gavs", body)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "translate coordinates"), "batch_size", len(batch))
	}

	var res []Translation
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, zerr.Wrap(err, "parse lookup response")
	}
	return res, nil
}

// ClearCache removes all cached data.
func (c *Client) ClearCache() {
	c.metadataCache = sync.Map{}
	c.translations = sync.Map{}
	c.forbidden = sync.Map{}
}

// do performs a request and returns the response body.
func (c *Client) do(ctx context.Context, method, u string, body []byte) ([]byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: u}
	}
	return io.ReadAll(resp.Body)
}

func chunk(gavs []coord.GAV, size int) [][]coord.GAV {
	var out [][]coord.GAV
	for len(gavs) > 0 {
		n := min(size, len(gavs))
		out = append(out, gavs[:n])
		gavs = gavs[n:]
	}
	return out
}
