// Package registry queries the civil-registry genealogy API.
//
// A lookup is a single GET of <base>/<dni>. The JSON envelope is normalized
// into a [kin.Lookup] at ingestion so nothing downstream sees the
// registry's field aliases. Every failure is reported as
// UPSTREAM_UNAVAILABLE and aborts the render; there are no retries.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/kinreport/pkg/cache"
	"github.com/matzehuels/kinreport/pkg/errors"
	"github.com/matzehuels/kinreport/pkg/kin"
	"github.com/matzehuels/kinreport/pkg/observability"
)

// DefaultTimeout bounds one registry request when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// Options configures a Client.
type Options struct {
	BaseURL string
	// Token, when set, is sent as a bearer token.
	Token   string
	Timeout time.Duration
	// Headers are added to every request.
	Headers map[string]string

	// Cache stores normalized lookups. Nil disables caching.
	Cache    cache.Cache
	Keyer    cache.Keyer
	CacheTTL time.Duration
}

// Client fetches lookups from the registry.
type Client struct {
	http    *http.Client
	base    string
	headers map[string]string
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
}

// New creates a Client. The base URL must be http or https.
func New(opts Options) (*Client, error) {
	if err := errors.ValidateURL(opts.BaseURL); err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.LookupTTL
	}

	headers := map[string]string{"Accept": "application/json"}
	for k, v := range opts.Headers {
		headers[k] = v
	}
	if opts.Token != "" {
		headers["Authorization"] = "Bearer " + opts.Token
	}

	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		base:    strings.TrimRight(opts.BaseURL, "/"),
		headers: headers,
		cache:   opts.Cache,
		keyer:   opts.Keyer,
		ttl:     opts.CacheTTL,
	}, nil
}

// Lookup returns the principal and relatives registered for dni.
// With refresh the cached response is ignored and overwritten.
func (c *Client) Lookup(ctx context.Context, dni string, refresh bool) (kin.Lookup, error) {
	l, _, err := c.LookupWithCacheInfo(ctx, dni, refresh)
	return l, err
}

// LookupWithCacheInfo is Lookup that also reports whether the cache
// answered.
func (c *Client) LookupWithCacheInfo(ctx context.Context, dni string, refresh bool) (kin.Lookup, bool, error) {
	if err := errors.ValidateDNI(dni); err != nil {
		return kin.Lookup{}, false, err
	}

	key := c.keyer.LookupKey(dni)
	if !refresh {
		if l, ok := c.cached(ctx, key); ok {
			return l, true, nil
		}
	}

	l, err := c.fetch(ctx, dni)
	if err != nil {
		return kin.Lookup{}, false, err
	}

	if data, err := json.Marshal(l); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, "lookup", len(data))
		}
	}
	return l, false, nil
}

func (c *Client) cached(ctx context.Context, key string) (kin.Lookup, bool) {
	data, hit, err := c.cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "lookup")
		return kin.Lookup{}, false
	}
	var l kin.Lookup
	if err := json.Unmarshal(data, &l); err != nil {
		observability.Cache().OnCacheMiss(ctx, "lookup")
		return kin.Lookup{}, false
	}
	observability.Cache().OnCacheHit(ctx, "lookup")
	return l, true
}

func (c *Client) fetch(ctx context.Context, dni string) (kin.Lookup, error) {
	body, err := c.doRequest(ctx, c.base+"/"+url.PathEscape(dni))
	if err != nil {
		return kin.Lookup{}, errors.Wrap(errors.ErrCodeUpstreamUnavailable, err, "lookup %s", dni)
	}
	defer body.Close()

	var resp response
	if err := json.NewDecoder(io.LimitReader(body, maxBody)).Decode(&resp); err != nil {
		return kin.Lookup{}, errors.Wrap(errors.ErrCodeUpstreamUnavailable, err, "decode lookup %s", dni)
	}
	l, ok := resp.toLookup()
	if !ok {
		return kin.Lookup{}, errors.New(errors.ErrCodeUpstreamUnavailable, "lookup %s: response has no principal", dni)
	}
	return l, nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	if code >= 200 && code < 300 {
		return nil
	}
	return fmt.Errorf("status %d", code)
}
