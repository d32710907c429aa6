// Package client implements the HTTP/1.1 request engine: connection
// pooling, automatic redirect following, and conditional-GET caching.
package client

import (
	"context"
	"io"

	"httpcore/internal/ioutil"
	"httpcore/message"
	"httpcore/pool"
	"httpcore/transport"

	"github.com/pkg/errors"
)

// ErrTooManyRedirects is returned alongside the last response received
// when a redirect chain exceeds Options.MaxRedirects. Unlike a plain
// exchange failure, the response is not discarded: the caller gets the
// last redirect response together with this sentinel, and the cache is
// left untouched for that request.
var ErrTooManyRedirects = errors.New("too many redirects")

// Engine sends requests and transparently follows redirects, reusing
// pooled connections and revalidating cached GET responses.
type Engine struct {
	pool  *pool.Pool
	cache *cache
	rcc   *redirectCache
	opts  Options
}

// New builds an Engine that dials through dialer.
func New(dialer transport.Dialer, opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		pool:  pool.New(dialer, opts.Pool),
		cache: newCache(),
		rcc:   newRedirectCache(),
		opts:  opts,
	}
}

func (e *Engine) readerFor(conn transport.Conn) *ioutil.UntilReader {
	return ioutil.NewUntilReader(io.Reader(connReader{conn}))
}

// connReader adapts transport.Conn (which also exposes Write/Close/etc)
// down to a bare io.Reader for the wire parser.
type connReader struct{ c transport.Conn }

func (c connReader) Read(p []byte) (int, error) { return c.c.Read(p) }

// Get issues a GET request for rawURL, following redirects and serving
// cached/conditionally-revalidated responses per the configured policy.
func (e *Engine) Get(ctx context.Context, rawURL string) (*message.Response, error) {
	return e.do(ctx, "GET", rawURL, nil)
}

// Post issues a POST request with the given body.
func (e *Engine) Post(ctx context.Context, rawURL string, body []byte) (*message.Response, error) {
	return e.do(ctx, "POST", rawURL, body)
}

func (e *Engine) do(ctx context.Context, method, rawURL string, body []byte) (*message.Response, error) {
	originalURL := rawURL

	if e.opts.Use301Cache {
		if target, ok := e.rcc.get(rawURL); ok {
			rawURL = target
		}
	}

	current := rawURL
	sawPermanentRedirect := false
	redirectsFollowed := 0

	for {
		u, err := parseURL(current)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing url %s", current)
		}

		req := e.buildRequest(method, u, body, current)

		resp, err := e.exchange(ctx, u, req)
		if err != nil {
			return nil, err
		}

		if resp.IsRedirect() {
			if resp.Status == 301 {
				sawPermanentRedirect = true
			}

			location, ok := resp.Headers.Get("Location")
			if !ok || location == "" {
				return resp, nil
			}

			if redirectsFollowed >= e.opts.MaxRedirects {
				return resp, ErrTooManyRedirects
			}
			redirectsFollowed++

			next, err := resolveLocation(u, location)
			if err != nil {
				return nil, errors.Wrap(err, "resolving redirect location")
			}

			current = next.String()
			// A redirected POST is coerced to GET, matching browsers and
			// the spec's defined 301/302 handling.
			method = "GET"
			body = nil
			continue
		}

		if method == "GET" {
			if resp.IsNotModified() {
				if merged, ok := e.cache.mergeNotModified(current, resp); ok {
					return merged, nil
				}
				return resp, nil
			}
			if resp.Status == 200 {
				e.cache.put(current, resp)
			}
		}

		if e.opts.Use301Cache && sawPermanentRedirect && resp.Status == 200 {
			e.rcc.put(originalURL, current)
		}

		return resp, nil
	}
}

func (e *Engine) buildRequest(method string, u parsedURL, body []byte, cacheKey string) *message.Request {
	headers := message.NewHeaders()
	headers.Set("Accept", "*/*")
	headers.Set("User-Agent", "httpcore/1.0")

	if method == "GET" {
		if cached, ok := e.cache.get(cacheKey); ok {
			if etag, ok := cached.response.Headers.Get("ETag"); ok {
				headers.Set("If-None-Match", etag)
			}
			if lm, ok := cached.response.Headers.Get("Last-Modified"); ok {
				headers.Set("If-Modified-Since", lm)
			}
		}
	}

	return message.NewRequest(method, u.Path, headers, body)
}
