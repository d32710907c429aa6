package client

import (
	"sync"

	"httpcore/message"
)

// cacheEntry is a stored 200 response keyed by request URL, used to build
// conditional revalidation headers and to serve as the result of a 304.
type cacheEntry struct {
	response *message.Response
}

// cache stores only successful GET responses, matching GET's idempotent,
// cacheable semantics.
type cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

func newCache() *cache {
	return &cache{entries: make(map[string]*cacheEntry)}
}

func (c *cache) get(url string) (*cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[url]
	return e, ok
}

func (c *cache) put(url string, resp *message.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = &cacheEntry{response: resp}
}

// mergeNotModified folds the headers of a 304 response into the cached
// entry (e.g. a refreshed ETag or Cache-Control) and returns the updated
// cached response to serve to the caller.
func (c *cache) mergeNotModified(url string, notModified *message.Response) (*message.Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[url]
	if !ok {
		return nil, false
	}
	for _, name := range notModified.Headers.FieldNames() {
		v, _ := notModified.Headers.Get(name)
		e.response.Headers.Set(name, v)
	}
	return e.response, true
}

// redirectCache maps an original request URL to the final URL a 301
// permanently redirected it to.
type redirectCache struct {
	mu      sync.Mutex
	targets map[string]string
}

func newRedirectCache() *redirectCache {
	return &redirectCache{targets: make(map[string]string)}
}

func (r *redirectCache) get(url string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.targets[url]
	return t, ok
}

func (r *redirectCache) put(originalURL, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[originalURL] = target
}
