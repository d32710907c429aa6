package client

import (
	"log/slog"
	"time"

	"httpcore/pool"

	"github.com/benbjohnson/clock"
)

// DefaultMaxRedirects bounds automatic redirect following, matching the
// original client's loop-termination guard against redirect cycles.
const DefaultMaxRedirects = 5

// Options configures an Engine. Zero values fall back to package
// defaults.
type Options struct {
	MaxRedirects int

	// Use301Cache, when enabled, remembers the final URL of a 301 chain
	// and skips straight to it on the next request for the original URL.
	Use301Cache bool

	Pool   pool.Options
	Clock  clock.Clock
	Logger *slog.Logger

	// RequestTimeout bounds connection acquisition (including any dial)
	// for a single exchange. It does not bound writing the request or
	// reading the response; reads are bounded by Pool.ConnReadTimeout.
	RequestTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRedirects <= 0 {
		o.MaxRedirects = DefaultMaxRedirects
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	return o
}
