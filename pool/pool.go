// Package pool maintains a bounded, per-origin set of idle connections so
// the client can reuse keep-alive sockets instead of dialing fresh ones
// for every request.
package pool

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"httpcore/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

const (
	// DefaultMaxPoolSize bounds the number of idle connections kept per
	// origin.
	DefaultMaxPoolSize = 10
	// DefaultAcquireWait is how long Acquire blocks on an idle connection
	// before falling back to a fresh dial.
	DefaultAcquireWait = time.Second
	// DefaultConnReadTimeout is applied to every connection handed out,
	// idle or freshly dialed.
	DefaultConnReadTimeout = 15 * time.Second
	// livenessProbeTimeout bounds the one-byte read used to detect a
	// half-closed idle connection before handing it back out.
	livenessProbeTimeout = 5 * time.Millisecond
)

// Origin identifies a pool bucket, conventionally "host:port".
type Origin string

// Options configures a Pool. Zero values fall back to the package
// defaults.
type Options struct {
	MaxPoolSize     int
	AcquireWait     time.Duration
	ConnReadTimeout time.Duration

	// Clock is used for elapsed-time bookkeeping and logging timestamps
	// only (e.g. in tests with a clock.Mock); it is never fed into a
	// transport.Conn deadline, since those are compared against real wall
	// time by the underlying socket.
	Clock  clock.Clock
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxPoolSize <= 0 {
		o.MaxPoolSize = DefaultMaxPoolSize
	}
	if o.AcquireWait <= 0 {
		o.AcquireWait = DefaultAcquireWait
	}
	if o.ConnReadTimeout <= 0 {
		o.ConnReadTimeout = DefaultConnReadTimeout
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Pool hands out pooled connections per origin, dialing a fresh one when
// none are idle within the acquire window.
type Pool struct {
	dialer transport.Dialer
	opts   Options

	mu      sync.Mutex
	buckets map[Origin]chan transport.Conn
	closed  bool
}

// New builds a Pool that dials through dialer.
func New(dialer transport.Dialer, opts Options) *Pool {
	return &Pool{
		dialer:  dialer,
		opts:    opts.withDefaults(),
		buckets: make(map[Origin]chan transport.Conn),
	}
}

func (p *Pool) bucket(origin Origin) chan transport.Conn {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.buckets[origin]
	if !ok {
		b = make(chan transport.Conn, p.opts.MaxPoolSize)
		p.buckets[origin] = b
	}
	return b
}

// Acquire returns an idle connection for origin if one becomes available
// within the configured acquire window, and otherwise dials a new one.
// Every returned connection has its read deadline set to ConnReadTimeout.
func (p *Pool) Acquire(ctx context.Context, origin Origin) (transport.Conn, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errors.New("pool is closed")
	}
	p.mu.Unlock()

	b := p.bucket(origin)

	waitCtx, cancel := context.WithTimeout(ctx, p.opts.AcquireWait)
	defer cancel()

	for {
		select {
		case conn := <-b:
			if p.isAlive(conn) {
				if err := conn.SetReadDeadline(time.Now().Add(p.opts.ConnReadTimeout)); err != nil {
					conn.Close()
					continue
				}
				p.opts.Logger.Debug("handed out idle connection", "origin", origin, "at", p.opts.Clock.Now())
				return conn, nil
			}
			conn.Close()
			continue
		case <-waitCtx.Done():
			return p.dial(ctx, origin)
		}
	}
}

func (p *Pool) dial(ctx context.Context, origin Origin) (transport.Conn, error) {
	conn, err := p.dialer.Dial(ctx, string(origin))
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", origin)
	}
	if err := conn.SetReadDeadline(time.Now().Add(p.opts.ConnReadTimeout)); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "setting read deadline on dialed connection")
	}
	p.opts.Logger.Debug("dialed new connection", "origin", origin, "at", p.opts.Clock.Now())
	return conn, nil
}

// isAlive probes an idle connection with a short-deadline one-byte read:
// a timeout means nothing arrived, so the connection is presumed alive; any
// other outcome (EOF, reset) means the peer went away while it sat idle.
func (p *Pool) isAlive(conn transport.Conn) bool {
	if err := conn.SetReadDeadline(time.Now().Add(livenessProbeTimeout)); err != nil {
		return false
	}

	var b [1]byte
	_, err := conn.Read(b[:])
	if err == nil {
		// Unexpected data on an idle connection; treat the connection as
		// no longer in the framing state we left it in.
		return false
	}
	return errors.Is(err, transport.ErrDeadlineExceeded) || isTimeout(err)
}

// Release returns conn to its origin's bucket for reuse, closing it
// instead when the bucket is already at capacity.
func (p *Pool) Release(origin Origin, conn transport.Conn) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed {
		conn.Close()
		return
	}

	b := p.bucket(origin)
	select {
	case b <- conn:
	default:
		conn.Close()
	}
}

// Discard closes conn without attempting to return it to the pool, for use
// when the caller knows the connection's framing state is no longer
// trustworthy (e.g. Connection: close, or a write/read error).
func (p *Pool) Discard(conn transport.Conn) {
	conn.Close()
}

// Shutdown closes every idle connection across all origins and rejects
// further Acquire calls.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	for origin, b := range p.buckets {
		close(b)
		for conn := range b {
			if err := conn.Close(); err != nil {
				p.opts.Logger.Warn("error closing pooled connection during shutdown", "origin", origin, "error", err)
			}
		}
	}
}

type timeouter interface{ Timeout() bool }

func isTimeout(err error) bool {
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}
