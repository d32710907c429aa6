// Package transport is the blocking stream-socket abstraction the pool,
// client and server are built on. Conn is intentionally narrow — just
// enough of net.Conn to serve the wire layer — so tests can swap in an
// in-memory Stub instead of a real socket.
package transport

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrConnClosed       = errors.New("connection is closed")
	ErrListenerClosed   = errors.New("listener is closed")
	ErrDeadlineExceeded = errors.New("deadline exceeded")
)

// Conn is an open bidirectional byte stream to a fixed (host, port)
// endpoint.
type Conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error

	RemoteAddr() string

	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Listener accepts inbound connections.
type Listener interface {
	Accept(ctx context.Context) (Conn, error)
	Addr() string
	Close() error
}

// Dialer opens outbound connections to an origin.
type Dialer interface {
	Dial(ctx context.Context, origin string) (Conn, error)
}
