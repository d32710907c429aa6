package transport

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// stubConn is an in-memory, paired half of a Conn, for tests that need a
// Conn without a real socket.
type stubConn struct {
	stream chan []byte
	closed chan struct{}
	once   sync.Once

	buf *bytes.Buffer

	mu           sync.Mutex
	readDeadline time.Time

	counterpart *stubConn
	remoteAddr  string
}

var _ Conn = (*stubConn)(nil)

func (s *stubConn) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *stubConn) RemoteAddr() string { return s.remoteAddr }

func (s *stubConn) SetReadDeadline(t time.Time) error {
	s.mu.Lock()
	s.readDeadline = t
	s.mu.Unlock()
	return nil
}

func (s *stubConn) SetWriteDeadline(t time.Time) error { return nil }

func (s *stubConn) Read(p []byte) (int, error) {
	if s.buf.Len() > 0 {
		return s.buf.Read(p)
	}

	s.mu.Lock()
	deadline := s.readDeadline
	s.mu.Unlock()

	var timer *time.Timer
	var timeoutCh <-chan time.Time
	if !deadline.IsZero() {
		timer = time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-s.closed:
		return 0, ErrConnClosed
	case <-timeoutCh:
		return 0, ErrDeadlineExceeded
	case b, ok := <-s.stream:
		if !ok {
			return 0, ErrConnClosed
		}
		n := copy(p, b)
		if remain := len(b) - n; remain > 0 {
			s.buf.Write(b[n:])
		}
		return n, nil
	}
}

func (s *stubConn) Write(p []byte) (int, error) {
	c := make([]byte, len(p))
	copy(c, p)

	// Checked first so a closed end is reported even when the buffered
	// stream still has room.
	select {
	case <-s.closed:
		return 0, ErrConnClosed
	case <-s.counterpart.closed:
		return 0, ErrConnClosed
	default:
	}

	select {
	case <-s.closed:
		return 0, ErrConnClosed
	case <-s.counterpart.closed:
		return 0, ErrConnClosed
	case s.counterpart.stream <- c:
		return len(c), nil
	}
}

// StubListener is an in-memory Listener paired with MakeConn, used by pool
// and server tests to exercise the accept loop without binding a socket.
type StubListener struct {
	connCh chan *stubConn

	mu     sync.Mutex
	closed bool
}

var _ Listener = (*StubListener)(nil)

func NewStubListener() *StubListener {
	return &StubListener{connCh: make(chan *stubConn, 16)}
}

func (s *StubListener) Addr() string { return "stub" }

func (s *StubListener) Accept(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case c, ok := <-s.connCh:
		if !ok {
			return nil, ErrListenerClosed
		}
		return c, nil
	}
}

func (s *StubListener) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.connCh)
	}
	return nil
}

// MakeConn creates a connected pair and queues the server-side half for
// Accept (a backlog of up to 16 pending connections, so MakeConn may run
// before Accept is called), returning the client-side half to the caller.
// Each half buffers up to 64 writes, so Write returns before the peer reads.
func (s *StubListener) MakeConn() (Conn, error) {
	server := &stubConn{closed: make(chan struct{}), buf: bytes.NewBuffer(nil), stream: make(chan []byte, 64), remoteAddr: "stub-client"}
	client := &stubConn{closed: make(chan struct{}), buf: bytes.NewBuffer(nil), stream: make(chan []byte, 64), remoteAddr: "stub-server"}
	server.counterpart, client.counterpart = client, server

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrListenerClosed
	}

	s.connCh <- server
	return client, nil
}

// StubDialer dials directly into a StubListener, for client tests that
// exercise the full pool+dial path without a real socket.
type StubDialer struct {
	Listener *StubListener
}

var _ Dialer = (*StubDialer)(nil)

func (d *StubDialer) Dial(ctx context.Context, origin string) (Conn, error) {
	return d.Listener.MakeConn()
}
