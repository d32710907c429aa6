package transport

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// tcpConn adapts *net.TCPConn to Conn.
type tcpConn struct {
	c *net.TCPConn
}

var _ Conn = (*tcpConn)(nil)

func (t *tcpConn) Read(p []byte) (int, error)  { return t.c.Read(p) }
func (t *tcpConn) Write(p []byte) (int, error) { return t.c.Write(p) }
func (t *tcpConn) Close() error                { return t.c.Close() }
func (t *tcpConn) RemoteAddr() string          { return t.c.RemoteAddr().String() }

func (t *tcpConn) SetReadDeadline(d time.Time) error  { return t.c.SetReadDeadline(d) }
func (t *tcpConn) SetWriteDeadline(d time.Time) error { return t.c.SetWriteDeadline(d) }

// TCPDialer dials real TCP connections, setting TCP keep-alive on each one
// the way the original socket pool set SO_KEEPALIVE on every dialed
// socket.
type TCPDialer struct {
	KeepAlive time.Duration // 0 leaves net.Dialer's default keep-alive in place
}

var _ Dialer = (*TCPDialer)(nil)

func (d *TCPDialer) Dial(ctx context.Context, origin string) (Conn, error) {
	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", origin)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", origin)
	}

	tc, ok := conn.(*net.TCPConn)
	if !ok {
		conn.Close()
		return nil, errors.Errorf("unexpected connection type for tcp dial: %T", conn)
	}

	if d.KeepAlive > 0 {
		if err := tc.SetKeepAlive(true); err != nil {
			tc.Close()
			return nil, errors.Wrap(err, "enabling tcp keep-alive")
		}
		if err := tc.SetKeepAlivePeriod(d.KeepAlive); err != nil {
			tc.Close()
			return nil, errors.Wrap(err, "setting tcp keep-alive period")
		}
	}

	return &tcpConn{c: tc}, nil
}

// TCPListener adapts net.Listener to Listener, binding to the requested
// port and, when port is the configured default and already taken,
// falling back to an OS-assigned ephemeral port.
type TCPListener struct {
	l       net.Listener
	closeCh chan struct{}
}

var _ Listener = (*TCPListener)(nil)

// ListenTCP binds port, or an ephemeral port if port == defaultPort and
// the bind fails because the port is occupied.
func ListenTCP(port, defaultPort int) (*TCPListener, error) {
	l, err := net.Listen("tcp", addrFor(port))
	if err != nil {
		if port == defaultPort {
			l, err = net.Listen("tcp", addrFor(0))
		}
		if err != nil {
			return nil, errors.Wrapf(err, "listening on port %d", port)
		}
	}

	return &TCPListener{l: l, closeCh: make(chan struct{})}, nil
}

func addrFor(port int) string {
	if port <= 0 {
		return ":0"
	}
	return ":" + strconv.Itoa(port)
}

func (t *TCPListener) Addr() string { return t.l.Addr().String() }

func (t *TCPListener) Accept(ctx context.Context) (Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}

	resCh := make(chan result, 1)
	go func() {
		conn, err := t.l.Accept()
		resCh <- result{conn, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.closeCh:
		return nil, ErrListenerClosed
	case r := <-resCh:
		if r.err != nil {
			select {
			case <-t.closeCh:
				return nil, ErrListenerClosed
			default:
				return nil, errors.Wrap(r.err, "accepting connection")
			}
		}
		tc, ok := r.conn.(*net.TCPConn)
		if !ok {
			r.conn.Close()
			return nil, errors.Errorf("unexpected connection type: %T", r.conn)
		}
		return &tcpConn{c: tc}, nil
	}
}

func (t *TCPListener) Close() error {
	close(t.closeCh)
	return t.l.Close()
}
