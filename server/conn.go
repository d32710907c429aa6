package server

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"httpcore/internal/ioutil"
	"httpcore/message"
	"httpcore/transport"
	"httpcore/wire"

	"github.com/pkg/errors"
)

// conn serves one accepted connection, dispatching requests sequentially
// until the connection is closed, Connection: close is seen, or the idle
// read times out.
type conn struct {
	raw    transport.Conn
	r      *ioutil.UntilReader
	handle HandleFunc
	logger *slog.Logger
	opts   Options
}

func newConn(raw transport.Conn, handle HandleFunc, logger *slog.Logger, opts Options) *conn {
	return &conn{
		raw:    raw,
		r:      ioutil.NewUntilReader(raw),
		handle: handle,
		logger: logger,
		opts:   opts,
	}
}

func (c *conn) serve(ctx context.Context) {
	defer c.raw.Close()

	for {
		// The deadline itself must be real wall-clock time, since it's
		// compared against the underlying socket's own clock; opts.Clock
		// is reserved for elapsed-time bookkeeping and log timestamps, as
		// in the pool.
		if err := c.raw.SetReadDeadline(time.Now().Add(c.opts.IdleTimeout)); err != nil {
			c.logger.Debug("setting idle read deadline failed, closing connection", "error", err.Error())
			return
		}

		req, err := wire.ParseRequest(c.r)
		if err != nil {
			// EOF and idle timeouts are the ordinary ways a keep-alive
			// connection ends; anything else is worth a log line.
			if !errors.Is(err, transport.ErrConnClosed) && !errors.Is(err, io.EOF) &&
				!errors.Is(err, transport.ErrDeadlineExceeded) && !errors.Is(err, os.ErrDeadlineExceeded) {
				c.logger.Debug("ending connection after parse error", "error", err.Error())
			}
			return
		}

		keepAlive := c.wantsKeepAlive(req)

		resp := c.dispatch(req)

		if err := wire.WriteResponse(c.raw, resp, keepAlive); err != nil {
			c.logger.Debug("ending connection after write error", "error", err.Error())
			return
		}

		if !keepAlive {
			return
		}
	}
}

// wantsKeepAlive implements the default-disposition rule: HTTP/1.1
// defaults to keep-alive unless the client sends Connection: close;
// anything else defaults to close unless Connection: keep-alive is
// explicit.
func (c *conn) wantsKeepAlive(req *message.Request) bool {
	if req.Version == "HTTP/1.1" {
		return !req.Headers.HasToken("Connection", "close")
	}
	return req.Headers.HasToken("Connection", "keep-alive")
}

// dispatch calls the handler and turns a panic or nil response into a 500
// so a misbehaving handler never corrupts the wire framing.
func (c *conn) dispatch(req *message.Request) (resp *message.Response) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panicked", "panic", r)
			resp = internalServerError()
		}
	}()

	resp = c.handle(req)
	if resp == nil {
		c.logger.Error("handler returned nil response")
		resp = internalServerError()
	}
	return resp
}

func internalServerError() *message.Response {
	return message.NewResponse(message.StatusInternalServerError, message.NewHeaders(), []byte("Internal Server Error"))
}
