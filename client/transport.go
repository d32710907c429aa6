package client

import (
	"context"

	"httpcore/message"
	"httpcore/pool"
	"httpcore/wire"

	"github.com/pkg/errors"
)

// exchange performs a single request/response round trip: acquire a
// pooled connection to req's origin, write the request, parse the
// response, and return the connection to the pool (or discard it) based
// on the response's Connection disposition. Options.RequestTimeout bounds
// connection acquisition, including any dial; writing the request and
// reading the response are not bounded by it, only by the read deadline
// the pool sets on the connection.
func (e *Engine) exchange(ctx context.Context, u parsedURL, req *message.Request) (*message.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.RequestTimeout)
	defer cancel()

	origin := pool.Origin(u.Origin())

	conn, err := e.pool.Acquire(ctx, origin)
	if err != nil {
		return nil, errors.Wrapf(err, "acquiring connection to %s", origin)
	}

	if err := wire.WriteRequest(conn, req, u.Host, u.Port); err != nil {
		e.pool.Discard(conn)
		return nil, errors.Wrap(err, "writing request")
	}

	resp, err := wire.ParseResponse(e.readerFor(conn))
	if err != nil {
		e.pool.Discard(conn)
		return nil, errors.Wrap(err, "parsing response")
	}

	if resp.Headers.HasToken("Connection", "close") {
		e.pool.Discard(conn)
	} else {
		e.pool.Release(origin, conn)
	}

	return resp, nil
}
