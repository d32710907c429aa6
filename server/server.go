// Package server implements the HTTP/1.1 server core: an accept loop over
// a bounded worker pool, and a per-connection keep-alive dispatch loop.
package server

import (
	"context"
	"log/slog"
	"sync"

	"httpcore/transport"

	"github.com/pkg/errors"
)

// Server accepts connections from a transport.Listener and dispatches
// requests on each to a HandleFunc.
type Server struct {
	listener transport.Listener
	handle   HandleFunc
	opts     Options
	logger   *slog.Logger

	sem chan struct{}
	wg  sync.WaitGroup

	cancel context.CancelFunc
}

// New builds a Server that serves l until Close is called.
func New(l transport.Listener, handle HandleFunc, logger *slog.Logger, opts Options) *Server {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		listener: l,
		handle:   handle,
		opts:     opts,
		logger:   logger,
		sem:      make(chan struct{}, opts.WorkerCount),
	}
}

// Start launches the accept loop in the background and returns
// immediately.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.acceptLoop(ctx)
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.logger.Error("accept failed", "error", err.Error())
			}
			return
		}

		s.wg.Add(1)
		go s.serveWithBackpressure(ctx, conn)
	}
}

// serveWithBackpressure blocks acquiring a worker slot before serving, so
// the server never runs more than WorkerCount connections concurrently.
func (s *Server) serveWithBackpressure(ctx context.Context, c transport.Conn) {
	defer s.wg.Done()

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		c.Close()
		return
	}
	defer func() { <-s.sem }()

	conn := newConn(c, s.handle, s.logger.With("remote", c.RemoteAddr()), s.opts)
	conn.serve(ctx)
}

// Close stops accepting new connections and waits up to ShutdownGrace for
// in-flight connections to finish.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if err := s.listener.Close(); err != nil {
		return errors.Wrap(err, "closing listener")
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-s.opts.Clock.After(s.opts.ShutdownGrace):
		s.logger.Warn("shutdown grace period elapsed with connections still open")
	}

	return nil
}
