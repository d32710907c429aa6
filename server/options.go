package server

import (
	"runtime"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	// DefaultPort is tried first; ListenTCP falls back to an ephemeral
	// port if it's already taken.
	DefaultPort = 8080

	// DefaultIdleTimeout bounds how long a keep-alive connection may sit
	// between requests before the server closes it.
	DefaultIdleTimeout = 30 * time.Second

	// DefaultShutdownGrace bounds how long Close waits for in-flight
	// connections to finish before returning.
	DefaultShutdownGrace = 5 * time.Second
)

// Options configures a Server. Zero values fall back to package
// defaults.
type Options struct {
	Port int

	// WorkerCount bounds concurrently-served connections. <= 0 picks
	// 2x GOMAXPROCS, minimum 2.
	WorkerCount int

	IdleTimeout   time.Duration
	ShutdownGrace time.Duration

	Clock clock.Clock
}

func (o Options) withDefaults() Options {
	if o.Port <= 0 {
		o.Port = DefaultPort
	}
	if o.WorkerCount <= 0 {
		o.WorkerCount = workerCountDefault()
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.ShutdownGrace <= 0 {
		o.ShutdownGrace = DefaultShutdownGrace
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	return o
}

func workerCountDefault() int {
	n := 2 * runtime.GOMAXPROCS(0)
	if n < 2 {
		return 2
	}
	return n
}
