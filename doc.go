// Package httpcore implements a minimal HTTP/1.1 client and server pair
// directly on top of net.Conn, with no dependency on net/http.
//
// Package layout:
//
//   - message: in-memory Request/Response representation and header map.
//   - wire: parsing a message off a byte stream and serializing one onto it.
//   - internal/chunked: chunked transfer-coding reader/writer.
//   - transport: the blocking stream-socket abstraction consumed by the
//     pool, client and server (a real net.Conn adapter plus an in-memory
//     stub used by tests).
//   - pool: per-origin bounded pool of reusable connections.
//   - client: single-exchange transport plus redirect/revalidation policy.
//   - server: accept loop and per-connection keep-alive loop.
package httpcore
