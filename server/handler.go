package server

import "httpcore/message"

// HandleFunc dispatches a parsed request to application code and returns
// the response to write back. A panic in the dispatcher, or a nil response
// from it, is turned into a 500 by the connection loop; HandleFunc itself should
// never need to signal protocol-level failures.
type HandleFunc func(req *message.Request) *message.Response
