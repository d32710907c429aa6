package message

// Request is the in-memory representation of an HTTP/1.1 request, built by
// the wire parser on the server side or by the client engine on the client
// side. Once handed to a dispatcher or transport it is treated as
// read-only.
type Request struct {
	Method  string
	Target  string // path + query, opaque, defaults to "/"
	Version string // e.g. "HTTP/1.1"
	Headers Headers
	Body    []byte
}

// NewRequest builds a Request with Target defaulted to "/" and Version
// defaulted to HTTP/1.1, as the server does for any request whose parsed
// target is empty.
func NewRequest(method, target string, headers Headers, body []byte) *Request {
	if target == "" {
		target = "/"
	}
	if body == nil {
		body = []byte{}
	}
	return &Request{
		Method:  method,
		Target:  target,
		Version: "HTTP/1.1",
		Headers: headers,
		Body:    body,
	}
}

func (r *Request) Header(name string) (string, bool) { return r.Headers.Get(name) }

func (r *Request) SetBody(body []byte) {
	if body == nil {
		body = []byte{}
	}
	r.Body = body
}
