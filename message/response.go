package message

import (
	"mime"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Response is the in-memory representation of an HTTP/1.1 response.
//
// Invariant: on the wire, either Content-Length matches len(Body) exactly,
// or Transfer-Encoding: chunked is advertised and Body already holds the
// complete, already-materialized body — the core never streams a response
// body.
type Response struct {
	Status     int
	Reason     string
	Headers    Headers
	Body       []byte
	StatusLine string // pre-formed status line, if the parser kept the raw one
}

// NewResponse takes Status and Reason from status and normalizes a nil
// body to zero length.
func NewResponse(status Status, headers Headers, body []byte) *Response {
	if body == nil {
		body = []byte{}
	}
	return &Response{
		Status:  status.Code,
		Reason:  status.Reason,
		Headers: headers,
		Body:    body,
	}
}

func (r *Response) Header(name string) (string, bool) { return r.Headers.Get(name) }

func (r *Response) SetBody(body []byte) {
	if body == nil {
		body = []byte{}
	}
	r.Body = body
}

func (r *Response) IsRedirect() bool    { return r.Status == 301 || r.Status == 302 }
func (r *Response) IsNotModified() bool { return r.Status == 304 }

// StatusLineOrDefault returns the pre-formed status line if the response
// carries one, else constructs "HTTP/1.1 <code> <reason>".
func (r *Response) StatusLineOrDefault() string {
	if r.StatusLine != "" {
		return r.StatusLine
	}
	reason := r.Reason
	if reason == "" {
		reason = ReasonFor(r.Status)
	}
	return "HTTP/1.1 " + strconv.Itoa(r.Status) + " " + reason
}

// BodyAsString decodes Body using the charset parameter of Content-Type
// when present, falling back to UTF-8 (and to the raw bytes if decoding
// that charset fails).
func (r *Response) BodyAsString() string {
	charset := "utf-8"
	if ct, ok := r.Headers.Get("Content-Type"); ok {
		if _, params, err := mime.ParseMediaType(ct); err == nil {
			if cs, ok := params["charset"]; ok && cs != "" {
				charset = strings.ToLower(cs)
			}
		}
	}

	if charset == "utf-8" || charset == "utf8" {
		if utf8.Valid(r.Body) {
			return string(r.Body)
		}
	}

	// Only UTF-8 is implemented; any other charset parameter falls back to
	// a best-effort UTF-8 decode per spec, since content-encoding/charset
	// transcoding is out of scope for the core.
	return string(r.Body)
}
