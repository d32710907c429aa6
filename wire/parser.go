// Package wire turns a raw HTTP/1.1 byte stream into a message.Request or
// message.Response (Parse*) and turns one of those back into bytes on the
// wire (Write*). It implements the framing rules of RFC 9112 as narrowed
// by the core: Content-Length, chunked transfer-coding, or (client-only)
// Connection: close.
package wire

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"httpcore/internal/chunked"
	"httpcore/internal/ioutil"
	"httpcore/internal/rule"
	"httpcore/message"

	"github.com/pkg/errors"
)

var headerBoundary = []byte("\r\n\r\n")

// ErrMalformedStartLine is returned when a request or status line doesn't
// split into the expected number of space-separated tokens.
var ErrMalformedStartLine = errors.New("malformed start line")

// ParseRequest reads one HTTP/1.1 request off r. r is typically an
// *ioutil.UntilReader wrapping a connection so the bytes read past the
// header boundary carry over as the body-reader prefix on this and (for
// keep-alive) subsequent calls.
func ParseRequest(r *ioutil.UntilReader) (*message.Request, error) {
	raw, err := r.ReadUntil(headerBoundary)
	if err != nil {
		return nil, errors.Wrap(err, "reading request headers")
	}

	startLine, headerLines := splitHeaderBlock(raw)

	parts := strings.SplitN(startLine, " ", 3)
	if len(parts) != 3 {
		return nil, errors.Wrapf(ErrMalformedStartLine, "request line %q", startLine)
	}
	method, target, version := parts[0], parts[1], parts[2]
	if !rule.IsValidToken(method) {
		return nil, errors.Errorf("method %q is not a valid token", method)
	}

	headers := parseHeaderLines(headerLines)

	body, err := readRequestBody(r, headers)
	if err != nil {
		return nil, errors.Wrap(err, "reading request body")
	}

	req := message.NewRequest(method, target, headers, body)
	req.Version = version
	return req, nil
}

// ParseResponse reads one HTTP/1.1 response off r, the client-side
// counterpart of ParseRequest.
func ParseResponse(r *ioutil.UntilReader) (*message.Response, error) {
	raw, err := r.ReadUntil(headerBoundary)
	if err != nil {
		return nil, errors.Wrap(err, "reading response headers")
	}

	startLine, headerLines := splitHeaderBlock(raw)

	parts := strings.SplitN(startLine, " ", 3)
	if len(parts) < 2 {
		return nil, errors.Wrapf(ErrMalformedStartLine, "status line %q", startLine)
	}
	code, _ := strconv.Atoi(parts[1]) // non-integer code tolerated, kept as 0
	reason := ""
	if len(parts) == 3 {
		reason = parts[2]
	}

	headers := parseHeaderLines(headerLines)

	body, err := readResponseBody(r, code, headers)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}

	return &message.Response{
		Status:     code,
		Reason:     reason,
		Headers:    headers,
		Body:       body,
		StatusLine: startLine,
	}, nil
}

// splitHeaderBlock splits the bytes read up to and including the header
// boundary into the start line and the raw header lines.
func splitHeaderBlock(raw []byte) (startLine string, headerLines []string) {
	block := bytes.TrimSuffix(raw, headerBoundary)
	lines := strings.Split(string(block), "\r\n")
	if len(lines) == 0 {
		return "", nil
	}
	return lines[0], lines[1:]
}

func parseHeaderLines(lines []string) message.Headers {
	headers := message.NewHeaders()
	for _, line := range lines {
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			// A header line without ':' is dropped.
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" {
			continue
		}
		headers.Set(name, value)
	}
	return headers
}

// readRequestBody applies the body-framing decision of wire §4.2 for the
// server side: chunked, else Content-Length, else no body.
func readRequestBody(r *ioutil.UntilReader, headers message.Headers) ([]byte, error) {
	if headers.HasToken("Transfer-Encoding", "chunked") {
		return readAll(chunked.NewReader(r))
	}

	if n, ok := contentLength(headers); ok {
		return readExactly(r, n)
	}

	return []byte{}, nil
}

// readResponseBody applies the body-framing decision for the client side,
// including the status-code body suppression of §4.2 step 4 and the
// Connection: close / read-to-EOF fallback.
func readResponseBody(r *ioutil.UntilReader, status int, headers message.Headers) ([]byte, error) {
	if mustNotHaveBody(status) {
		return []byte{}, nil
	}

	if headers.HasToken("Transfer-Encoding", "chunked") {
		return readAll(chunked.NewReader(r))
	}

	if n, ok := contentLength(headers); ok {
		return readExactly(r, n)
	}

	if headers.HasToken("Connection", "close") {
		return readAll(r)
	}

	return []byte{}, nil
}

func mustNotHaveBody(status int) bool {
	if status >= 100 && status < 200 {
		return true
	}
	return status == 204 || status == 304
}

func contentLength(headers message.Headers) (uint64, bool) {
	v, ok := headers.Get("Content-Length")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func readExactly(r io.Reader, n uint64) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(ioutil.LimitReader(r, uint(n)), buf); err != nil {
		return nil, errors.Wrap(err, "short body read")
	}
	return buf, nil
}

func readAll(r io.Reader) ([]byte, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return buf, nil
}
