package wire

import (
	"bytes"
	"testing"

	"httpcore/internal/ioutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestBasic(t *testing.T) {
	raw := "POST /login HTTP/1.1\r\nHost: localhost:8080\r\nContent-Length: 5\r\n\r\nhello"
	req, err := ParseRequest(ioutil.NewUntilReader(bytes.NewBufferString(raw)))
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/login", req.Target)
	assert.Equal(t, "HTTP/1.1", req.Version)
	assert.Equal(t, "hello", string(req.Body))

	host, ok := req.Header("host")
	assert.True(t, ok)
	assert.Equal(t, "localhost:8080", host)
}

func TestParseRequestMalformedStartLine(t *testing.T) {
	raw := "GET\r\nHost: x\r\n\r\n"
	_, err := ParseRequest(ioutil.NewUntilReader(bytes.NewBufferString(raw)))
	assert.Error(t, err)
}

func TestParseRequestInvalidMethodToken(t *testing.T) {
	raw := "GE(T) / HTTP/1.1\r\nHost: x\r\n\r\n"
	_, err := ParseRequest(ioutil.NewUntilReader(bytes.NewBufferString(raw)))
	assert.Error(t, err)
}

func TestParseRequestDropsHeaderLineWithoutColon(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nmalformed-header-line\r\nHost: x\r\n\r\n"
	req, err := ParseRequest(ioutil.NewUntilReader(bytes.NewBufferString(raw)))
	require.NoError(t, err)
	host, ok := req.Header("Host")
	assert.True(t, ok)
	assert.Equal(t, "x", host)
}

func TestParseRequestNoBodyWhenNoFramingHeader(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: x\r\n\r\n"
	req, err := ParseRequest(ioutil.NewUntilReader(bytes.NewBufferString(raw)))
	require.NoError(t, err)
	assert.Equal(t, []byte{}, req.Body)
}

func TestParseRequestChunkedPreferredOverContentLength(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 999\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n"
	req, err := ParseRequest(ioutil.NewUntilReader(bytes.NewBufferString(raw)))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(req.Body))
}

func TestParseRequestKeepAliveLeftoverBytesPrefixNextParse(t *testing.T) {
	raw := "GET /a HTTP/1.1\r\nHost: x\r\nContent-Length: 0\r\n\r\n" +
		"GET /b HTTP/1.1\r\nHost: x\r\nContent-Length: 0\r\n\r\n"
	r := ioutil.NewUntilReader(bytes.NewBufferString(raw))

	first, err := ParseRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "/a", first.Target)

	second, err := ParseRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "/b", second.Target)
}

func TestParseResponseBasic(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nhi"
	resp, err := ParseResponse(ioutil.NewUntilReader(bytes.NewBufferString(raw)))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "OK", resp.Reason)
	assert.Equal(t, "hi", string(resp.Body))
}

func TestParseResponseNonIntegerCodeTolerated(t *testing.T) {
	raw := "HTTP/1.1 abc\r\n\r\n"
	resp, err := ParseResponse(ioutil.NewUntilReader(bytes.NewBufferString(raw)))
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Status)
}

func TestParseResponseStatusCodesNeverHaveBody(t *testing.T) {
	for _, code := range []string{"100 Continue", "204 No Content", "304 Not Modified"} {
		raw := "HTTP/1.1 " + code + "\r\nContent-Length: 5\r\n\r\nhello"
		resp, err := ParseResponse(ioutil.NewUntilReader(bytes.NewBufferString(raw)))
		require.NoError(t, err)
		assert.Equal(t, []byte{}, resp.Body, code)
	}
}

func TestParseResponseReadsUntilEOFOnConnectionClose(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nConnection: close\r\n\r\nall the rest of the bytes"
	resp, err := ParseResponse(ioutil.NewUntilReader(bytes.NewBufferString(raw)))
	require.NoError(t, err)
	assert.Equal(t, "all the rest of the bytes", string(resp.Body))
}

func TestParseResponseChunked(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n7\r\n, world\r\n0\r\n\r\n"
	resp, err := ParseResponse(ioutil.NewUntilReader(bytes.NewBufferString(raw)))
	require.NoError(t, err)
	assert.Equal(t, "hello, world", string(resp.Body))
}

func TestParseRequestEmptyHeaderValuePreserved(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: x\r\nX-Empty:\r\nContent-Length: 0\r\n\r\n"
	req, err := ParseRequest(ioutil.NewUntilReader(bytes.NewBufferString(raw)))
	require.NoError(t, err)
	v, ok := req.Header("X-Empty")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}
