package wire

import (
	"bytes"
	"testing"

	"httpcore/internal/ioutil"
	"httpcore/message"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResponseInjectsContentLength(t *testing.T) {
	resp := message.NewResponse(message.StatusOK, message.NewHeaders(), []byte("hello"))

	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, resp, true))

	assert.Contains(t, buf.String(), "Content-Length: 5")
	assert.Contains(t, buf.String(), "Connection: keep-alive")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("hello")))
}

func TestWriteResponseRespectsHandlerSetConnection(t *testing.T) {
	headers := message.NewHeaders()
	headers.Set("Connection", "close")
	resp := message.NewResponse(message.StatusOK, headers, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, resp, true))
	assert.Contains(t, buf.String(), "Connection: close")
}

func TestWriteResponseChunkedFraming(t *testing.T) {
	headers := message.NewHeaders()
	headers.Set("Transfer-Encoding", "chunked")
	resp := message.NewResponse(message.StatusOK, headers, []byte("hello"))

	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, resp, true))

	assert.NotContains(t, buf.String(), "Content-Length")
	assert.Contains(t, buf.String(), "5\r\nhello\r\n0\r\n\r\n")
}

func TestWriteThenParseRoundTrip(t *testing.T) {
	headers := message.NewHeaders()
	headers.Set("X-Custom", "value")
	resp := message.NewResponse(message.StatusOK, headers, []byte("body bytes"))

	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, resp, false))

	parsed, err := ParseResponse(ioutil.NewUntilReader(&buf))
	require.NoError(t, err)

	assert.Equal(t, resp.Status, parsed.Status)
	assert.Equal(t, resp.Body, parsed.Body)
	v, ok := parsed.Header("X-Custom")
	assert.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestWriteRequestIncludesHostHeader(t *testing.T) {
	req := message.NewRequest("GET", "/a", message.NewHeaders(), nil)

	var buf bytes.Buffer
	require.NoError(t, WriteRequest(&buf, req, "example.com", 8080))

	assert.Contains(t, buf.String(), "Host: example.com:8080")
	assert.Contains(t, buf.String(), "GET /a HTTP/1.1\r\n")
}

func TestWriteRequestOmitsDefaultPort(t *testing.T) {
	req := message.NewRequest("GET", "/", message.NewHeaders(), nil)

	var buf bytes.Buffer
	require.NoError(t, WriteRequest(&buf, req, "example.com", 80))

	assert.Contains(t, buf.String(), "Host: example.com\r\n")
	assert.NotContains(t, buf.String(), "Host: example.com:80")
}
