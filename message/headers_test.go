package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadersCaseInsensitiveAccess(t *testing.T) {
	h := NewHeaders()
	h.Set("Content-Type", "text/plain")

	for _, key := range []string{"Content-Type", "content-type", "CONTENT-TYPE"} {
		v, ok := h.Get(key)
		assert.True(t, ok, key)
		assert.Equal(t, "text/plain", v)
	}
}

func TestHeadersCanonicalCasingOnFields(t *testing.T) {
	h := NewHeaders()
	h.Set("x-request-id", "abc")

	fields := h.Fields()
	v, ok := fields["X-Request-Id"]
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestHeadersEmptyValuePreserved(t *testing.T) {
	h := NewHeaders()
	h.Set("X-Empty", "")

	v, ok := h.Get("X-Empty")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestHeadersHasToken(t *testing.T) {
	h := NewHeaders()
	h.Set("Connection", "keep-alive")
	assert.True(t, h.HasToken("Connection", "keep-alive"))
	assert.False(t, h.HasToken("Connection", "close"))

	h.Set("Transfer-Encoding", "chunked")
	assert.True(t, h.HasToken("transfer-encoding", "CHUNKED"))
}

func TestHeadersDel(t *testing.T) {
	h := NewHeaders()
	h.Set("X-Foo", "bar")
	h.Del("x-foo")

	_, ok := h.Get("X-Foo")
	assert.False(t, ok)
}
