package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURLDefaultsPort(t *testing.T) {
	u, err := parseURL("http://example.com/a/b")
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host)
	assert.Equal(t, 80, u.Port)
	assert.Equal(t, "/a/b", u.Path)
}

func TestParseURLExplicitPort(t *testing.T) {
	u, err := parseURL("http://example.com:8080/a")
	require.NoError(t, err)
	assert.Equal(t, 8080, u.Port)
}

func TestParseURLNoPath(t *testing.T) {
	u, err := parseURL("http://example.com")
	require.NoError(t, err)
	assert.Equal(t, "/", u.Path)
}

func TestParseURLRejectsMissingScheme(t *testing.T) {
	_, err := parseURL("example.com/a")
	assert.Error(t, err)
}

func TestResolveLocationAbsolute(t *testing.T) {
	current, _ := parseURL("http://a.com/x/y")
	next, err := resolveLocation(current, "http://b.com/z")
	require.NoError(t, err)
	assert.Equal(t, "b.com", next.Host)
	assert.Equal(t, "/z", next.Path)
}

func TestResolveLocationProtocolRelative(t *testing.T) {
	current, _ := parseURL("https://a.com/x")
	next, err := resolveLocation(current, "//b.com/z")
	require.NoError(t, err)
	assert.Equal(t, "https", next.Scheme)
	assert.Equal(t, "b.com", next.Host)
}

func TestResolveLocationRootRelative(t *testing.T) {
	current, _ := parseURL("http://a.com/x/y")
	next, err := resolveLocation(current, "/static/index.html")
	require.NoError(t, err)
	assert.Equal(t, "a.com", next.Host)
	assert.Equal(t, "/static/index.html", next.Path)
}

func TestResolveLocationRelative(t *testing.T) {
	current, _ := parseURL("http://a.com/dir/page.html")
	next, err := resolveLocation(current, "other.html")
	require.NoError(t, err)
	assert.Equal(t, "/dir/other.html", next.Path)
}

func TestResolveLocationRelativeNoDirectory(t *testing.T) {
	current, _ := parseURL("http://a.com/page.html")
	next, err := resolveLocation(current, "other.html")
	require.NoError(t, err)
	assert.Equal(t, "/other.html", next.Path)
}
