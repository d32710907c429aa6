package client

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// parsedURL is the small subset of a URL the client needs: scheme, host,
// port and request path. Full RFC 3986 resolution (userinfo, query
// fragments beyond raw passthrough, IPv6 zone IDs, percent-decoding of
// the authority) is out of scope for the core client.
type parsedURL struct {
	Scheme string
	Host   string
	Port   int
	Path   string
}

func (u parsedURL) Origin() string {
	return u.Host + ":" + strconv.Itoa(u.Port)
}

func (u parsedURL) String() string {
	s := u.Scheme + "://" + u.Host
	if !u.isDefaultPort() {
		s += ":" + strconv.Itoa(u.Port)
	}
	return s + u.Path
}

func (u parsedURL) isDefaultPort() bool {
	return (u.Scheme == "http" && u.Port == 80) || (u.Scheme == "https" && u.Port == 443)
}

// parseURL accepts "scheme://host[:port][/path]" with scheme restricted to
// http/https, since TLS termination is out of scope and https is only
// parsed so Location headers that happen to use it don't hard-fail.
func parseURL(raw string) (parsedURL, error) {
	schemeIdx := strings.Index(raw, "://")
	if schemeIdx < 0 {
		return parsedURL{}, errors.Errorf("missing scheme in url %q", raw)
	}
	scheme := raw[:schemeIdx]
	if scheme != "http" && scheme != "https" {
		return parsedURL{}, errors.Errorf("unsupported scheme %q", scheme)
	}

	rest := raw[schemeIdx+3:]

	path := "/"
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		path = rest[slash:]
		rest = rest[:slash]
	}
	if rest == "" {
		return parsedURL{}, errors.Errorf("missing host in url %q", raw)
	}

	host := rest
	port := defaultPortFor(scheme)
	if colon := strings.LastIndexByte(rest, ':'); colon >= 0 {
		host = rest[:colon]
		p, err := strconv.Atoi(rest[colon+1:])
		if err != nil {
			return parsedURL{}, errors.Wrapf(err, "parsing port in url %q", raw)
		}
		port = p
	}

	return parsedURL{Scheme: scheme, Host: host, Port: port, Path: path}, nil
}

func defaultPortFor(scheme string) int {
	if scheme == "https" {
		return 443
	}
	return 80
}

// resolveLocation applies the Location-resolution rules: an absolute URL
// passes through unchanged, "//host/path" inherits the current scheme,
// "/path" is root-relative to the current origin, and anything else is
// relative to the current path's directory.
func resolveLocation(current parsedURL, location string) (parsedURL, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return parseURL(location)
	}
	if strings.HasPrefix(location, "//") {
		return parseURL(current.Scheme + ":" + location)
	}
	if strings.HasPrefix(location, "/") {
		return parsedURL{Scheme: current.Scheme, Host: current.Host, Port: current.Port, Path: location}, nil
	}

	dir := current.Path
	if idx := strings.LastIndexByte(dir, '/'); idx >= 0 {
		dir = dir[:idx+1]
	} else {
		dir = "/"
	}
	return parsedURL{Scheme: current.Scheme, Host: current.Host, Port: current.Port, Path: dir + location}, nil
}
