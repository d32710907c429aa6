package wire

import (
	"bufio"
	"io"
	"strconv"

	"httpcore/internal/chunked"
	"httpcore/message"

	"github.com/pkg/errors"
)

const chunkSize = 8 * 1024

// WriteResponse serializes resp onto w (server side). If resp doesn't
// already carry a Connection header, one is injected from keepAlive.
// Framing is picked per §4.3: chunked if Transfer-Encoding: chunked is
// already set, else Content-Length is injected from the exact body length.
func WriteResponse(w io.Writer, resp *message.Response, keepAlive bool) error {
	if _, ok := resp.Headers.Get("Connection"); !ok {
		if keepAlive {
			resp.Headers.Set("Connection", "keep-alive")
		} else {
			resp.Headers.Set("Connection", "close")
		}
	}

	chunkedBody := resp.Headers.HasToken("Transfer-Encoding", "chunked")
	if !chunkedBody {
		if _, ok := resp.Headers.Get("Content-Length"); !ok {
			resp.Headers.Set("Content-Length", strconv.Itoa(len(resp.Body)))
		}
	}

	bw := bufio.NewWriter(w)

	if err := writeLine(bw, resp.StatusLineOrDefault()); err != nil {
		return errors.Wrap(err, "writing status line")
	}
	if err := writeHeaders(bw, resp.Headers); err != nil {
		return errors.Wrap(err, "writing response headers")
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing response headers")
	}

	if chunkedBody {
		if err := chunked.WriteChunks(w, resp.Body, chunkSize); err != nil {
			return errors.Wrap(err, "writing chunked response body")
		}
		return nil
	}

	if _, err := w.Write(resp.Body); err != nil {
		return errors.Wrap(err, "writing response body")
	}
	return nil
}

// WriteRequest serializes req onto w (client side), always including a
// Host header carrying host[:port] (port omitted when it's the scheme
// default, 80).
func WriteRequest(w io.Writer, req *message.Request, host string, port int) error {
	if _, ok := req.Headers.Get("Host"); !ok {
		hostHeader := host
		if port != 80 {
			hostHeader = host + ":" + strconv.Itoa(port)
		}
		req.Headers.Set("Host", hostHeader)
	}

	if _, ok := req.Headers.Get("Content-Length"); !ok {
		req.Headers.Set("Content-Length", strconv.Itoa(len(req.Body)))
	}

	bw := bufio.NewWriter(w)

	requestLine := req.Method + " " + req.Target + " " + req.Version
	if err := writeLine(bw, requestLine); err != nil {
		return errors.Wrap(err, "writing request line")
	}
	if err := writeHeaders(bw, req.Headers); err != nil {
		return errors.Wrap(err, "writing request headers")
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing request headers")
	}

	if _, err := w.Write(req.Body); err != nil {
		return errors.Wrap(err, "writing request body")
	}
	return nil
}

func writeHeaders(bw *bufio.Writer, headers message.Headers) error {
	for name, value := range headers.Fields() {
		if name == "" {
			continue
		}
		if err := writeLine(bw, name+": "+value); err != nil {
			return err
		}
	}
	return writeLine(bw, "")
}

func writeLine(bw *bufio.Writer, line string) error {
	if _, err := bw.WriteString(line); err != nil {
		return err
	}
	_, err := bw.WriteString("\r\n")
	return err
}
