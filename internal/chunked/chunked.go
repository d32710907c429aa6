// Package chunked implements HTTP/1.1 chunked transfer-coding, RFC 9112
// section 7.1: a sequence of length-prefixed chunks terminated by a
// zero-length chunk. Trailers are consumed and discarded; the core never
// surfaces them to callers.
package chunked

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"httpcore/internal/rule"

	"github.com/pkg/errors"
)

// Reader decodes a chunked body into a plain byte stream.
type Reader struct {
	br       *bufio.Reader
	remain   uint64 // bytes left in the current chunk
	inChunk  bool
	finished bool
}

var _ io.Reader = (*Reader)(nil)

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

func (cr *Reader) Read(p []byte) (int, error) {
	if cr.finished {
		return 0, io.EOF
	}

	if !cr.inChunk {
		size, err := cr.readChunkHeader()
		if err != nil {
			return 0, errors.Wrap(err, "reading chunk header")
		}

		if size == 0 {
			if err := cr.discardTrailers(); err != nil {
				return 0, errors.Wrap(err, "discarding trailers")
			}
			cr.finished = true
			return 0, io.EOF
		}

		cr.remain = size
		cr.inChunk = true
	}

	if uint64(len(p)) > cr.remain {
		p = p[:cr.remain]
	}

	n, err := cr.br.Read(p)
	if err != nil {
		return n, errors.Wrap(err, "reading chunk data")
	}
	cr.remain -= uint64(n)

	if cr.remain == 0 {
		cr.inChunk = false
		if err := cr.expectCRLF(); err != nil {
			return n, errors.Wrap(err, "reading chunk trailer CRLF")
		}
	}

	return n, nil
}

func (cr *Reader) readChunkHeader() (uint64, error) {
	line, err := cr.readLine()
	if err != nil {
		return 0, err
	}

	// Chunk extensions (after ';') are accepted but ignored; the core
	// doesn't implement any extension semantics.
	sizeRaw, _, _ := bytes.Cut(line, []byte{';'})
	sizeRaw = bytes.TrimFunc(sizeRaw, func(r rune) bool { return rule.IsWhitespace(byte(r)) })

	size, err := strconv.ParseUint(string(sizeRaw), 16, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed chunk size %q", sizeRaw)
	}

	return size, nil
}

func (cr *Reader) discardTrailers() error {
	for {
		line, err := cr.readLine()
		if err != nil {
			return err
		}
		if len(line) == 0 {
			return nil
		}
	}
}

func (cr *Reader) expectCRLF() error {
	buf := make([]byte, 2)
	if _, err := io.ReadFull(cr.br, buf); err != nil {
		return err
	}
	if !bytes.Equal(buf, rule.CRLF) {
		return errors.Errorf("expected CRLF after chunk data, got %q", buf)
	}
	return nil
}

func (cr *Reader) readLine() ([]byte, error) {
	line, err := cr.br.ReadBytes(rule.LF)
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	line = bytes.TrimSuffix(line, []byte{rule.LF})
	line = bytes.TrimSuffix(line, []byte{rule.CR})
	return line, nil
}

// Writer encodes a plain byte stream into chunked transfer-coding,
// emitting one chunk per Write call and the terminal 0-length chunk on
// Close.
type Writer struct {
	w io.Writer
}

var _ io.WriteCloser = (*Writer)(nil)

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (cw *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	header := strconv.FormatUint(uint64(len(p)), 16) + "\r\n"
	if _, err := io.WriteString(cw.w, header); err != nil {
		return 0, errors.Wrap(err, "writing chunk header")
	}

	n, err := cw.w.Write(p)
	if err != nil {
		return n, errors.Wrap(err, "writing chunk data")
	}

	if _, err := cw.w.Write(rule.CRLF); err != nil {
		return n, errors.Wrap(err, "writing chunk trailer CRLF")
	}

	return n, nil
}

func (cw *Writer) Close() error {
	if _, err := io.WriteString(cw.w, "0\r\n\r\n"); err != nil {
		return errors.Wrap(err, "writing terminal chunk")
	}
	return nil
}

// WriteChunks splits body into size-byte chunks and writes them followed
// by the terminal chunk, as used by the server's chunked response path
// (8 KiB chunks per the wire spec).
func WriteChunks(w io.Writer, body []byte, size int) error {
	cw := NewWriter(w)
	for len(body) > 0 {
		n := size
		if n > len(body) {
			n = len(body)
		}
		if _, err := cw.Write(body[:n]); err != nil {
			return err
		}
		body = body[n:]
	}
	return cw.Close()
}
