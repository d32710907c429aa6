package ioutil

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// UntilReader wraps a reader so bytes consumed past a delimiter by
// [UntilReader.ReadUntil] are not lost: they stay buffered and are served
// first to subsequent [UntilReader.Read] calls. This is how the header
// parser hands its surplus bytes to the body reader without a second,
// coordinated read of the underlying stream.
type UntilReader struct {
	r   io.Reader
	buf *bytes.Buffer
}

func NewUntilReader(r io.Reader) *UntilReader {
	return &UntilReader{r: r, buf: bytes.NewBuffer(nil)}
}

func (ur *UntilReader) Read(p []byte) (n int, err error) {
	if ur.buf.Len() > 0 {
		n, err = ur.buf.Read(p)
		if err == io.EOF {
			err = nil
		}
		return n, err
	}
	return ur.r.Read(p)
}

var ErrZeroLenDelim = errors.New("delim has zero length")

// ReadUntil reads until delim is seen and returns everything read,
// including delim. Bytes read past delim remain buffered for Read.
func (ur *UntilReader) ReadUntil(delim []byte) ([]byte, error) {
	if len(delim) == 0 {
		return nil, ErrZeroLenDelim
	}

	lastByte := delim[len(delim)-1]
	temp := make([]byte, 1024)

	r := ur.r
	var pending *bytes.Reader
	if ur.buf.Len() > 0 {
		pending = bytes.NewReader(bytes.Clone(ur.buf.Bytes()))
		r = io.MultiReader(pending, ur.r)
		ur.buf.Reset()
	}

	for {
		n, err := r.Read(temp)
		ur.buf.Write(temp[:n])

		for seek := temp[:n]; ; {
			idx := bytes.IndexByte(seek, lastByte)
			if idx < 0 {
				break
			}

			foundIdx := ur.buf.Len() - len(seek) + idx
			buffered := ur.buf.Bytes()[:foundIdx+1]
			if bytes.HasSuffix(buffered, delim) {
				buffered = bytes.Clone(buffered)
				rest := bytes.Clone(seek[idx+1:])
				ur.buf.Reset()
				ur.buf.Write(rest)
				if pending != nil {
					// Previously buffered bytes not yet reached by this call.
					ur.buf.ReadFrom(pending)
				}
				return buffered, nil
			}

			seek = seek[idx+1:]
		}

		if err != nil {
			b := bytes.Clone(ur.buf.Bytes())
			ur.buf.Reset()
			return b, err
		}
	}
}
