package source

import (
	"fmt"
	"io"

	"github.com/kbyando/cinema-pipeline/errs"
	"github.com/kbyando/cinema-pipeline/frame"
	"github.com/kbyando/cinema-pipeline/internal/pool"
)

// FrameReader reads successive fixed-size master frames from a byte stream.
// It reuses a single pooled buffer across calls to Next so that a pass over
// thousands of frames does not allocate per frame.
type FrameReader struct {
	r   io.Reader
	buf *pool.ByteBuffer
}

// NewFrameReader wraps r, reading frame.MasterFrameLen-byte frames from it.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r, buf: pool.GetBlobBuffer()}
}

// Next reads the next master frame. It returns io.EOF once the stream ends
// cleanly on a frame boundary; a trailing partial frame is errs.ErrShortRead.
// The returned slice is only valid until the next call to Next or Close.
func (fr *FrameReader) Next() ([]byte, error) {
	fr.buf.Reset()
	fr.buf.ExtendOrGrow(frame.MasterFrameLen)

	n, err := io.ReadFull(fr.r, fr.buf.Bytes())
	switch {
	case err == io.EOF:
		return nil, io.EOF
	case err == io.ErrUnexpectedEOF:
		return nil, fmt.Errorf("source: short frame read (%d of %d bytes): %w", n, frame.MasterFrameLen, errs.ErrShortRead)
	case err != nil:
		return nil, err
	}

	return fr.buf.Bytes(), nil
}

// Close releases the reader's pooled buffer. It does not close the
// underlying io.Reader.
func (fr *FrameReader) Close() error {
	if fr.buf != nil {
		pool.PutBlobBuffer(fr.buf)
		fr.buf = nil
	}

	return nil
}
