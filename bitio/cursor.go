// Package bitio provides a positional byte cursor, plus the Unpack10 helper
// for 10-bit packed values, for decoding the big-endian, bit-packed
// telemetry records produced by CINEMA instruments.
//
// Unlike endian.EndianEngine, which reads whole words at a fixed offset,
// Cursor tracks its own position and advances it as fields are consumed,
// which matches how the instrument decoders walk a packet's data field
// byte-by-byte. Cursor has no sub-byte reads; bit fields are masked out of
// the bytes it returns.
package bitio

import (
	"fmt"

	"github.com/kbyando/cinema-pipeline/endian"
	"github.com/kbyando/cinema-pipeline/errs"
)

// Cursor reads big-endian integer fields from a byte slice, advancing an
// internal offset after each read. It never copies the underlying slice.
type Cursor struct {
	buf    []byte
	offset int
	engine endian.EndianEngine
}

// NewCursor returns a Cursor over buf using big-endian field encoding, the
// byte order used throughout the CINEMA telemetry formats.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf, engine: endian.GetBigEndianEngine()}
}

// Len returns the number of bytes remaining unread.
func (c *Cursor) Len() int {
	return len(c.buf) - c.offset
}

// Offset returns the current read offset.
func (c *Cursor) Offset() int {
	return c.offset
}

// Seek moves the cursor to an absolute offset.
func (c *Cursor) Seek(offset int) error {
	if offset < 0 || offset > len(c.buf) {
		return fmt.Errorf("bitio: seek %d out of range [0,%d]: %w", offset, len(c.buf), errs.ErrShortRead)
	}
	c.offset = offset

	return nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	return c.Seek(c.offset + n)
}

// Bytes returns the next n bytes without interpreting them and advances the
// cursor past them. The returned slice aliases the cursor's backing array.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || c.offset+n > len(c.buf) {
		return nil, fmt.Errorf("bitio: read %d bytes at offset %d (len %d): %w", n, c.offset, len(c.buf), errs.ErrShortRead)
	}
	b := c.buf[c.offset : c.offset+n]
	c.offset += n

	return b, nil
}

// Byte reads a single byte.
func (c *Cursor) Byte() (byte, error) {
	b, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// Uint16 reads a 2-byte big-endian unsigned integer.
func (c *Cursor) Uint16() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint16(b), nil
}

// Uint24 reads a 3-byte big-endian unsigned integer into the low 24 bits of
// a uint32, the width used for HSK magnetometer and packet-counter fields.
func (c *Cursor) Uint24() (uint32, error) {
	b, err := c.Bytes(3)
	if err != nil {
		return 0, err
	}

	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// Uint32 reads a 4-byte big-endian unsigned integer.
func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint32(b), nil
}
