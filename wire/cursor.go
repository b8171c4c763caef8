// Package wire holds the engine's packet layout: header structs, packet
// type constants, a flat byte cursor for append-only encoding/decoding, and
// the LZ4 wrapper used to compress baseline bodies. All multi-byte integers
// are little-endian, a fixed and portable choice independent of the host's
// native order (see DESIGN.md, Open Questions).
package wire

import "encoding/binary"

// Cursor is an append-only (for encoding) or sequential-read (for decoding)
// view over a fixed byte buffer, used in place of an io.Writer since the
// engine always writes into a pre-sized, reused scratch buffer.
type Cursor struct {
	Buf []byte
	Pos int
}

// NewCursor wraps buf for writing/reading starting at position 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{Buf: buf}
}

// Remaining returns the number of unused bytes in the buffer.
func (c *Cursor) Remaining() int {
	return len(c.Buf) - c.Pos
}

// Written returns the slice of the buffer written so far.
func (c *Cursor) Written() []byte {
	return c.Buf[:c.Pos]
}

func (c *Cursor) PutUint8(v uint8) {
	c.Buf[c.Pos] = v
	c.Pos++
}

func (c *Cursor) PutUint16(v uint16) {
	binary.LittleEndian.PutUint16(c.Buf[c.Pos:], v)
	c.Pos += 2
}

func (c *Cursor) PutUint32(v uint32) {
	binary.LittleEndian.PutUint32(c.Buf[c.Pos:], v)
	c.Pos += 4
}

func (c *Cursor) PutFloat32(v float32) {
	c.PutUint32(float32bits(v))
}

func (c *Cursor) PutBytes(b []byte) {
	n := copy(c.Buf[c.Pos:], b)
	c.Pos += n
}

func (c *Cursor) ReadUint8() uint8 {
	v := c.Buf[c.Pos]
	c.Pos++
	return v
}

func (c *Cursor) ReadUint16() uint16 {
	v := binary.LittleEndian.Uint16(c.Buf[c.Pos:])
	c.Pos += 2
	return v
}

func (c *Cursor) ReadUint32() uint32 {
	v := binary.LittleEndian.Uint32(c.Buf[c.Pos:])
	c.Pos += 4
	return v
}

func (c *Cursor) ReadFloat32() float32 {
	return float32frombits(c.ReadUint32())
}

func (c *Cursor) ReadBytes(n int) []byte {
	b := c.Buf[c.Pos : c.Pos+n]
	c.Pos += n
	return b
}
