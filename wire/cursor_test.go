package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	c := NewCursor(buf)
	c.PutUint8(0xAB)
	c.PutUint16(0x1234)
	c.PutUint32(0xDEADBEEF)
	c.PutFloat32(3.5)
	c.PutBytes([]byte{1, 2, 3})

	written := c.Written()
	require.Equal(t, 1+2+4+4+3, len(written))

	r := NewCursor(written)
	require.Equal(t, uint8(0xAB), r.ReadUint8())
	require.Equal(t, uint16(0x1234), r.ReadUint16())
	require.Equal(t, uint32(0xDEADBEEF), r.ReadUint32())
	require.InDelta(t, float32(3.5), r.ReadFloat32(), 0.0001)
	require.Equal(t, []byte{1, 2, 3}, r.ReadBytes(3))
	require.Equal(t, 0, r.Remaining())
}
