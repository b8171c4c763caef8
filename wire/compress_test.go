package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte{1, 2, 3, 4}, 256)
	compressed, err := CompressBaseline(src)
	require.NoError(t, err)

	out, err := DecompressBaseline(compressed, len(src))
	require.NoError(t, err)
	require.Equal(t, src, out)
}

func TestCompressIncompressibleFallback(t *testing.T) {
	src := []byte{1}
	compressed, err := CompressBaseline(src)
	require.NoError(t, err)

	out, err := DecompressBaseline(compressed, len(src))
	require.NoError(t, err)
	require.Equal(t, src, out)
}
