package wire

import "github.com/pierrec/lz4/v4"

// CompressBaseline LZ4-block-compresses src into a freshly sized buffer.
// This file owns no codec logic of its own, only the call site and buffer
// sizing (CompressBlockBound).
func CompressBaseline(src []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Incompressible (or too small for a match); LZ4 block mode
		// allows this, the decompressor needs the original length either
		// way (carried separately in BaselineDataHeader.OriginalLength).
		return src, nil
	}
	return dst[:n], nil
}

// DecompressBaseline inverts CompressBaseline given the known original
// length (BaselineDataHeader.OriginalLength). Returns src verbatim when it
// already has the original length (the CompressBaseline incompressible
// fallback above).
func DecompressBaseline(src []byte, originalLength int) ([]byte, error) {
	if len(src) == originalLength {
		return src, nil
	}
	dst := make([]byte, originalLength)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}
