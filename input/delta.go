package input

import "fmt"

// Input blocks are delta-encoded against the previously decoded block with
// a per-byte changed bitmap followed by the changed bytes themselves. This
// differs from the state serializer's synced-field diff
// (state.Table.MakeDiff), which writes a field index before each changed
// field value: input has no field descriptor table of its own, so it is
// diffed byte by byte.

// MinDeltaSize is the minimum number of bytes a delta-encoded block must
// consume: the presence bitmap, even if nothing changed.
func MinDeltaSize(inputSize int) int {
	return bitmapBytes(inputSize)
}

func bitmapBytes(n int) int {
	return (n + 7) / 8
}

// EncodeDelta produces a delta block decodable against prev via DecodeDelta.
func EncodeDelta(prev, cur []byte) []byte {
	bn := bitmapBytes(len(cur))
	out := make([]byte, bn, bn+len(cur))
	var changed []byte
	for i, b := range cur {
		if b != prev[i] {
			out[i/8] |= 1 << uint(i%8)
			changed = append(changed, b)
		}
	}
	return append(out, changed...)
}

// DecodeDelta reconstructs a block from prev plus the delta bytes at the
// start of buf, returning the decoded block and how many bytes of buf it
// consumed.
func DecodeDelta(prev []byte, buf []byte) (decoded []byte, consumed int, err error) {
	bn := bitmapBytes(len(prev))
	if len(buf) < bn {
		return nil, 0, fmt.Errorf("input: delta block truncated: need %d bytes, have %d", bn, len(buf))
	}
	bitmap := buf[:bn]
	out := make([]byte, len(prev))
	copy(out, prev)
	pos := bn
	for i := range prev {
		if bitmap[i/8]&(1<<uint(i%8)) == 0 {
			continue
		}
		if pos >= len(buf) {
			return nil, 0, fmt.Errorf("input: delta block truncated mid-payload at byte %d", i)
		}
		out[i] = buf[pos]
		pos++
	}
	return out, pos, nil
}
