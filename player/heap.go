package player

import (
	"container/heap"

	"github.com/ancillary-agi/syncengine/tick"
	"github.com/ancillary-agi/syncengine/wire"
)

// InputFrame is one decoded per-tick client input.
type InputFrame struct {
	Tick   tick.Tick
	Header wire.InputPacketHeader
	Data   []byte
}

// BufferPool is the subset of input.Pool the heap needs to return an
// evicted frame's buffer without player importing input (which imports
// player for InputFrame — this interface breaks that cycle).
type BufferPool interface {
	Put(buf []byte)
}

// inputHeap is a container/heap min-heap of *InputFrame ordered by
// wrap-aware tick.Diff, never raw uint16 comparison.
type inputHeap []*InputFrame

func (h inputHeap) Len() int { return len(h) }
func (h inputHeap) Less(i, j int) bool {
	return tick.Diff(h[i].Tick, h[j].Tick) < 0
}
func (h inputHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *inputHeap) Push(x any) {
	*h = append(*h, x.(*InputFrame))
}

func (h *inputHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// InputHeap is a bounded min-heap of pending input frames for one player.
type InputHeap struct {
	h   inputHeap
	cap int
}

// MaxStoredInputs bounds a player's pending input heap.
const MaxStoredInputs = 30

// NewInputHeap builds an empty heap bounded to MaxStoredInputs.
func NewInputHeap() *InputHeap {
	return &InputHeap{cap: MaxStoredInputs}
}

// Len returns the number of pending frames.
func (b *InputHeap) Len() int { return b.h.Len() }

// Insert adds frame, evicting the oldest-tick frame to pool first if the
// heap is already at capacity.
func (b *InputHeap) Insert(frame *InputFrame, pool BufferPool) {
	if b.h.Len() >= b.cap {
		evicted := heap.Pop(&b.h).(*InputFrame)
		if pool != nil && evicted.Data != nil {
			pool.Put(evicted.Data)
		}
	}
	heap.Push(&b.h, frame)
}

// ExtractMin removes and returns the oldest-tick frame, or (nil, false) if
// empty.
func (b *InputHeap) ExtractMin() (*InputFrame, bool) {
	if b.h.Len() == 0 {
		return nil, false
	}
	return heap.Pop(&b.h).(*InputFrame), true
}

// Peek returns the oldest-tick frame without removing it.
func (b *InputHeap) Peek() (*InputFrame, bool) {
	if b.h.Len() == 0 {
		return nil, false
	}
	return b.h[0], true
}
