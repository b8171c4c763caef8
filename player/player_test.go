package player

import (
	"testing"

	"github.com/ancillary-agi/syncengine/entity"
	"github.com/ancillary-agi/syncengine/tick"
	"github.com/stretchr/testify/require"
)

type fakePool struct{ put [][]byte }

func (p *fakePool) Put(b []byte) { p.put = append(p.put, b) }

func TestAddRemoveSwapWithLast(t *testing.T) {
	tbl := NewTable()
	a, ok := tbl.Add(nil)
	require.True(t, ok)
	b, ok := tbl.Add(nil)
	require.True(t, ok)
	c, ok := tbl.Add(nil)
	require.True(t, ok)
	require.Equal(t, 0, a.ArrayIndex)
	require.Equal(t, 2, c.ArrayIndex)

	_, ok = tbl.Remove(a.ID)
	require.True(t, ok)
	require.Equal(t, 2, tbl.Count())
	// c was swapped into a's old slot
	require.Equal(t, 0, c.ArrayIndex)
	require.Same(t, c, tbl.Active()[0])
	require.Same(t, b, tbl.Active()[1])
}

func TestPlayerExhaustionIsNonFatal(t *testing.T) {
	tbl := NewTable()
	for i := 0; i < entity.MaxPlayers; i++ {
		_, ok := tbl.Add(nil)
		require.True(t, ok)
	}
	_, ok := tbl.Add(nil)
	require.False(t, ok)
}

func TestHeapBoundAndEviction(t *testing.T) {
	h := NewInputHeap()
	pool := &fakePool{}
	for i := 0; i < MaxStoredInputs; i++ {
		h.Insert(&InputFrame{Tick: tick.Tick(i), Data: []byte{byte(i)}}, pool)
	}
	require.Equal(t, MaxStoredInputs, h.Len())

	h.Insert(&InputFrame{Tick: tick.Tick(1000), Data: []byte{0xFF}}, pool)
	require.Equal(t, MaxStoredInputs, h.Len())
	require.Len(t, pool.put, 1)
	require.Equal(t, []byte{0}, pool.put[0]) // tick 0 was the minimum, evicted

	min, ok := h.Peek()
	require.True(t, ok)
	require.Equal(t, tick.Tick(1), min.Tick)
}

func TestExtractMinOrdering(t *testing.T) {
	h := NewInputHeap()
	ticks := []tick.Tick{12, 8, 10, 9, 13, 11}
	for _, tk := range ticks {
		h.Insert(&InputFrame{Tick: tk}, nil)
	}
	var got []tick.Tick
	for h.Len() > 0 {
		f, _ := h.ExtractMin()
		got = append(got, f.Tick)
	}
	require.Equal(t, []tick.Tick{8, 9, 10, 11, 12, 13}, got)
}
