package input

import (
	"testing"

	"github.com/ancillary-agi/syncengine/player"
	"github.com/ancillary-agi/syncengine/tick"
	"github.com/ancillary-agi/syncengine/wire"
	"github.com/stretchr/testify/require"
)

const testInputSize = 4

func encodeInputPacket(t *testing.T, firstTick tick.Tick, frames [][]byte, headers []wire.InputPacketHeader) []byte {
	t.Helper()
	size := 2
	var prev []byte
	for i, f := range frames {
		size += wire.InputPacketHeaderSize
		if i == 0 {
			size += len(f)
		} else {
			size += len(EncodeDelta(prev, f))
		}
		prev = f
	}
	buf := make([]byte, size)
	c := wire.NewCursor(buf)
	c.PutUint16(uint16(firstTick))
	prev = nil
	for i, f := range frames {
		headers[i].Encode(c)
		if i == 0 {
			c.PutBytes(f)
		} else {
			c.PutBytes(EncodeDelta(prev, f))
		}
		prev = f
	}
	return buf
}

func newTestPlayer(serverTick tick.Tick) *player.Player {
	p, _ := player.NewTable().Add(nil)
	p.CurrentServerTick = serverTick
	p.State = player.WaitingForFirstInput
	return p
}

func TestDecodeRoundTripsFramesInOrder(t *testing.T) {
	d := NewDecoder(testInputSize, nil)
	p := newTestPlayer(20)

	frames := [][]byte{{1, 2, 3, 4}, {1, 2, 3, 5}, {9, 2, 3, 5}}
	headers := []wire.InputPacketHeader{
		{StateA: 10, StateB: 10, LerpMsec: 0.5},
		{StateA: 10, StateB: 11, LerpMsec: 0.5},
		{StateA: 11, StateB: 12, LerpMsec: 0.5},
	}
	pkt := encodeInputPacket(t, 100, frames, headers)
	d.DecodeClientInput(pkt, p, p.ID, "test")

	require.Equal(t, 3, p.AvailableInput.Len())
	for i, want := range frames {
		f, ok := p.AvailableInput.ExtractMin()
		require.True(t, ok)
		require.Equal(t, tick.Tick(100+i), f.Tick)
		require.Equal(t, want, f.Data)
	}
}

func TestRejectsFutureTick(t *testing.T) {
	d := NewDecoder(testInputSize, nil)
	p := newTestPlayer(5)
	frames := [][]byte{{1, 2, 3, 4}}
	headers := []wire.InputPacketHeader{{StateA: 100, StateB: 100}}
	pkt := encodeInputPacket(t, 1, frames, headers)
	d.DecodeClientInput(pkt, p, p.ID, "test")
	require.Equal(t, 0, p.AvailableInput.Len())
}

func TestDuplicateFrameDropped(t *testing.T) {
	d := NewDecoder(testInputSize, nil)
	p := newTestPlayer(20)
	p.State = player.Active
	p.LastReceivedTick = 50

	frames := [][]byte{{1, 2, 3, 4}}
	headers := []wire.InputPacketHeader{{StateA: 10, StateB: 10}}
	pkt := encodeInputPacket(t, 50, frames, headers) // tick 50, not newer than lastReceivedTick
	d.DecodeClientInput(pkt, p, p.ID, "test")
	require.Equal(t, 0, p.AvailableInput.Len())
}

func TestUndersizedPacketRejected(t *testing.T) {
	d := NewDecoder(testInputSize, nil)
	p := newTestPlayer(20)
	d.DecodeClientInput([]byte{1, 2}, p, p.ID, "test")
	require.Equal(t, 0, p.AvailableInput.Len())
}

func TestClientRequestFIFO(t *testing.T) {
	d := NewDecoder(testInputSize, nil)
	d.DecodeClientRequest([]byte{1, 2, 3})
	d.DecodeClientRequest([]byte{4, 5})
	got := d.DrainRequests()
	require.Equal(t, [][]byte{{1, 2, 3}, {4, 5}}, got)
	require.Empty(t, d.DrainRequests())
}
