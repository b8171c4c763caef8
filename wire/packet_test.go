package wire

import (
	"testing"

	"github.com/ancillary-agi/syncengine/tick"
	"github.com/stretchr/testify/require"
)

func TestBaselineDataHeaderRoundTrip(t *testing.T) {
	h := BaselineDataHeader{UserHeader: 7, PacketType: PacketBaselineSync, OriginalLength: 4096, Tick: 12345, PlayerID: 3, SendRate: 2}
	buf := make([]byte, BaselineDataHeaderSize)
	h.Encode(NewCursor(buf))
	got := DecodeBaselineDataHeader(NewCursor(buf))
	require.Equal(t, h, got)
}

func TestDiffPartHeaderRoundTrip(t *testing.T) {
	h := DiffPartHeader{UserHeader: 7, PacketType: PacketDiffSync, Part: 5, Tick: tick.Tick(60000)}
	buf := make([]byte, DiffPartHeaderSize)
	h.Encode(NewCursor(buf))
	got := DecodeDiffPartHeader(NewCursor(buf))
	require.Equal(t, h, got)
}

func TestLastPartDataRoundTrip(t *testing.T) {
	d := LastPartData{LastProcessedTick: 100, LastReceivedTick: 105, MTU: 1200}
	buf := make([]byte, LastPartDataSize)
	d.Encode(NewCursor(buf))
	got := DecodeLastPartData(NewCursor(buf))
	require.Equal(t, d, got)
}

func TestInputPacketHeaderRoundTrip(t *testing.T) {
	h := InputPacketHeader{StateA: 10, StateB: 11, LerpMsec: 0.75}
	buf := make([]byte, InputPacketHeaderSize)
	h.Encode(NewCursor(buf))
	got := DecodeInputPacketHeader(NewCursor(buf))
	require.Equal(t, h.StateA, got.StateA)
	require.Equal(t, h.StateB, got.StateB)
	require.InDelta(t, h.LerpMsec, got.LerpMsec, 0.0001)
}

func TestEntityRecordHeaderRoundTrip(t *testing.T) {
	h := EntityRecordHeader{ClassID: 9, EntityID: 4000, Version: 250}
	buf := make([]byte, EntityRecordHeaderSize)
	h.Encode(NewCursor(buf))
	got := DecodeEntityRecordHeader(NewCursor(buf))
	require.Equal(t, h, got)
}
