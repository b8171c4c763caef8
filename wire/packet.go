package wire

import "github.com/ancillary-agi/syncengine/tick"

// Ingress packet types, read right after the one engine header byte.
const (
	PacketClientInput   uint8 = 1
	PacketClientRequest uint8 = 2
)

// Egress packet types, written right after the engine header byte.
const (
	PacketBaselineSync uint8 = 1
	PacketDiffSync     uint8 = 2
	PacketDiffSyncLast uint8 = 3
)

// BaselineDataHeader precedes the LZ4-compressed baseline body.
type BaselineDataHeader struct {
	UserHeader     byte
	PacketType     uint8
	OriginalLength uint32
	Tick           tick.Tick
	PlayerID       uint8
	SendRate       uint8
}

// Size is the on-wire size of a BaselineDataHeader.
const BaselineDataHeaderSize = 1 + 1 + 4 + 2 + 1 + 1

func (h BaselineDataHeader) Encode(c *Cursor) {
	c.PutUint8(h.UserHeader)
	c.PutUint8(h.PacketType)
	c.PutUint32(h.OriginalLength)
	c.PutUint16(uint16(h.Tick))
	c.PutUint8(h.PlayerID)
	c.PutUint8(h.SendRate)
}

func DecodeBaselineDataHeader(c *Cursor) BaselineDataHeader {
	return BaselineDataHeader{
		UserHeader:     c.ReadUint8(),
		PacketType:     c.ReadUint8(),
		OriginalLength: c.ReadUint32(),
		Tick:           tick.Tick(c.ReadUint16()),
		PlayerID:       c.ReadUint8(),
		SendRate:       c.ReadUint8(),
	}
}

// DiffPartHeader starts every DiffSync / DiffSyncLast packet.
type DiffPartHeader struct {
	UserHeader byte
	PacketType uint8
	Part       uint8
	Tick       tick.Tick
}

const DiffPartHeaderSize = 1 + 1 + 1 + 2

func (h DiffPartHeader) Encode(c *Cursor) {
	c.PutUint8(h.UserHeader)
	c.PutUint8(h.PacketType)
	c.PutUint8(h.Part)
	c.PutUint16(uint16(h.Tick))
}

func DecodeDiffPartHeader(c *Cursor) DiffPartHeader {
	return DiffPartHeader{
		UserHeader: c.ReadUint8(),
		PacketType: c.ReadUint8(),
		Part:       c.ReadUint8(),
		Tick:       tick.Tick(c.ReadUint16()),
	}
}

// LastPartData trails the final part of a player's diff stream.
type LastPartData struct {
	LastProcessedTick tick.Tick
	LastReceivedTick  tick.Tick
	MTU               uint16
}

const LastPartDataSize = 2 + 2 + 2

func (d LastPartData) Encode(c *Cursor) {
	c.PutUint16(uint16(d.LastProcessedTick))
	c.PutUint16(uint16(d.LastReceivedTick))
	c.PutUint16(d.MTU)
}

func DecodeLastPartData(c *Cursor) LastPartData {
	return LastPartData{
		LastProcessedTick: tick.Tick(c.ReadUint16()),
		LastReceivedTick:  tick.Tick(c.ReadUint16()),
		MTU:               c.ReadUint16(),
	}
}

// InputPacketHeader precedes every input frame's body in an ingress
// ClientInput packet.
type InputPacketHeader struct {
	StateA   tick.Tick
	StateB   tick.Tick
	LerpMsec float32
}

const InputPacketHeaderSize = 2 + 2 + 4

func (h InputPacketHeader) Encode(c *Cursor) {
	c.PutUint16(uint16(h.StateA))
	c.PutUint16(uint16(h.StateB))
	c.PutFloat32(h.LerpMsec)
}

func DecodeInputPacketHeader(c *Cursor) InputPacketHeader {
	return InputPacketHeader{
		StateA:   tick.Tick(c.ReadUint16()),
		StateB:   tick.Tick(c.ReadUint16()),
		LerpMsec: c.ReadFloat32(),
	}
}

// EntityRecordHeader precedes a full entity record in a baseline or a
// "created after ack" full-record diff entry.
type EntityRecordHeader struct {
	ClassID  uint16
	EntityID uint16
	Version  uint8
}

const EntityRecordHeaderSize = 2 + 2 + 1

func (h EntityRecordHeader) Encode(c *Cursor) {
	c.PutUint16(h.ClassID)
	c.PutUint16(h.EntityID)
	c.PutUint8(h.Version)
}

func DecodeEntityRecordHeader(c *Cursor) EntityRecordHeader {
	return EntityRecordHeader{
		ClassID:  c.ReadUint16(),
		EntityID: c.ReadUint16(),
		Version:  c.ReadUint8(),
	}
}
