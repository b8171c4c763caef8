package state

import (
	"github.com/ancillary-agi/syncengine/entity"
	"github.com/ancillary-agi/syncengine/tick"
)

// Audience selects which players see an RPC in their diff stream.
type Audience uint8

const (
	AudienceOwnerOnly Audience = iota
	AudienceOthers
	AudienceAll
)

// Delivery selects the RPC's transport reliability.
type Delivery uint8

const (
	DeliveryUnreliable Delivery = iota
	DeliveryReliable
)

// ExecuteFlags packs Delivery and Audience into one wire byte.
type ExecuteFlags uint8

const audienceMask = 0x0F

// MakeExecuteFlags packs delivery and audience into one wire byte.
func MakeExecuteFlags(d Delivery, a Audience) ExecuteFlags {
	f := ExecuteFlags(a) & audienceMask
	if d == DeliveryReliable {
		f |= 0x10
	}
	return f
}

func (f ExecuteFlags) Delivery() Delivery {
	if f&0x10 != 0 {
		return DeliveryReliable
	}
	return DeliveryUnreliable
}

func (f ExecuteFlags) Audience() Audience {
	return Audience(f & audienceMask)
}

// Visible reports whether an RPC with this audience should be sent to
// playerID, given the entity's owner.
func (f ExecuteFlags) Visible(playerID, ownerID entity.PlayerID) bool {
	switch f.Audience() {
	case AudienceAll:
		return true
	case AudienceOwnerOnly:
		return playerID == ownerID
	case AudienceOthers:
		return playerID != ownerID
	default:
		return false
	}
}

// RemoteCallPacket is one queued RPC invocation attached to an entity.
type RemoteCallPacket struct {
	Tick         tick.Tick
	RPCID        uint16
	ExecuteFlags ExecuteFlags
	ElementSize  uint16
	ElementCount uint16
	Data         []byte
}

// PayloadSize returns ElementSize*ElementCount, the total data length.
func (p *RemoteCallPacket) PayloadSize() int {
	return int(p.ElementSize) * int(p.ElementCount)
}

// WireSize is the RPC's footprint when appended to a diff stream: a small
// fixed header plus its payload.
const rpcHeaderSize = 2 + 2 + 1 + 2 + 2 // tick + rpcId + flags + elemSize + elemCount

func (p *RemoteCallPacket) WireSize() int {
	return rpcHeaderSize + p.PayloadSize()
}

// Pool is an explicit free-list of RemoteCallPacket scratch objects reused
// across ticks: no finalizers, explicit acquire/release at well-defined
// points (RPC queued; RPC retired past retention).
type Pool struct {
	free []*RemoteCallPacket
}

// NewPool builds an empty pool; it grows lazily on demand.
func NewPool() *Pool {
	return &Pool{}
}

// Get returns a pooled packet or allocates a new one.
func (p *Pool) Get() *RemoteCallPacket {
	n := len(p.free)
	if n == 0 {
		return &RemoteCallPacket{}
	}
	pkt := p.free[n-1]
	p.free = p.free[:n-1]
	return pkt
}

// Put returns pkt to the pool, per the scoped-acquisition discipline:
// callers return it on every normal exit path.
func (p *Pool) Put(pkt *RemoteCallPacket) {
	pkt.Data = pkt.Data[:0]
	p.free = append(p.free, pkt)
}
