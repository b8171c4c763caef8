// Package state implements the per-entity replication history (the state
// serializer) and the per-entity RPC queue/pool.
package state

import (
	"fmt"

	"github.com/ancillary-agi/syncengine/entity"
	"github.com/ancillary-agi/syncengine/tick"
	"github.com/ancillary-agi/syncengine/wire"
)

// Result is MakeDiff's outcome.
type Result int

const (
	NotChanged Result = iota
	Done
	DoneAndDestroy
)

// ErrSnapshotUnavailable names the condition of asking for a tick outside
// the retained [minimalTick, currentTick] window. No function in this
// package returns it: At reports that case through its boolean result, and
// MakeDiff writes a full record or nothing instead.
var ErrSnapshotUnavailable = fmt.Errorf("state: snapshot not available")

// serializer is one entity id's replication history. Always allocated, one
// per id slot, for the table's lifetime.
type serializer struct {
	layout      *entity.ClassLayout
	classID     entity.ClassID
	version     entity.Version
	owner       entity.PlayerID
	createdAt   tick.Tick
	history     map[tick.Tick][]byte
	destroyed   bool
	destroyedAt tick.Tick
	rpcs        []*RemoteCallPacket
	live        bool
}

// Table owns one serializer per synced entity id slot plus the shared RPC
// pool.
type Table struct {
	layouts     *entity.LayoutTable
	serializers []*serializer // index = id - entity.FirstID
	pool        *Pool
}

// NewTable allocates every serializer slot up front.
func NewTable(layouts *entity.LayoutTable) *Table {
	t := &Table{
		layouts:     layouts,
		serializers: make([]*serializer, entity.MaxSyncedEntityCount),
		pool:        NewPool(),
	}
	for i := range t.serializers {
		t.serializers[i] = &serializer{}
	}
	return t
}

func (t *Table) slot(id entity.ID) *serializer {
	return t.serializers[id-entity.FirstID]
}

// Reset (re)initializes the serializer for id when an entity is created (or
// an id is reused), returning any previously queued RPCs to the pool.
func (t *Table) Reset(id entity.ID, classID entity.ClassID, version entity.Version, owner entity.PlayerID, createdAt tick.Tick, initial []byte) {
	s := t.slot(id)
	for _, pkt := range s.rpcs {
		t.pool.Put(pkt)
	}
	layout, _ := t.layouts.Lookup(classID)
	snap := make([]byte, len(initial))
	copy(snap, initial)
	*s = serializer{
		layout:    layout,
		classID:   classID,
		version:   version,
		owner:     owner,
		createdAt: createdAt,
		history:   map[tick.Tick][]byte{createdAt: snap},
		rpcs:      s.rpcs[:0],
		live:      true,
	}
}

// WriteHistory commits the current field block as the snapshot for tick t.
func (t *Table) WriteHistory(id entity.ID, t2 tick.Tick, current []byte) {
	s := t.slot(id)
	if !s.live {
		return
	}
	snap := make([]byte, len(current))
	copy(snap, current)
	s.history[t2] = snap
}

// PruneBefore discards snapshots older than minimalTick, keeping
// [minimalTick, currentTick] retained.
func (t *Table) PruneBefore(id entity.ID, minimalTick tick.Tick) {
	s := t.slot(id)
	if !s.live {
		return
	}
	for tk := range s.history {
		if tick.Diff(tk, minimalTick) < 0 {
			delete(s.history, tk)
		}
	}
}

// At returns the retained snapshot for tick t, if available.
func (t *Table) At(id entity.ID, t2 tick.Tick) ([]byte, bool) {
	s := t.slot(id)
	snap, ok := s.history[t2]
	return snap, ok
}

// MarkDestroyed records the destruction tick on the serializer (kept in
// sync with entity.Registry.MarkDestroyed by the caller).
func (t *Table) MarkDestroyed(id entity.ID, at tick.Tick) {
	s := t.slot(id)
	s.destroyed = true
	s.destroyedAt = at
}

// QueueRPC appends pkt to id's pending RPC FIFO.
func (t *Table) QueueRPC(id entity.ID, pkt *RemoteCallPacket) {
	s := t.slot(id)
	s.rpcs = append(s.rpcs, pkt)
}

// Pool exposes the shared RPC packet pool.
func (t *Table) Pool() *Pool {
	return t.pool
}

// RetireRPCsBefore returns to the pool every RPC on id whose tick is at or
// before floorTick (every active player's stateATick has advanced past
// it), compacting the FIFO in place.
func (t *Table) RetireRPCsBefore(id entity.ID, floorTick tick.Tick) {
	s := t.slot(id)
	kept := s.rpcs[:0]
	for _, pkt := range s.rpcs {
		if tick.Diff(pkt.Tick, floorTick) <= 0 {
			t.pool.Put(pkt)
			continue
		}
		kept = append(kept, pkt)
	}
	s.rpcs = kept
}

// GetMaximumSize upper-bounds the bytes id can write for tick t: a full
// entity record or field diff (each field value plus its 2-byte index), a
// destruction record if the entity is destroyed, plus every queued RPC's
// wire size.
func (t *Table) GetMaximumSize(id entity.ID, _ tick.Tick) int {
	s := t.slot(id)
	if !s.live || s.layout == nil {
		return 0
	}
	size := wire.EntityRecordHeaderSize + s.layout.BlockSize + 2*len(s.layout.Fields)
	if s.destroyed {
		size += wire.EntityRecordHeaderSize
	}
	for _, pkt := range s.rpcs {
		size += pkt.WireSize()
	}
	return size
}

// IsLive reports whether id currently has an allocated, non-recycled
// serializer.
func (t *Table) IsLive(id entity.ID) bool {
	return t.slot(id).live
}

// Release marks the serializer slot free (called once the entity's id is
// recycled by entity.Registry.Recycle).
func (t *Table) Release(id entity.ID) {
	s := t.slot(id)
	for _, pkt := range s.rpcs {
		t.pool.Put(pkt)
	}
	s.live = false
	s.history = nil
	s.rpcs = nil
}

// writeFullRecord appends an EntityRecordHeader followed by every
// non-owner-only-filtered field's current value.
func writeFullRecord(c *wire.Cursor, id entity.ID, s *serializer, snap []byte, playerID entity.PlayerID) {
	wire.EntityRecordHeader{
		ClassID:  uint16(s.classID),
		EntityID: uint16(id),
		Version:  uint8(s.version),
	}.Encode(c)

	for _, f := range s.layout.Fields {
		if f.OwnerOnly && playerID != s.owner {
			continue
		}
		c.PutBytes(snap[f.Offset : int(f.Offset)+int(f.Width)])
	}
}

// MakeBaseline emits a full, player-filtered snapshot of id into c. Returns
// false if the entity has no retained snapshot for tick (should not happen
// for a live, non-future tick).
func (t *Table) MakeBaseline(id entity.ID, playerID entity.PlayerID, at tick.Tick, c *wire.Cursor) bool {
	s := t.slot(id)
	if !s.live {
		return false
	}
	snap, ok := s.history[at]
	if !ok {
		return false
	}
	writeFullRecord(c, id, s, snap, playerID)
	return true
}

// MakeDiff emits one entity's changed-field diff (or full record, or
// destruction marker) into c relative to a player's last-acked tick.
func (t *Table) MakeDiff(id entity.ID, playerID entity.PlayerID, currentTick, minimalTick, playerAckTick tick.Tick, c *wire.Cursor) Result {
	s := t.slot(id)
	if !s.live {
		return NotChanged
	}

	wrote := false

	if tick.Diff(s.createdAt, playerAckTick) > 0 {
		if snap, ok := s.history[currentTick]; ok {
			writeFullRecord(c, id, s, snap, playerID)
			wrote = true
		}
	} else {
		curSnap, curOK := s.history[currentTick]
		ackSnap, ackOK := s.history[playerAckTick]
		if curOK && ackOK {
			for idx, f := range s.layout.Fields {
				if f.OwnerOnly && playerID != s.owner {
					continue
				}
				a := ackSnap[f.Offset : int(f.Offset)+int(f.Width)]
				b := curSnap[f.Offset : int(f.Offset)+int(f.Width)]
				if !bytesEqual(a, b) {
					c.PutUint16(uint16(idx))
					c.PutBytes(b)
					wrote = true
				}
			}
		} else if curOK && !ackOK {
			// The player's ack fell out of our retention window; resync
			// with a full record rather than guessing at a diff.
			writeFullRecord(c, id, s, curSnap, playerID)
			wrote = true
		}
	}

	for _, pkt := range s.rpcs {
		if tick.Diff(pkt.Tick, playerAckTick) > 0 && tick.Diff(pkt.Tick, currentTick) <= 0 && pkt.ExecuteFlags.Visible(playerID, s.owner) {
			c.PutUint16(uint16(pkt.Tick))
			c.PutUint16(pkt.RPCID)
			c.PutUint8(uint8(pkt.ExecuteFlags))
			c.PutUint16(pkt.ElementSize)
			c.PutUint16(pkt.ElementCount)
			c.PutBytes(pkt.Data)
			wrote = true
		}
	}

	result := NotChanged
	if wrote {
		result = Done
	}

	if s.destroyed && tick.Diff(s.destroyedAt, currentTick) <= 0 && tick.Diff(s.destroyedAt, playerAckTick) > 0 {
		wire.EntityRecordHeader{ClassID: uint16(s.classID), EntityID: uint16(id), Version: uint8(s.version)}.Encode(c)
		result = Done
	}

	if s.destroyed && tick.Diff(s.destroyedAt, minimalTick) <= 0 {
		result = DoneAndDestroy
	}

	return result
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
