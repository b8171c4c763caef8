package engine

import (
	"github.com/ancillary-agi/syncengine/entity"
	"github.com/ancillary-agi/syncengine/player"
	"github.com/ancillary-agi/syncengine/state"
	"github.com/ancillary-agi/syncengine/tick"
	"github.com/ancillary-agi/syncengine/transport"
	"github.com/ancillary-agi/syncengine/wire"
	"github.com/sirupsen/logrus"
)

// tickDiffLE reports whether a is at or before b, wrap-aware.
func tickDiffLE(a, b tick.Tick) bool {
	return tick.Diff(a, b) <= 0
}

// minimalAckTick returns the oldest acknowledged tick across every active
// (non-baseline-requesting) player, i.e. the floor below which no player's
// diff could still need a snapshot. A player still in RequestBaseline has
// no meaningful StateATick yet and is excluded from the floor. With no
// such players, executedTick is returned, which lets destroyed entities be
// recycled immediately once everyone is gone.
func (e *Engine) minimalAckTick(executedTick tick.Tick) tick.Tick {
	minimal := executedTick
	first := true
	for _, p := range e.players.Active() {
		if p.State == player.RequestBaseline {
			continue
		}
		if first || tick.Diff(p.StateATick, minimal) < 0 {
			minimal = p.StateATick
			first = false
		}
	}
	return minimal
}

// buildSnapshots runs the per-tick snapshot pass over every active player:
// a RequestBaseline player gets a fresh compressed baseline and moves to
// WaitingForFirstInput; an Active (or WaitingForFirstInputProcess) player
// gets a fragmented diff stream built against its last acknowledged tick,
// falling back to a forced rebaseline on fragment overflow.
func (e *Engine) buildSnapshots() {
	executedTick := e.currentTick - 1
	minimal := e.minimalAckTick(executedTick)

	for _, p := range e.players.Active() {
		switch p.State {
		case player.RequestBaseline:
			e.sendBaseline(p, executedTick)
		case player.Active, player.WaitingForFirstInputProcess:
			e.sendDiff(p, executedTick, minimal)
		}
	}

	for id := entity.FirstID; id <= entity.MaxSyncedID; id++ {
		e.states.PruneBefore(id, minimal)
		e.states.RetireRPCsBefore(id, minimal)
	}
}

// sendBaseline serializes every live entity visible to p as of at into one
// LZ4-compressed, reliably-delivered baseline packet and transitions p to
// WaitingForFirstInput.
func (e *Engine) sendBaseline(p *player.Player, at tick.Tick) {
	buf := make([]byte, 65536)
	cursor := wire.NewCursor(buf)

	for id := entity.FirstID; id <= entity.MaxSyncedID; id++ {
		ent, ok := e.registry.Get(id)
		if !ok || ent.Destroyed {
			continue
		}
		startPos := cursor.Pos
		if !e.states.MakeBaseline(id, p.ID, at, cursor) {
			cursor.Pos = startPos
		}
	}
	raw := cursor.Written()

	compressed, err := wire.CompressBaseline(raw)
	if err != nil {
		e.log.WithFields(logrus.Fields{"player_id": p.ID, "error": err}).Error("engine: baseline compression failed")
		return
	}

	header := wire.BaselineDataHeader{
		UserHeader:     e.cfg.EngineHeaderByte,
		PacketType:     wire.PacketBaselineSync,
		OriginalLength: uint32(len(raw)),
		Tick:           at,
		PlayerID:       uint8(p.ID),
		SendRate:       uint8(e.cfg.SendRate),
	}
	out := make([]byte, wire.BaselineDataHeaderSize+len(compressed))
	outCursor := wire.NewCursor(out)
	header.Encode(outCursor)
	outCursor.PutBytes(compressed)

	if err := e.cfg.Sender.Send(p.Peer, out, transport.ReliableOrdered); err != nil {
		e.log.WithFields(logrus.Fields{"player_id": p.ID, "error": err}).Warn("engine: baseline send failed")
		return
	}
	e.cfg.Metrics.AddSent(len(out))

	p.StateATick = at
	p.StateBTick = at
	p.State = player.WaitingForFirstInput
}

// sendDiff builds p's fragmented diff stream against its last acknowledged
// tick (p.StateATick), forcing a rebaseline if the stream would need more
// fragments than cfg.MaxParts allows.
func (e *Engine) sendDiff(p *player.Player, currentTick, minimal tick.Tick) {
	mtu := e.cfg.Sender.MaxSinglePacketSize(transport.Unreliable)
	partBudget := mtu - wire.DiffPartHeaderSize - wire.LastPartDataSize

	part := uint8(0)
	partBuf := make([]byte, partBudget)
	partCursor := wire.NewCursor(partBuf)

	flush := func(last bool) bool {
		if partCursor.Pos == 0 && !last {
			return true
		}
		packetType := wire.PacketDiffSync
		if last {
			packetType = wire.PacketDiffSyncLast
		}
		header := wire.DiffPartHeader{
			UserHeader: e.cfg.EngineHeaderByte,
			PacketType: packetType,
			Part:       part,
			Tick:       currentTick,
		}
		trailer := 0
		if last {
			trailer = wire.LastPartDataSize
		}
		out := make([]byte, wire.DiffPartHeaderSize+partCursor.Pos+trailer)
		outCursor := wire.NewCursor(out)
		header.Encode(outCursor)
		outCursor.PutBytes(partCursor.Written())
		if last {
			wire.LastPartData{
				LastProcessedTick: p.LastProcessedTick,
				LastReceivedTick:  p.LastReceivedTick,
				MTU:               uint16(mtu),
			}.Encode(outCursor)
		}
		if err := e.cfg.Sender.Send(p.Peer, out, transport.Unreliable); err != nil {
			e.log.WithFields(logrus.Fields{"player_id": p.ID, "error": err}).Warn("engine: diff send failed")
			return false
		}
		e.cfg.Metrics.AddSent(len(out))
		part++
		partCursor = wire.NewCursor(partBuf)
		return true
	}

	for id := entity.FirstID; id <= entity.MaxSyncedID; id++ {
		if !e.states.IsLive(id) {
			continue
		}
		maxSize := e.states.GetMaximumSize(id, currentTick)
		if maxSize == 0 {
			continue
		}
		if partCursor.Remaining() < maxSize {
			if int(part)+1 >= int(e.cfg.MaxParts) {
				e.forceRebaseline(p)
				return
			}
			if !flush(false) {
				return
			}
		}

		startPos := partCursor.Pos
		if e.states.MakeDiff(id, p.ID, currentTick, minimal, p.StateATick, partCursor) == state.NotChanged {
			partCursor.Pos = startPos
		}
	}

	if !flush(true) {
		return
	}

	p.StateATick = p.StateBTick
	p.StateBTick = currentTick
}

// forceRebaseline sends p back through RequestBaseline when its diff
// stream would overflow cfg.MaxParts fragments. Not an error condition:
// a slow or newly-reconnected player legitimately needs this.
func (e *Engine) forceRebaseline(p *player.Player) {
	p.State = player.RequestBaseline
	e.cfg.Metrics.IncRebaseline()
	e.log.WithFields(logrus.Fields{"player_id": p.ID}).Info("engine: diff stream exceeded max parts, forcing rebaseline")
}
