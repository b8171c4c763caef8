package engine

import (
	"github.com/ancillary-agi/syncengine/entity"
	"github.com/ancillary-agi/syncengine/player"
	"github.com/ancillary-agi/syncengine/tick"
)

// Update runs one logic tick: drains pending client requests, feeds each
// eligible player's next input frame to the configured InputReader, runs
// the configured UpdateHook over every Updateable entity, commits a history
// snapshot for every live entity through the configured SnapshotHook
// (LagCompensated is not consulted), recycles fully-acknowledged destroyed
// entities, and finally triggers a snapshot send on the configured cadence.
func (e *Engine) Update() {
	e.currentTick++

	for _, body := range e.decoder.DrainRequests() {
		if e.cfg.RequestReader != nil {
			e.cfg.RequestReader(body)
		}
	}

	for _, p := range e.players.Active() {
		e.processPlayerInput(p)
	}

	e.runEntityHooks()
	e.recycleAcknowledgedDestructions()

	if e.players.Count() > 0 && int(e.currentTick)%e.cfg.SendRate == 0 {
		e.buildSnapshots()
		e.cfg.Sender.TriggerUpdate()
	}
}

// processPlayerInput advances one player out of WaitingForFirstInputProcess
// into Active on its first frame, then dispatches at most one pending input
// frame per tick to the configured InputReader, in arrival-tick order.
func (e *Engine) processPlayerInput(p *player.Player) {
	if p.State != player.Active && p.State != player.WaitingForFirstInputProcess {
		return
	}

	frame, ok := p.AvailableInput.ExtractMin()
	if !ok {
		return
	}

	if p.State == player.WaitingForFirstInputProcess {
		p.State = player.Active
	}
	p.LastProcessedTick = frame.Tick
	p.StateATick = frame.Header.StateA
	p.StateBTick = frame.Header.StateB
	p.LerpTime = frame.Header.LerpMsec
	p.SimulatedServerTick = tick.Lerp(frame.Header.StateA, frame.Header.StateB-1, frame.Header.LerpMsec)

	if e.cfg.InputReader != nil {
		e.cfg.InputReader(p.ID, frame)
	}
	e.decoder.Pool().Put(frame.Data)
}

// runEntityHooks invokes the configured UpdateHook on every Updateable
// entity, then commits a fresh history snapshot for every live entity so
// the diff algorithm has a current-tick snapshot to compare against.
func (e *Engine) runEntityHooks() {
	var scratch []byte
	for id := entity.FirstID; id <= entity.MaxSyncedID; id++ {
		ent, ok := e.registry.Get(id)
		if !ok || ent.Destroyed {
			continue
		}
		if ent.Updateable && e.cfg.UpdateHook != nil {
			e.cfg.UpdateHook(id)
		}
		if e.cfg.SnapshotHook == nil {
			continue
		}
		layout, ok := e.registry.Layouts().Lookup(ent.ClassID)
		if !ok {
			continue
		}
		if cap(scratch) < layout.BlockSize {
			scratch = make([]byte, layout.BlockSize)
		}
		current := e.cfg.SnapshotHook(id, ent.ClassID, scratch[:layout.BlockSize])
		e.states.WriteHistory(id, e.currentTick, current)
	}
}

// recycleAcknowledgedDestructions frees the id and serializer slot of every
// destroyed entity once every active player's acknowledged tick has passed
// its destruction tick, i.e. once no player's next diff could still need to
// emit the destruction record.
func (e *Engine) recycleAcknowledgedDestructions() {
	minimal := e.minimalAckTick(e.currentTick - 1)

	for id := entity.FirstID; id <= entity.MaxSyncedID; id++ {
		ent, ok := e.registry.Get(id)
		if !ok || !ent.Destroyed {
			continue
		}
		if tickDiffLE(ent.DestroyedAt, minimal) {
			e.states.Release(id)
			e.registry.Recycle(id)
		}
	}
}
