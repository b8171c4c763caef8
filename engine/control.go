package engine

import (
	"github.com/ancillary-agi/syncengine/entity"
	"github.com/ancillary-agi/syncengine/player"
	"github.com/ancillary-agi/syncengine/wire"
	"github.com/sirupsen/logrus"
)

// AddPlayer registers a new connection, returning its RequestBaseline-state
// record. Returns (nil, false) if the player table is full.
func (e *Engine) AddPlayer(peer any) (*player.Player, bool) {
	p, ok := e.players.Add(peer)
	if !ok {
		return nil, false
	}
	e.cfg.Metrics.SetActivePlayers(e.players.Count())
	return p, true
}

// RemovePlayer disconnects playerID, first cascading a destroy through its
// owned controller and pawn entities (if any) so observers see them vanish
// in the same tick rather than lingering ownerless.
func (e *Engine) RemovePlayer(id entity.PlayerID) {
	p, ok := e.players.Get(id)
	if !ok {
		return
	}
	if p.PawnID != entity.InvalidID {
		e.RemoveEntity(p.PawnID)
	}
	if p.ControllerID != entity.InvalidID {
		e.RemoveEntity(p.ControllerID)
	}
	e.players.Remove(id)
	e.cfg.Metrics.SetActivePlayers(e.players.Count())
}

// AddEntity allocates a new plain synced entity of classID, owned by owner,
// with an initial field snapshot of initial (already laid out per the
// class's registered field descriptors).
func (e *Engine) AddEntity(classID entity.ClassID, owner entity.PlayerID, initial []byte) (*entity.Entity, bool) {
	return e.addEntity(classID, owner, entity.RoleNone, initial)
}

// AddController allocates a controller entity for a player and binds it to
// Player.ControllerID.
func (e *Engine) AddController(classID entity.ClassID, owner entity.PlayerID, initial []byte) (*entity.Entity, bool) {
	ent, ok := e.addEntity(classID, owner, entity.RoleController, initial)
	if !ok {
		return nil, false
	}
	if p, ok := e.players.Get(owner); ok {
		p.ControllerID = ent.ID
	}
	return ent, true
}

// AddPawn allocates a pawn entity for a player and binds it to
// Player.PawnID.
func (e *Engine) AddPawn(classID entity.ClassID, owner entity.PlayerID, initial []byte) (*entity.Entity, bool) {
	ent, ok := e.addEntity(classID, owner, entity.RolePawn, initial)
	if !ok {
		return nil, false
	}
	if p, ok := e.players.Get(owner); ok {
		p.PawnID = ent.ID
	}
	return ent, true
}

// AddSingleton allocates a singleton entity of classID. Returns (nil, false)
// if a live singleton of that class already exists.
func (e *Engine) AddSingleton(classID entity.ClassID, initial []byte) (*entity.Entity, bool) {
	if _, exists := e.singletons[classID]; exists {
		return nil, false
	}
	ent, ok := e.addEntity(classID, entity.ServerPlayerID, entity.RoleSingleton, initial)
	if !ok {
		return nil, false
	}
	e.singletons[classID] = ent.ID
	return ent, true
}

func (e *Engine) addEntity(classID entity.ClassID, owner entity.PlayerID, role entity.Role, initial []byte) (*entity.Entity, bool) {
	ent, ok := e.registry.Add(classID, owner, role)
	if !ok {
		return nil, false
	}
	e.states.Reset(ent.ID, classID, ent.Version, owner, e.currentTick, initial)
	e.cfg.Metrics.SetActiveEntities(e.countLiveEntities())
	return ent, true
}

// RemoveEntity marks id destroyed as of the current tick. The id and its
// serializer slot remain allocated until every active player's
// acknowledgement has passed destroyedAt, at which point the logic tick
// recycles it.
func (e *Engine) RemoveEntity(id entity.ID) {
	if !e.registry.MarkDestroyed(id, e.currentTick) {
		return
	}
	e.states.MarkDestroyed(id, e.currentTick)
	if ent, ok := e.registry.Get(id); ok && ent.Role == entity.RoleSingleton {
		delete(e.singletons, ent.ClassID)
	}
}

func (e *Engine) countLiveEntities() int {
	n := 0
	for id := entity.FirstID; id <= entity.MaxSyncedID; id++ {
		if e.states.IsLive(id) {
			n++
		}
	}
	return n
}

// HandleIngress decodes one datagram from playerID (arriving from
// remoteEndpoint, used only for log context), dispatching on the engine
// header byte (if configured) and packet type.
func (e *Engine) HandleIngress(data []byte, playerID entity.PlayerID, remoteEndpoint string) {
	e.cfg.Metrics.AddReceived(len(data))

	body := data
	if e.cfg.PeekHeaderByte {
		if len(body) < 1 {
			e.cfg.Metrics.IncMalformed()
			return
		}
		body = body[1:]
	}
	if len(body) < 1 {
		e.cfg.Metrics.IncMalformed()
		return
	}
	packetType := body[0]
	body = body[1:]

	switch packetType {
	case wire.PacketClientInput:
		p, ok := e.players.Get(playerID)
		if !ok {
			return
		}
		e.decoder.DecodeClientInput(body, p, playerID, remoteEndpoint)
	case wire.PacketClientRequest:
		e.decoder.DecodeClientRequest(body)
	default:
		e.log.WithFields(logrus.Fields{"player_id": playerID, "endpoint": remoteEndpoint, "type": packetType}).
			Warn("engine: unrecognized ingress packet type, dropping")
		e.cfg.Metrics.IncMalformed()
	}
}
