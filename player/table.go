package player

import "github.com/ancillary-agi/syncengine/entity"

// Table is the fixed-capacity player slot table plus its compact
// active-players array.
type Table struct {
	byID    [entity.MaxPlayers + 1]*Player // index by PlayerID directly
	active  []*Player                      // compact, ArrayIndex == index here
	freeIDs chan entity.PlayerID
}

// NewTable builds an empty table with ids [1, MaxPlayers] available.
func NewTable() *Table {
	t := &Table{freeIDs: make(chan entity.PlayerID, entity.MaxPlayers)}
	for id := entity.PlayerID(1); int(id) <= entity.MaxPlayers; id++ {
		t.freeIDs <- id
	}
	return t
}

// Add draws a free id and appends a new player in RequestBaseline state.
// Returns (nil, false) when the table is full — non-fatal, the caller
// decides what to do.
func (t *Table) Add(peer any) (*Player, bool) {
	var id entity.PlayerID
	select {
	case id = <-t.freeIDs:
	default:
		return nil, false
	}
	p := newPlayer(id, peer)
	p.ArrayIndex = len(t.active)
	t.active = append(t.active, p)
	t.byID[id] = p
	return p, true
}

// Get looks up a player by id.
func (t *Table) Get(id entity.PlayerID) (*Player, bool) {
	if id == entity.ServerPlayerID || int(id) > entity.MaxPlayers {
		return nil, false
	}
	p := t.byID[id]
	return p, p != nil
}

// Remove swaps-with-last in the compact active array, fixes up the moved
// slot's ArrayIndex, nulls the id slot and returns the id to the free
// queue. Returns the removed player so the caller (engine.RemovePlayer)
// can run the owner-controller/pawn destroy cascade first.
func (t *Table) Remove(id entity.PlayerID) (*Player, bool) {
	p, ok := t.Get(id)
	if !ok {
		return nil, false
	}

	last := len(t.active) - 1
	idx := p.ArrayIndex
	if idx != last {
		t.active[idx] = t.active[last]
		t.active[idx].ArrayIndex = idx
	}
	t.active[last] = nil
	t.active = t.active[:last]

	t.byID[id] = nil
	t.freeIDs <- id
	return p, true
}

// Active returns the compact slice of currently connected players, in
// active-index order. Callers must not retain or mutate the slice.
func (t *Table) Active() []*Player {
	return t.active
}

// Count returns the number of currently connected players.
func (t *Table) Count() int {
	return len(t.active)
}
