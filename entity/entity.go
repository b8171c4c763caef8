package entity

import "github.com/ancillary-agi/syncengine/tick"

// Entity is the identity and graph record for one synced (or local) entity.
// The byte-level field snapshot history lives in the state package, keyed
// by Entity.ID — kept separate so the entity graph can be walked without
// touching replication history.
type Entity struct {
	Kind      Kind
	Role      Role
	ClassID   ClassID
	ID        ID
	Version   Version
	OwnerID   PlayerID
	ParentID  ID // InvalidID if no parent
	Destroyed bool
	DestroyedAt tick.Tick

	// Updateable and LagCompensated are supplemental per-entity markers.
	// Every live entity gets a fresh history snapshot committed each
	// logic tick regardless of these flags; Updateable additionally runs
	// the user Update() hook before the snapshot is taken. LagCompensated
	// is stored on the record but no code in this module reads it: its
	// snapshots are retained and pruned exactly like any other entity's.
	Updateable     bool
	LagCompensated bool

	children map[ID]struct{} // view only; not an owning reference
}

// newEntity constructs an Entity record in its initial (live) state.
func newEntity(classID ClassID, id ID, version Version, owner PlayerID, role Role, kind Kind) *Entity {
	return &Entity{
		Kind:     kind,
		Role:     role,
		ClassID:  classID,
		ID:       id,
		Version:  version,
		OwnerID:  owner,
		ParentID: InvalidID,
		children: make(map[ID]struct{}),
	}
}

// Children returns the live child id set. Callers must not mutate the
// returned map.
func (e *Entity) Children() map[ID]struct{} {
	return e.children
}

// HasChild reports whether childID is a direct child of e.
func (e *Entity) HasChild(childID ID) bool {
	_, ok := e.children[childID]
	return ok
}
