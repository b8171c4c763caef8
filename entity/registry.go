package entity

import "github.com/ancillary-agi/syncengine/tick"

// Registry is the fixed-capacity synced-entity table plus its free-id
// queue. Ids are recycled through a buffered channel acting as a FIFO.
type Registry struct {
	layouts  *LayoutTable
	table    []*Entity  // index = id - FirstID
	versions []Version  // last-used version per id, survives recycling
	freeIDs  chan ID
}

// NewRegistry builds a registry over the given (already registered,
// ideally frozen) layout table.
func NewRegistry(layouts *LayoutTable) *Registry {
	r := &Registry{
		layouts:  layouts,
		table:    make([]*Entity, MaxSyncedEntityCount),
		versions: make([]Version, MaxSyncedEntityCount),
		freeIDs:  make(chan ID, MaxSyncedEntityCount),
	}
	for id := FirstID; id <= MaxSyncedID; id++ {
		r.freeIDs <- id
	}
	return r
}

func (r *Registry) index(id ID) int {
	return int(id - FirstID)
}

// Add allocates a new synced entity of classID.
//
// Panics if classID was never registered: this is a fatal programmer
// error, not a runtime condition — the caller's operation aborts (recover
// if you must survive a misconfigured class table).
//
// Returns (nil, false) on id exhaustion, which is non-fatal: the caller
// decides what to do.
func (r *Registry) Add(classID ClassID, owner PlayerID, role Role) (*Entity, bool) {
	if _, ok := r.layouts.Lookup(classID); !ok {
		panic(&ErrUnregisteredClass{ClassID: classID})
	}

	var id ID
	select {
	case id = <-r.freeIDs:
	default:
		return nil, false
	}

	idx := r.index(id)
	r.versions[idx]++
	e := newEntity(classID, id, r.versions[idx], owner, role, KindSynced)
	r.table[idx] = e
	return e, true
}

// Get returns the live entity for id, if any.
func (r *Registry) Get(id ID) (*Entity, bool) {
	if id < FirstID || id > MaxSyncedID {
		return nil, false
	}
	e := r.table[r.index(id)]
	return e, e != nil
}

// MarkDestroyed flags an entity as destroyed as of tick at. It remains in
// the table (and its id stays out of the free queue) until Recycle is
// called once the state serializer's retention rules (RPC retention and
// the destruction-record rule) are satisfied.
func (r *Registry) MarkDestroyed(id ID, at tick.Tick) bool {
	e, ok := r.Get(id)
	if !ok || e.Destroyed {
		return false
	}
	e.Destroyed = true
	e.DestroyedAt = at
	if e.ParentID != InvalidID {
		if parent, ok := r.Get(e.ParentID); ok {
			delete(parent.children, id)
		}
		e.ParentID = InvalidID
	}
	return true
}

// Recycle releases id back to the free queue. Callers MUST have already
// confirmed no player can still reference it — the registry itself does
// not track player ack state.
func (r *Registry) Recycle(id ID) {
	idx := r.index(id)
	if r.table[idx] == nil {
		return
	}
	r.table[idx] = nil
	r.freeIDs <- id
}

// SetParent reattaches child under parent (or detaches if parent is
// InvalidID), keeping the child-set view and parent pointer consistent,
// and cascades OwnerID to the child and all of its descendants via a
// depth-first walk over the child-set view (Design Notes: Ownership
// cascade).
func (r *Registry) SetParent(childID, parentID ID) bool {
	child, ok := r.Get(childID)
	if !ok {
		return false
	}

	if child.ParentID != InvalidID {
		if oldParent, ok := r.Get(child.ParentID); ok {
			delete(oldParent.children, childID)
		}
	}

	child.ParentID = InvalidID
	newOwner := child.OwnerID

	if parentID != InvalidID {
		parent, ok := r.Get(parentID)
		if !ok {
			return false
		}
		parent.children[childID] = struct{}{}
		child.ParentID = parentID
		newOwner = parent.OwnerID
	}

	r.propagateOwner(child, newOwner)
	return true
}

// propagateOwner sets e.OwnerID and recurses into its children.
func (r *Registry) propagateOwner(e *Entity, owner PlayerID) {
	e.OwnerID = owner
	for childID := range e.children {
		if child, ok := r.Get(childID); ok {
			r.propagateOwner(child, owner)
		}
	}
}

// Layouts exposes the registry's field descriptor table.
func (r *Registry) Layouts() *LayoutTable {
	return r.layouts
}
