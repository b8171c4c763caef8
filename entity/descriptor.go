package entity

import "fmt"

// NotifyHook is a change-notify callback resolved by index through
// FieldDescriptor.HookIndex. The engine stores hooks in ClassLayout.Hooks
// but never invokes them itself. The source reflection system
// resolves these from attributed members; this engine takes an explicit
// table instead (see SPEC_FULL.md, Design Notes: Reflection-driven field
// layout).
type NotifyHook func(id ID, fieldIndex int)

// NoHook is the sentinel value for a FieldDescriptor with no change-notify
// callback attached.
const NoHook = -1

// FieldDescriptor describes one synchronized field within a class's sync
// block. Order within a ClassLayout is stable and defines wire layout.
type FieldDescriptor struct {
	Offset         uint16 // byte offset within the entity's sync block
	Width          uint8  // byte width on the wire
	HookIndex      int    // index into ClassLayout.Hooks, or NoHook
	Interpolatable bool   // client may lerp between two snapshots of this field
	RollbackTracked bool  // field participates in lag-compensated rollback
	OwnerOnly      bool   // omitted from baselines/diffs sent to non-owners
}

// ClassLayout is the registered, ordered field list for one entity class.
type ClassLayout struct {
	ClassID   ClassID
	BlockSize int // size in bytes of the class's sync block
	Fields    []FieldDescriptor
	Hooks     []NotifyHook
}

// fieldEnd returns the byte offset one past the field's last byte.
func (f FieldDescriptor) fieldEnd() int {
	return int(f.Offset) + int(f.Width)
}

// ErrUnregisteredClass is the error kind for creating an entity whose class
// was never registered. This is a fatal condition: callers that want to
// survive it must recover a panic from Registry.Add, the engine never
// papers over it with a zero value.
type ErrUnregisteredClass struct {
	ClassID ClassID
}

func (e *ErrUnregisteredClass) Error() string {
	return fmt.Sprintf("entity: class %d was never registered", e.ClassID)
}

// LayoutTable holds every registered ClassLayout. It is built once at
// startup and then frozen: entity classes cannot be registered dynamically
// after that point.
type LayoutTable struct {
	layouts map[ClassID]*ClassLayout
	frozen  bool
}

// NewLayoutTable constructs an empty, unfrozen layout table.
func NewLayoutTable() *LayoutTable {
	return &LayoutTable{layouts: make(map[ClassID]*ClassLayout)}
}

// Register adds a class layout. Fields must be given in wire order; they
// are not required to be sorted by offset, but offsets must not overlap.
// Register panics if called after Freeze or if fields overlap — both are
// startup-time programmer errors, not runtime conditions.
func (t *LayoutTable) Register(layout *ClassLayout) {
	if t.frozen {
		panic(fmt.Sprintf("entity: cannot register class %d after Freeze", layout.ClassID))
	}
	for i, a := range layout.Fields {
		for j, b := range layout.Fields {
			if i == j {
				continue
			}
			if int(a.Offset) < b.fieldEnd() && int(b.Offset) < a.fieldEnd() {
				panic(fmt.Sprintf("entity: class %d fields %d and %d overlap", layout.ClassID, i, j))
			}
		}
	}
	t.layouts[layout.ClassID] = layout
}

// Freeze locks the table against further registration.
func (t *LayoutTable) Freeze() {
	t.frozen = true
}

// Lookup returns the layout for a class id, or (nil, false) if it was never
// registered. Distinct from the panic-on-create path: Lookup is used by
// code (e.g. the snapshot builder) that already assumes the entity exists
// and therefore the class was registered at creation time.
func (t *LayoutTable) Lookup(id ClassID) (*ClassLayout, bool) {
	l, ok := t.layouts[id]
	return l, ok
}
