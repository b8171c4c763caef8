// Package entity implements the fixed-capacity synced entity table, the
// per-class field descriptor table, and the parent/child/ownership graph.
package entity

// ID is a 16-bit synchronized entity identifier. Ids in [FirstID,
// MaxSyncedID] are networked; ids outside that range are reserved for
// local-only entities the engine never replicates.
type ID uint16

// Version is an 8-bit monotonic counter bumped every time an Id is reused,
// disambiguating reused ids across reordered reliable/unreliable packets.
type Version uint8

// PlayerID is an 8-bit player identifier; 0 is reserved to mean "server".
type PlayerID uint8

// ClassID identifies a registered entity class (the ordered field layout
// used by the field descriptor table).
type ClassID uint16

const (
	// InvalidID is the sentinel "no entity" / "no parent" value.
	InvalidID ID = 0
	// FirstID is the first id handed out to a synced entity.
	FirstID ID = 1
	// MaxSyncedEntityCount bounds how many synced entities can exist at
	// once, well within the 16-bit id space.
	MaxSyncedEntityCount = 8192
	// MaxSyncedID is the last id in the synced range (exclusive of the
	// count above FirstID).
	MaxSyncedID ID = FirstID + MaxSyncedEntityCount - 1

	// ServerPlayerID is the reserved player id meaning "server", used as
	// OwnerID for entities nobody owns.
	ServerPlayerID PlayerID = 0
	// MaxPlayers bounds the player table.
	MaxPlayers = 255
)

// Kind distinguishes a local-only entity (never replicated) from a synced
// one (tracked by the registry and the snapshot builder).
type Kind uint8

const (
	KindLocal Kind = iota
	KindSynced
)

// Role is supplemental metadata (not present in the base data model)
// recorded by the public control surface. Only RoleSingleton changes
// behaviour: a singleton may exist in at most one instance per class.
// Removing a player destroys its pawn and controller through
// Player.PawnID and Player.ControllerID; removing a controller entity on
// its own leaves its pawn in place.
type Role uint8

const (
	RoleNone Role = iota
	RoleController
	RolePawn
	RoleSingleton
)
