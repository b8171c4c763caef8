// Package player implements the player table, its lifecycle state machine,
// and the per-player bounded min-heap of pending input frames.
package player

import (
	"github.com/ancillary-agi/syncengine/entity"
	"github.com/ancillary-agi/syncengine/tick"
)

// State is a player's lifecycle stage.
type State int

const (
	RequestBaseline State = iota
	WaitingForFirstInput
	WaitingForFirstInputProcess
	Active
)

func (s State) String() string {
	switch s {
	case RequestBaseline:
		return "RequestBaseline"
	case WaitingForFirstInput:
		return "WaitingForFirstInput"
	case WaitingForFirstInputProcess:
		return "WaitingForFirstInputProcess"
	case Active:
		return "Active"
	default:
		return "Unknown"
	}
}

// Player is one connected player's replication and input-processing state.
type Player struct {
	ID         entity.PlayerID
	ArrayIndex int // position in Table's compact active-players slice
	State      State
	Peer       any // opaque transport identity

	StateATick          tick.Tick
	StateBTick          tick.Tick
	CurrentServerTick    tick.Tick
	LastReceivedTick     tick.Tick
	LastProcessedTick    tick.Tick
	SimulatedServerTick  tick.Tick
	LerpTime             float32

	AvailableInput *InputHeap

	// ControllerID/PawnID support the controller/pawn destroy cascade in
	// engine.RemovePlayer.
	ControllerID entity.ID
	PawnID       entity.ID
}

func newPlayer(id entity.PlayerID, peer any) *Player {
	return &Player{
		ID:           id,
		State:        RequestBaseline,
		Peer:         peer,
		ControllerID: entity.InvalidID,
		PawnID:       entity.InvalidID,
		AvailableInput: NewInputHeap(),
	}
}
