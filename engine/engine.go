// Package engine wires together the tick clock, entity registry, field
// descriptor table, state serializer table, player table, input decoder
// and snapshot builder into the public control surface: add/remove
// player, add/remove entity, the per-tick drive entry point, and the
// ingress deserialize entry point.
package engine

import (
	"github.com/ancillary-agi/syncengine/entity"
	"github.com/ancillary-agi/syncengine/input"
	"github.com/ancillary-agi/syncengine/metrics"
	"github.com/ancillary-agi/syncengine/player"
	"github.com/ancillary-agi/syncengine/state"
	"github.com/ancillary-agi/syncengine/tick"
	"github.com/ancillary-agi/syncengine/transport"
	"github.com/sirupsen/logrus"
)

// RequestReader consumes one opaque ClientRequest body during the logic
// tick's request-drain phase.
type RequestReader func(body []byte)

// InputReader dispatches one player's decoded input block to user game
// logic during the logic tick.
type InputReader func(playerID entity.PlayerID, frame *player.InputFrame)

// UpdateHook runs user per-tick entity logic for entities carrying the
// Updateable marker.
type UpdateHook func(id entity.ID)

// SnapshotHook returns the current field block for a live entity so the
// logic tick can commit it to replication history. scratch is a reusable
// buffer sized to the class's registered BlockSize; implementations may
// write into it and return it, or return their own slice of the same
// length.
type SnapshotHook func(id entity.ID, classID entity.ClassID, scratch []byte) []byte

// Config configures one Engine instance. All fields except Sender,
// Layouts, InputSize are optional and default as noted.
type Config struct {
	Layouts   *entity.LayoutTable // must be frozen before New
	Sender    transport.Sender
	InputSize int // fixed per-tick raw input block size, in bytes

	// SendRate is the snapshot cadence relative to the logic tick
	// frequency: a snapshot is produced every SendRate logic ticks.
	// Must be 1, 2, or 3; defaults to 1.
	SendRate int
	// MaxParts bounds diff fragmentation before a forced rebaseline;
	// defaults to 32.
	MaxParts uint8
	// EngineHeaderByte is prefixed to every egress packet and, if
	// PeekHeaderByte is set, expected as the first byte of every ingress
	// packet.
	EngineHeaderByte byte
	// PeekHeaderByte, when true, makes HandleIngress skip one leading
	// header byte before dispatching on packet type.
	PeekHeaderByte bool

	RequestReader RequestReader
	InputReader   InputReader
	UpdateHook    UpdateHook
	SnapshotHook  SnapshotHook

	Logger  *logrus.Logger
	Metrics *metrics.Engine
}

// Engine is one self-contained replication core instance. Multiple
// instances are independent; there is no process-wide global state.
type Engine struct {
	cfg Config

	registry *entity.Registry
	players  *player.Table
	states   *state.Table
	decoder  *input.Decoder

	currentTick tick.Tick

	singletons map[entity.ClassID]entity.ID

	log *logrus.Logger
}

// New builds an Engine. Panics if cfg.Layouts, cfg.Sender or
// cfg.InputSize are unset, since those are startup-time programmer
// errors rather than runtime conditions.
func New(cfg Config) *Engine {
	if cfg.Layouts == nil {
		panic("engine: Config.Layouts is required")
	}
	if cfg.Sender == nil {
		panic("engine: Config.Sender is required")
	}
	if cfg.InputSize <= 0 {
		panic("engine: Config.InputSize must be positive")
	}
	if cfg.SendRate == 0 {
		cfg.SendRate = 1
	}
	if cfg.SendRate < 1 || cfg.SendRate > 3 {
		panic("engine: Config.SendRate must be 1, 2 or 3")
	}
	if cfg.MaxParts == 0 {
		cfg.MaxParts = 32
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Engine{
		cfg:        cfg,
		registry:   entity.NewRegistry(cfg.Layouts),
		players:    player.NewTable(),
		states:     state.NewTable(cfg.Layouts),
		decoder:    input.NewDecoder(cfg.InputSize, cfg.Logger),
		singletons: make(map[entity.ClassID]entity.ID),
		log:        cfg.Logger,
	}
}

// CurrentTick returns the engine's current tick counter.
func (e *Engine) CurrentTick() tick.Tick {
	return e.currentTick
}

// Registry exposes the entity registry for callers that need direct
// access, e.g. to inspect the parent/child graph.
func (e *Engine) Registry() *entity.Registry {
	return e.registry
}

// Players exposes the player table.
func (e *Engine) Players() *player.Table {
	return e.players
}

// States exposes the state serializer table, notably for QueueRPC callers.
func (e *Engine) States() *state.Table {
	return e.states
}
