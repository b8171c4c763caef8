package engine

import (
	"testing"

	"github.com/ancillary-agi/syncengine/entity"
	"github.com/ancillary-agi/syncengine/player"
	"github.com/ancillary-agi/syncengine/tick"
	"github.com/ancillary-agi/syncengine/transport"
	"github.com/ancillary-agi/syncengine/wire"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testClass entity.ClassID = 1

func testLayouts() *entity.LayoutTable {
	lt := entity.NewLayoutTable()
	lt.Register(&entity.ClassLayout{
		ClassID:   testClass,
		BlockSize: 4,
		Fields:    []entity.FieldDescriptor{{Offset: 0, Width: 4, HookIndex: entity.NoHook}},
	})
	lt.Freeze()
	return lt
}

// fakeSender records every Send call in memory, keyed by peer, and bounds
// MTU the same way an in-process test transport would.
type fakeSender struct {
	mtu  int
	sent map[any][][]byte
}

func newFakeSender(mtu int) *fakeSender {
	return &fakeSender{mtu: mtu, sent: make(map[any][][]byte)}
}

func (f *fakeSender) Send(peer any, data []byte, _ transport.DeliveryMethod) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	f.sent[peer] = append(f.sent[peer], cp)
	return nil
}

func (f *fakeSender) MaxSinglePacketSize(_ transport.DeliveryMethod) int { return f.mtu }
func (f *fakeSender) TriggerUpdate()                                    {}

func newTestEngine(sender *fakeSender) *Engine {
	log := logrus.New()
	log.SetOutput(noopWriter{})
	return New(Config{
		Layouts:   testLayouts(),
		Sender:    sender,
		InputSize: 4,
		SendRate:  1,
		Logger:    log,
	})
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestAddPlayerAndEntityWiring(t *testing.T) {
	sender := newFakeSender(1200)
	e := newTestEngine(sender)

	p, ok := e.AddPlayer("peer-1")
	require.True(t, ok)
	require.Equal(t, player.RequestBaseline, p.State)

	ent, ok := e.AddController(testClass, p.ID, []byte{1, 2, 3, 4})
	require.True(t, ok)
	require.Equal(t, ent.ID, p.ControllerID)

	pawn, ok := e.AddPawn(testClass, p.ID, []byte{5, 6, 7, 8})
	require.True(t, ok)
	require.Equal(t, pawn.ID, p.PawnID)
}

func TestAddSingletonUniqueness(t *testing.T) {
	sender := newFakeSender(1200)
	e := newTestEngine(sender)

	_, ok := e.AddSingleton(testClass, []byte{0, 0, 0, 0})
	require.True(t, ok)

	_, ok = e.AddSingleton(testClass, []byte{0, 0, 0, 0})
	require.False(t, ok)
}

func TestRemovePlayerCascadesControllerAndPawn(t *testing.T) {
	sender := newFakeSender(1200)
	e := newTestEngine(sender)

	p, _ := e.AddPlayer("peer-1")
	ctrl, _ := e.AddController(testClass, p.ID, []byte{1, 2, 3, 4})
	pawn, _ := e.AddPawn(testClass, p.ID, []byte{1, 2, 3, 4})

	e.RemovePlayer(p.ID)

	ctrlEnt, _ := e.Registry().Get(ctrl.ID)
	pawnEnt, _ := e.Registry().Get(pawn.ID)
	require.True(t, ctrlEnt.Destroyed)
	require.True(t, pawnEnt.Destroyed)

	_, stillThere := e.Players().Get(p.ID)
	require.False(t, stillThere)
}

func TestUpdateSendsBaselineThenDiff(t *testing.T) {
	sender := newFakeSender(1200)
	e := newTestEngine(sender)

	p, _ := e.AddPlayer("peer-1")
	e.AddEntity(testClass, p.ID, []byte{1, 2, 3, 4})

	e.Update() // tick 1: executed tick 0, player is RequestBaseline -> baseline sent for tick 0
	require.Len(t, sender.sent["peer-1"], 1)
	pkt := sender.sent["peer-1"][0]
	require.Equal(t, wire.PacketBaselineSync, pkt[1])
	baselineHeader := wire.DecodeBaselineDataHeader(wire.NewCursor(pkt))
	require.Equal(t, tick.Tick(0), baselineHeader.Tick)
	require.Equal(t, player.WaitingForFirstInput, p.State)

	p.State = player.Active // simulate client's first input frame having arrived
	e.Update()              // tick 2: executed tick 1, Active player -> diff stream
	require.Len(t, sender.sent["peer-1"], 2)
	diffHeader := wire.DecodeDiffPartHeader(wire.NewCursor(sender.sent["peer-1"][1]))
	require.Equal(t, wire.PacketDiffSyncLast, diffHeader.PacketType)
	require.Equal(t, tick.Tick(1), diffHeader.Tick)
}

func TestUpdateDispatchesInputAndAdvancesLifecycle(t *testing.T) {
	sender := newFakeSender(1200)
	e := newTestEngine(sender)

	var got []player.InputFrame
	e.cfg.InputReader = func(id entity.PlayerID, frame *player.InputFrame) {
		got = append(got, *frame)
	}

	p, _ := e.AddPlayer("peer-1")
	p.State = player.WaitingForFirstInputProcess
	p.AvailableInput.Insert(&player.InputFrame{Tick: tick.Tick(5), Data: []byte{9, 9, 9, 9}}, nil)

	e.Update()

	require.Equal(t, player.Active, p.State)
	require.Len(t, got, 1)
	require.Equal(t, tick.Tick(5), got[0].Tick)
}

func TestSnapshotHookDrivesFieldDiff(t *testing.T) {
	sender := newFakeSender(1200)
	e := newTestEngine(sender)

	value := uint32(1)
	e.cfg.SnapshotHook = func(id entity.ID, classID entity.ClassID, scratch []byte) []byte {
		wire.NewCursor(scratch).PutUint32(value)
		return scratch
	}

	p, _ := e.AddPlayer("peer-1")
	e.AddEntity(testClass, p.ID, []byte{0, 0, 0, 0})

	e.Update() // tick 1: baseline
	p.State = player.Active

	value = 42
	e.Update() // tick 2: field changed since ack -> diff carries it

	last := sender.sent["peer-1"][len(sender.sent["peer-1"])-1]
	c := wire.NewCursor(last)
	wire.DecodeDiffPartHeader(c)
	require.Greater(t, len(last), wire.DiffPartHeaderSize+wire.LastPartDataSize)
}

func TestRemoveEntityRecycledOnceAcknowledged(t *testing.T) {
	sender := newFakeSender(1200)
	e := newTestEngine(sender)

	p, _ := e.AddPlayer("peer-1")
	p.State = player.Active
	ent, _ := e.AddEntity(testClass, p.ID, []byte{1, 2, 3, 4})

	e.RemoveEntity(ent.ID)
	_, stillLive := e.Registry().Get(ent.ID)
	require.True(t, stillLive) // still allocated until acknowledged

	// Player's ack (StateATick) is already at/after destruction, so the
	// very next tick's minimal-ack computation allows recycling.
	p.StateATick = e.CurrentTick()
	e.Update()

	_, stillLive = e.Registry().Get(ent.ID)
	require.False(t, stillLive)
}

func TestHandleIngressRoutesClientInput(t *testing.T) {
	sender := newFakeSender(1200)
	e := newTestEngine(sender)
	p, _ := e.AddPlayer("peer-1")
	p.State = player.WaitingForFirstInput // baseline already sent; first frame is always accepted

	buf := make([]byte, 1+2+wire.InputPacketHeaderSize+4)
	c := wire.NewCursor(buf)
	c.PutUint8(wire.PacketClientInput)
	c.PutUint16(uint16(p.CurrentServerTick))
	wire.InputPacketHeader{StateA: 0, StateB: 0, LerpMsec: 0}.Encode(c)
	c.PutBytes([]byte{1, 2, 3, 4})

	e.HandleIngress(c.Written(), p.ID, "127.0.0.1:1")
	require.Equal(t, 1, p.AvailableInput.Len())
}
