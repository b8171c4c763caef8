package input

import (
	"github.com/ancillary-agi/syncengine/entity"
	"github.com/ancillary-agi/syncengine/player"
	"github.com/ancillary-agi/syncengine/tick"
	"github.com/ancillary-agi/syncengine/wire"
	"github.com/sirupsen/logrus"
)

// Decoder turns one ingress ClientInput/ClientRequest body (the engine
// header byte and packet-type byte already stripped by the caller) into
// per-tick InputFrames inserted into the owning player's heap, or into the
// server-wide pending-request FIFO.
type Decoder struct {
	inputSize int
	pool      *Pool
	pending   [][]byte
	log       *logrus.Logger
}

// NewDecoder builds a decoder for a fixed per-frame input block size.
func NewDecoder(inputSize int, log *logrus.Logger) *Decoder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Decoder{inputSize: inputSize, pool: NewPool(inputSize), log: log}
}

// Pool exposes the decoder's input buffer pool.
func (d *Decoder) Pool() *Pool { return d.pool }

// DecodeClientRequest enqueues body verbatim onto the server-wide pending
// request FIFO.
func (d *Decoder) DecodeClientRequest(body []byte) {
	cp := make([]byte, len(body))
	copy(cp, body)
	d.pending = append(d.pending, cp)
}

// DrainRequests returns and clears every pending client request, in
// arrival order, for the logic tick's request reader.
func (d *Decoder) DrainRequests() [][]byte {
	out := d.pending
	d.pending = nil
	return out
}

// DecodeClientInput decodes one player's ingress ClientInput body into
// InputFrames and inserts them into the player's input heap, validating
// tick bounds and dropping the remainder of the packet on any malformed
// frame rather than partially applying it. remoteEndpoint is only used for
// the malformed-packet log line.
func (d *Decoder) DecodeClientInput(body []byte, pl *player.Player, playerID entity.PlayerID, remoteEndpoint string) {
	if len(body) < 3 {
		d.log.WithFields(logrus.Fields{"player_id": playerID, "endpoint": remoteEndpoint, "size": len(body)}).
			Warn("input: ClientInput packet undersized")
		return
	}

	c := wire.NewCursor(body)
	firstClientTick := tick.Tick(c.ReadUint16())

	var prevBlock []byte
	frameIndex := uint16(0)

	for c.Remaining() > 0 {
		if c.Remaining() < wire.InputPacketHeaderSize {
			d.log.WithFields(logrus.Fields{"player_id": playerID, "endpoint": remoteEndpoint}).
				Warn("input: truncated input frame header, dropping remainder of packet")
			return
		}
		header := wire.DecodeInputPacketHeader(c)

		if tick.Diff(header.StateA, pl.CurrentServerTick) > 0 || tick.Diff(header.StateB, pl.CurrentServerTick) > 0 {
			d.log.WithFields(logrus.Fields{
				"player_id": playerID, "endpoint": remoteEndpoint,
				"state_a": header.StateA, "state_b": header.StateB, "server_tick": pl.CurrentServerTick,
			}).Warn("input: frame references a future server tick, dropping remainder of packet")
			return
		}
		header.LerpMsec = tick.Clamp01(header.LerpMsec)

		var data []byte
		if frameIndex == 0 {
			if c.Remaining() < d.inputSize {
				d.log.WithFields(logrus.Fields{"player_id": playerID, "endpoint": remoteEndpoint}).
					Warn("input: truncated raw input block, dropping remainder of packet")
				return
			}
			data = d.pool.Get()
			copy(data, c.ReadBytes(d.inputSize))
		} else {
			decoded, consumed, err := DecodeDelta(prevBlock, c.Buf[c.Pos:])
			if err != nil {
				d.log.WithFields(logrus.Fields{"player_id": playerID, "endpoint": remoteEndpoint, "error": err}).
					Warn("input: malformed delta-encoded input block, dropping remainder of packet")
				return
			}
			c.Pos += consumed
			data = d.pool.Get()
			copy(data, decoded)
		}
		prevBlock = data

		frameTick := firstClientTick + tick.Tick(frameIndex)

		if tick.Newer(header.StateB, pl.CurrentServerTick) {
			pl.CurrentServerTick = header.StateB
		}

		acceptingFirst := pl.State == player.WaitingForFirstInput
		if acceptingFirst || tick.Diff(frameTick, pl.LastReceivedTick) > 0 {
			pl.AvailableInput.Insert(&player.InputFrame{Tick: frameTick, Header: header, Data: data}, d.pool)
			if acceptingFirst || tick.Newer(frameTick, pl.LastReceivedTick) {
				pl.LastReceivedTick = frameTick
			}
			if acceptingFirst {
				pl.State = player.WaitingForFirstInputProcess
			}
		} else {
			d.pool.Put(data)
		}

		frameIndex++
	}
}
