// Command demoserver runs a minimal UDP-backed integrator around the
// replication engine: one moving Pawn per connected client, driven by
// raw positional input deltas, replicated via baseline/diff packets.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ancillary-agi/syncengine/core"
	"github.com/ancillary-agi/syncengine/engine"
	"github.com/ancillary-agi/syncengine/entity"
	"github.com/ancillary-agi/syncengine/metrics"
	"github.com/ancillary-agi/syncengine/player"
	"github.com/ancillary-agi/syncengine/transport"
	"github.com/ancillary-agi/syncengine/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const classPawn entity.ClassID = 1

const inputSize = 12 // one Vector3 delta per tick

var log = logrus.New()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demoserver",
		Short: "Run a minimal UDP replication demo built on the sync engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	cmd.Flags().Int("port", 9000, "UDP listen port")
	cmd.Flags().Int("metrics-port", 9100, "HTTP port serving /metrics")
	cmd.Flags().Int("tick-rate", 30, "logic ticks per second")
	cmd.Flags().Int("send-rate", 1, "snapshot cadence, in logic ticks (1-3)")

	viper.SetEnvPrefix("SYNCENGINE")
	viper.AutomaticEnv()
	_ = viper.BindPFlags(cmd.Flags())

	return cmd
}

func main() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.WithError(err).Fatal("demoserver: exited with error")
	}
}

// udpSender implements transport.Sender over one shared *net.UDPConn, with
// every peer keyed by its *net.UDPAddr. There is no real reliability layer
// here — ReliableOrdered sends go out over the same unreliable UDP socket,
// which is adequate for a demo but not a substitute for retransmission.
type udpSender struct {
	conn *net.UDPConn
}

func (s *udpSender) Send(peer any, data []byte, _ transport.DeliveryMethod) error {
	addr, ok := peer.(*net.UDPAddr)
	if !ok {
		return fmt.Errorf("demoserver: peer %v is not a *net.UDPAddr", peer)
	}
	_, err := s.conn.WriteToUDP(data, addr)
	return err
}

func (s *udpSender) MaxSinglePacketSize(method transport.DeliveryMethod) int {
	return 1200
}

func (s *udpSender) TriggerUpdate() {}

// world holds the demo's per-entity game state, which the engine itself
// does not own — it only replicates whatever byte block the SnapshotHook
// hands back each tick.
type world struct {
	positions map[entity.ID]core.Vector3
}

func (w *world) snapshotHook(id entity.ID, classID entity.ClassID, scratch []byte) []byte {
	pos := w.positions[id]
	c := wire.NewCursor(scratch)
	c.PutFloat32(pos.X)
	c.PutFloat32(pos.Y)
	c.PutFloat32(pos.Z)
	return scratch
}

func (w *world) applyInput(id entity.ID, data []byte) {
	if len(data) < inputSize {
		return
	}
	c := wire.NewCursor(data)
	delta := core.NewVector3(c.ReadFloat32(), c.ReadFloat32(), c.ReadFloat32())
	w.positions[id] = w.positions[id].Add(delta)
}

func layouts() *entity.LayoutTable {
	lt := entity.NewLayoutTable()
	lt.Register(&entity.ClassLayout{
		ClassID:   classPawn,
		BlockSize: 12,
		Fields: []entity.FieldDescriptor{
			{Offset: 0, Width: 12, HookIndex: entity.NoHook, Interpolatable: true},
		},
	})
	lt.Freeze()
	return lt
}

type inbound struct {
	data []byte
	addr *net.UDPAddr
}

func run(ctx context.Context) error {
	port := viper.GetInt("port")
	metricsPort := viper.GetInt("metrics-port")
	tickRate := viper.GetInt("tick-rate")
	sendRate := viper.GetInt("send-rate")

	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("resolving listen address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("listening on UDP: %w", err)
	}
	defer conn.Close()

	reg := prometheus.NewRegistry()
	m := metrics.NewEngine(reg, "syncengine")

	w := &world{positions: make(map[entity.ID]core.Vector3)}
	clientsByAddr := make(map[string]entity.PlayerID)
	pawnsByPlayer := make(map[entity.PlayerID]entity.ID)

	eng := engine.New(engine.Config{
		Layouts:      layouts(),
		Sender:       &udpSender{conn: conn},
		InputSize:    inputSize,
		SendRate:     sendRate,
		Logger:       log,
		Metrics:      m,
		SnapshotHook: w.snapshotHook,
		InputReader: func(playerID entity.PlayerID, frame *player.InputFrame) {
			if pawnID, ok := pawnsByPlayer[playerID]; ok {
				w.applyInput(pawnID, frame.Data)
			}
		},
	})

	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", metricsPort), Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
	go func() {
		log.WithField("addr", httpServer.Addr).Info("demoserver: metrics listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("demoserver: metrics server failed")
		}
	}()

	incoming := make(chan inbound, 256)
	go func() {
		buf := make([]byte, 65536)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.WithError(err).Warn("demoserver: udp read error")
				continue
			}
			cp := make([]byte, n)
			copy(cp, buf[:n])
			select {
			case incoming <- inbound{data: cp, addr: addr}:
			default:
				log.Warn("demoserver: ingress queue full, dropping packet")
			}
		}
	}()

	log.WithFields(logrus.Fields{"port": port, "tick_rate": tickRate, "send_rate": sendRate}).Info("demoserver: started")

	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("demoserver: shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
			return nil

		case msg := <-incoming:
			key := msg.addr.String()
			playerID, ok := clientsByAddr[key]
			if !ok {
				p, added := eng.AddPlayer(msg.addr)
				if !added {
					log.Warn("demoserver: player table full, dropping new connection")
					continue
				}
				playerID = p.ID
				clientsByAddr[key] = playerID

				pawn, added := eng.AddPawn(classPawn, playerID, make([]byte, 12))
				if added {
					pawnsByPlayer[playerID] = pawn.ID
					w.positions[pawn.ID] = core.NewVector3(0, 0, 0)
				}
				log.WithFields(logrus.Fields{"player_id": playerID, "addr": key}).Info("demoserver: player connected")
			}
			eng.HandleIngress(msg.data, playerID, key)

		case <-ticker.C:
			eng.Update()
		}
	}
}

