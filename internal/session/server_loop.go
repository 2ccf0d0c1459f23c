package session

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lowlatency/arena/internal/buf"
	"github.com/lowlatency/arena/internal/entity"
	"github.com/lowlatency/arena/internal/netproto"
	"github.com/lowlatency/arena/internal/player"
	"github.com/lowlatency/arena/internal/pool"
	"github.com/lowlatency/arena/internal/replication"
	"github.com/lowlatency/arena/internal/scene"
	"github.com/lowlatency/arena/internal/sim"
	"github.com/lowlatency/arena/internal/vec"
)

// readDeadlinePoll is how long a ReadFrom call blocks before giving the
// inbound loop a chance to notice ctx has been cancelled.
const readDeadlinePoll = 100 * time.Millisecond

// inboxCapacity bounds how many not-yet-processed datagrams inboundLoop
// may queue ahead of the tick goroutine. Generous relative to one
// tick's expected arrival count; a full inbox just backpressures the
// socket read rather than blocking the tick.
const inboxCapacity = 1024

// rawDatagram is one inbound datagram as handed from inboundLoop to the
// tick goroutine's per-tick inbox. data is a copy — inboundLoop reuses
// its read buffer on the next iteration.
type rawDatagram struct {
	data []byte
	from net.Addr
	now  time.Time
}

// RunServer drives the authoritative loop: a fixed-timestep tick that
// steps the simulation and flushes replication, alongside an inbound
// datagram loop, under one cancellable context. Either goroutine's
// error (other than context cancellation) stops both.
func (s *Session) RunServer(ctx context.Context, discovery *netproto.DiscoveryBroadcaster, serverName string, port uint16) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.serverTickLoop(ctx) })
	g.Go(func() error { return s.inboundLoop(ctx) })
	if discovery != nil {
		g.Go(func() error { return s.discoveryLoop(ctx, discovery, serverName, port) })
	}

	return g.Wait()
}

func (s *Session) serverTickLoop(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	dt := float32(TickInterval.Seconds())

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.serverTick(dt, time.Now())
		}
	}
}

func (s *Session) serverTick(dt float32, now time.Time) {
	s.drainInbox()

	before := liveIdentities(s.World)

	s.AdvanceRespawns(dt)
	fireEvents := sim.Tick(s.World, dt)

	for _, fe := range fireEvents {
		s.spawnProjectile(fe)
	}

	for addr, conn := range s.connections {
		conn.Advance(now)
		if state := conn.State(); state == netproto.Dropped || state == netproto.Faulted {
			s.handleDisconnect(addr)
		}
	}

	after := liveIdentities(s.World)
	for id := range before {
		if _, stillLive := after[id]; !stillLive {
			s.queueBroadcast(netproto.EntityRemove{Identity: id}, true, "")
		}
	}

	for _, delta := range replication.Deltas(s.World) {
		s.queueBroadcast(delta, false, "")
	}

	if s.Metrics != nil {
		s.Metrics.ActiveEntities.Set(float64(s.World.Count()))
	}

	s.flushOutbound(now, s.Logger)
}

func liveIdentities(w *entity.World) map[pool.Identity]struct{} {
	ids := make(map[pool.Identity]struct{}, w.Count())
	w.Each(func(e *entity.Entity) { ids[e.Identity] = struct{}{} })
	return ids
}

func (s *Session) spawnProjectile(fe sim.FireEvent) {
	variant := entity.VariantBullet
	speed := float32(entity.BulletSpeed)
	radius := float32(entity.BulletColliderRadius)
	if fe.Slot == sim.WeaponSlotSecondary {
		variant = entity.VariantRocket
		speed = entity.RocketSpeed
		radius = entity.RocketColliderRadius
	}

	projectile, err := s.World.Spawn(variant, fe.Origin, radius, nil)
	if err != nil {
		return
	}
	projectile.Owner = fe.Shooter.Owner
	projectile.Velocity = vec.FromAngle(fe.Aim).Mul(speed)
	projectile.SetLocalTransform(scene.Transform{Position: fe.Origin, Orientation: fe.Aim, Scale: 1})

	s.queueBroadcast(replication.EntityAddedMessage(projectile), true, "")
}

func (s *Session) discoveryLoop(ctx context.Context, b *netproto.DiscoveryBroadcaster, serverName string, port uint16) error {
	ticker := time.NewTicker(netproto.DiscoveryFrequency)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			msg := netproto.Discovery{
				ServerName: serverName,
				Players:    uint8(s.PlayerCount()),
				MaxPlayers: uint8(player.MaxPlayers),
				Port:       port,
			}
			w := buf.NewWriter(buf.LittleEndian)
			netproto.EncodeMessage(w, msg)
			if err := b.Send(w.Bytes()); err != nil && s.Logger != nil {
				s.Logger.Warn("discovery broadcast failed", zap.Error(err))
			}
		}
	}
}

func (s *Session) inboundLoop(ctx context.Context) error {
	buffer := make([]byte, netproto.MaxPacketSize)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.transport.SetReadDeadline(time.Now().Add(readDeadlinePoll)); err != nil {
			return err
		}
		n, addr, err := s.transport.ReadFrom(buffer)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		cp := make([]byte, n)
		copy(cp, buffer[:n])
		select {
		case s.inbox <- rawDatagram{data: cp, from: addr, now: time.Now()}:
		case <-ctx.Done():
			return nil
		}
	}
}

// drainInbox folds every datagram inboundLoop has queued since the last
// tick into roster/world/outbox state. It runs on the tick goroutine
// only, so HandleDatagram never races with serverTick's own reads and
// writes of that same state.
func (s *Session) drainInbox() {
	for {
		select {
		case d := <-s.inbox:
			s.HandleDatagram(d.data, d.from, d.now)
		default:
			return
		}
	}
}
