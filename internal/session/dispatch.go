package session

import (
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/lowlatency/arena/internal/entity"
	"github.com/lowlatency/arena/internal/metrics"
	"github.com/lowlatency/arena/internal/netproto"
	"github.com/lowlatency/arena/internal/player"
	"github.com/lowlatency/arena/internal/replication"
)

// queue buffers msg for addr's connection, to go out on the next flush.
// Messages queued reliable mark the whole packet FlagReliable and ride
// the connection's Reliable channel for retransmit bookkeeping.
func (s *Session) queue(addr string, msg netproto.Message, reliable bool) {
	if s.outbox == nil {
		s.outbox = make(map[string][]pendingMessage)
	}
	s.outbox[addr] = append(s.outbox[addr], pendingMessage{msg: msg, reliable: reliable})
}

// queueBroadcast queues msg for every connected peer except exclude
// (pass "" to exclude no one).
func (s *Session) queueBroadcast(msg netproto.Message, reliable bool, exclude string) {
	for addr := range s.connections {
		if addr == exclude {
			continue
		}
		s.queue(addr, msg, reliable)
	}
}

type pendingMessage struct {
	msg      netproto.Message
	reliable bool
}

// HandleDatagram is the server-side entry point for one inbound
// datagram: it validates the packet, admits new connections on Connect,
// updates liveness, and folds each parsed message into roster/world
// state or the outbound queue.
func (s *Session) HandleDatagram(data []byte, from net.Addr, now time.Time) {
	if s.Metrics != nil {
		s.Metrics.BytesRecv.Add(float64(len(data)))
	}

	h, msgs, err := netproto.DecodePacket(data)
	if err != nil {
		if s.Metrics != nil {
			s.Metrics.DecodeErrors.Inc()
		}
		return
	}

	addr := from.String()
	conn, known := s.connections[addr]
	if !known {
		conn = netproto.NewConnection(from)
		s.connections[addr] = conn
		if s.Metrics != nil {
			s.Metrics.Connections.WithLabelValues(string(metrics.ConnectionPending)).Inc()
		}
	}
	conn.Touch(now)

	// Each lane keeps its own dedup window: a reliable packet's sequence
	// is tracked (and a duplicate resend dropped) on Reliable, everything
	// else on Unreliable.
	var isNew bool
	if h.Flags&netproto.FlagReliable != 0 {
		isNew = conn.Reliable.Receive(h.Sequence)
	} else {
		isNew = conn.Unreliable.Receive(h.Sequence)
	}
	if !isNew {
		return
	}

	if s.Metrics != nil {
		s.Metrics.MessagesRecv.Add(float64(len(msgs)))
	}
	for _, msg := range msgs {
		s.handleServerMessage(addr, msg, now)
	}
}

func (s *Session) handleServerMessage(addr string, msg netproto.Message, now time.Time) {
	switch m := msg.(type) {
	case netproto.Connect:
		s.handleConnect(addr, m, now)

	case netproto.Disconnect:
		s.handleDisconnect(addr)

	case netproto.Input:
		id, ok := s.addrPlayer[addr]
		if !ok {
			return
		}
		if in, ok := s.inputs[id]; ok {
			in.set(entity.InputSnapshot{
				Move:          m.Move,
				Aim:           m.Aim,
				FirePrimary:   m.FirePrimary,
				FireSecondary: m.FireSecondary,
			})
		}

	case netproto.Chat:
		id, ok := s.addrPlayer[addr]
		if !ok {
			return
		}
		s.queueBroadcast(netproto.Chat{Player: id, Text: m.Text}, true, "")

	case netproto.PlayerName:
		id, ok := s.addrPlayer[addr]
		if !ok {
			return
		}
		if p, ok := s.roster[id]; ok {
			p.Name = m.Name
			s.queueBroadcast(netproto.PlayerName{Player: id, Name: m.Name}, true, "")
		}
	}
}

func (s *Session) handleConnect(addr string, m netproto.Connect, now time.Time) {
	if _, already := s.addrPlayer[addr]; already {
		return
	}
	if s.PlayerCount() >= player.MaxPlayers {
		s.queue(addr, netproto.ServerFull{}, true)
		return
	}
	p, err := s.Join(m.PlayerName)
	if err != nil {
		s.queue(addr, netproto.Reject{Reason: err.Error()}, true)
		return
	}

	s.addrPlayer[addr] = p.Identity
	s.playerAddr[p.Identity] = addr
	if conn, ok := s.connections[addr]; ok {
		conn.Accept(now)
		if s.Metrics != nil {
			s.Metrics.Connections.WithLabelValues(string(metrics.ConnectionPending)).Dec()
			s.Metrics.Connections.WithLabelValues(string(metrics.ConnectionEstablished)).Inc()
		}
	}

	for _, snapMsg := range replication.JoinSnapshot(s.World, s.rosterOrder) {
		s.queue(addr, snapMsg, true)
	}
	s.queueBroadcast(netproto.ClientJoin{Player: p.Identity, Name: p.Name}, true, addr)
}

func (s *Session) handleDisconnect(addr string) {
	if conn, ok := s.connections[addr]; ok {
		if s.Metrics != nil {
			state := metrics.ConnectionPending
			if conn.State() == netproto.Connected || conn.State() == netproto.Lagging {
				state = metrics.ConnectionEstablished
			}
			s.Metrics.Connections.WithLabelValues(string(state)).Dec()
		}
		conn.Close()
	}
	delete(s.connections, addr)
	delete(s.outbox, addr)

	id, ok := s.addrPlayer[addr]
	if !ok {
		return
	}
	s.Leave(id)
	delete(s.addrPlayer, addr)
	delete(s.playerAddr, id)
	s.queueBroadcast(netproto.ClientLeave{Player: id}, true, addr)
}

// flushOutbound encodes one packet per connection with pending messages
// plus any reliable payload due for retransmit, and hands each to the
// transport. Called once per tick.
func (s *Session) flushOutbound(now time.Time, logger *zap.Logger) {
	for addr, conn := range s.connections {
		var toSend []netproto.Message
		reliable := false

		for _, pm := range s.outbox[addr] {
			toSend = append(toSend, pm.msg)
			if pm.reliable {
				reliable = true
			}
		}
		delete(s.outbox, addr)

		for _, retry := range conn.Reliable.DueRetransmits(now) {
			s.sendRaw(conn.Remote, retry, logger)
		}
		if len(toSend) == 0 {
			continue
		}

		flags := uint8(0)
		var seq uint16
		if reliable {
			flags = netproto.FlagReliable
			seq = conn.Reliable.NextSequence()
		} else {
			seq = conn.Unreliable.NextSequence()
		}
		payload := netproto.EncodePacket(seq, flags, toSend)
		if reliable {
			conn.Reliable.Track(seq, payload, now)
		}
		s.sendRaw(conn.Remote, payload, logger)
	}
}

func (s *Session) sendRaw(to net.Addr, payload []byte, logger *zap.Logger) {
	if s.transport == nil {
		return
	}
	if _, err := s.transport.WriteTo(payload, to); err != nil {
		if logger != nil {
			logger.Warn("datagram send failed", zap.Stringer("remote", to), zap.Error(err))
		}
		return
	}
	if s.Metrics != nil {
		s.Metrics.BytesSent.Add(float64(len(payload)))
		s.Metrics.MessagesSent.Inc()
	}
}

// ApplyReplicationMessage is the client-side counterpart to
// handleServerMessage: it folds one inbound message from the server
// into the shadow graph and the local roster view.
func (s *Session) ApplyReplicationMessage(msg netproto.Message, now float64) error {
	switch m := msg.(type) {
	case netproto.EntityAdd:
		return s.Mirror.ApplyAdd(m, now)
	case netproto.EntityUpdate:
		s.Mirror.ApplyUpdate(m, now)
	case netproto.EntityRemove:
		return s.Mirror.ApplyRemove(m)
	case netproto.ClientJoin:
		if _, exists := s.roster[m.Player]; !exists {
			p := &player.Player{Identity: m.Player, Name: m.Name, Color: player.TeamColor(m.Player.Slot)}
			s.roster[m.Player] = p
			s.rosterOrder = append(s.rosterOrder, p)
		}
	case netproto.ClientLeave:
		s.forgetRemotePlayer(m.Player)
	case netproto.PlayerName:
		if p, ok := s.roster[m.Player]; ok {
			p.Name = m.Name
		}
	case netproto.PlayerScore:
		if p, ok := s.roster[m.Player]; ok {
			p.Kills = int(m.Kills)
			p.Deaths = int(m.Deaths)
		}
	}
	return nil
}
