package session

import (
	"context"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lowlatency/arena/internal/entity"
	"github.com/lowlatency/arena/internal/netproto"
)

// RunClient connects to a server and drives the inbound datagram loop
// and the fixed-rate outbound input loop under one cancellable context.
func (s *Session) RunClient(ctx context.Context, server net.Addr, playerName string) error {
	s.remote = server
	s.server = netproto.NewConnection(server)
	s.queueClientMessage(netproto.Connect{PlayerName: playerName}, true)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.clientInboundLoop(ctx) })
	g.Go(func() error { return s.clientTickLoop(ctx) })
	return g.Wait()
}

// SetLocalInput replaces the input snapshot the next outbound tick
// sends to the server.
func (s *Session) SetLocalInput(in entity.InputSnapshot) {
	s.pendingInput = &in
}

// SendChat queues a chat message for the next outbound flush.
func (s *Session) SendChat(text string) {
	s.queueClientMessage(netproto.Chat{Text: text}, true)
}

// Disconnect notifies the server this client is leaving.
func (s *Session) Disconnect() {
	s.queueClientMessage(netproto.Disconnect{}, true)
}

func (s *Session) queueClientMessage(msg netproto.Message, reliable bool) {
	s.clientOutbox = append(s.clientOutbox, pendingMessage{msg: msg, reliable: reliable})
}

func (s *Session) clientTickLoop(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.clientTick(time.Now())
		}
	}
}

func (s *Session) clientTick(now time.Time) {
	if s.pendingInput != nil {
		s.queueClientMessage(netproto.Input{
			Move:          s.pendingInput.Move,
			Aim:           s.pendingInput.Aim,
			FirePrimary:   s.pendingInput.FirePrimary,
			FireSecondary: s.pendingInput.FireSecondary,
		}, false)
		s.pendingInput = nil
	}

	for _, retry := range s.server.Reliable.DueRetransmits(now) {
		s.sendRaw(s.remote, retry, s.Logger)
	}

	if len(s.clientOutbox) == 0 {
		return
	}

	var toSend []netproto.Message
	reliable := false
	for _, pm := range s.clientOutbox {
		toSend = append(toSend, pm.msg)
		if pm.reliable {
			reliable = true
		}
	}
	s.clientOutbox = nil

	flags := uint8(0)
	var seq uint16
	if reliable {
		flags = netproto.FlagReliable
		seq = s.server.Reliable.NextSequence()
	} else {
		seq = s.server.Unreliable.NextSequence()
	}
	payload := netproto.EncodePacket(seq, flags, toSend)
	if reliable {
		s.server.Reliable.Track(seq, payload, now)
	}
	s.sendRaw(s.remote, payload, s.Logger)
}

func (s *Session) clientInboundLoop(ctx context.Context) error {
	buffer := make([]byte, netproto.MaxPacketSize)
	renderClock := time.Now()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.transport.SetReadDeadline(time.Now().Add(readDeadlinePoll)); err != nil {
			return err
		}
		n, _, err := s.transport.ReadFrom(buffer)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			continue
		}

		h, msgs, err := netproto.DecodePacket(buffer[:n])
		if err != nil {
			continue
		}
		if !s.Mirror.AcceptSequence(h.Flags&netproto.FlagReliable != 0, h.Sequence) {
			continue
		}
		s.server.Touch(time.Now())

		now := time.Since(renderClock).Seconds()
		for _, msg := range msgs {
			s.ApplyReplicationMessage(msg, now)
		}
	}
}
