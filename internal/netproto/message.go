package netproto

import (
	"github.com/lowlatency/arena/internal/buf"
	"github.com/lowlatency/arena/internal/pool"
	"github.com/lowlatency/arena/internal/vec"
)

// MessageType is a message's wire variant tag.
type MessageType uint8

const (
	MsgConnect MessageType = iota + 1
	MsgDisconnect
	MsgReject
	MsgClientJoin
	MsgClientLeave
	MsgPlayerName
	MsgPlayerKill
	MsgPlayerScore
	MsgChat
	MsgInput
	MsgEntityAdd
	MsgEntityRemove
	MsgEntityUpdate
	MsgServerFull
	MsgDiscovery
)

const (
	maxNameLength = 64
	maxChatLength = 256
)

// Message is a tagged-variant protocol message: self-describing payload
// plus the leading variant-tag byte that names it on the wire.
type Message interface {
	Type() MessageType
	Encode(w *buf.Writer)
}

func writeIdentity(w *buf.Writer, id pool.Identity) {
	w.WriteU8(id.Generation)
	w.WriteU8(id.Slot)
}

func readIdentity(r *buf.Reader) (pool.Identity, error) {
	gen, err := r.ReadU8()
	if err != nil {
		return pool.Identity{}, err
	}
	slot, err := r.ReadU8()
	if err != nil {
		return pool.Identity{}, err
	}
	return pool.Identity{Generation: gen, Slot: slot}, nil
}

func writeVec2(w *buf.Writer, v vec.Vec2) {
	w.WriteF32(v.X)
	w.WriteF32(v.Y)
}

func readVec2(r *buf.Reader) (vec.Vec2, error) {
	x, err := r.ReadF32()
	if err != nil {
		return vec.Vec2{}, err
	}
	y, err := r.ReadF32()
	if err != nil {
		return vec.Vec2{}, err
	}
	return vec.Vec2{X: x, Y: y}, nil
}

// Connect is the client's connection request, carrying the name it
// wants to join with.
type Connect struct {
	PlayerName string
}

func (Connect) Type() MessageType { return MsgConnect }
func (m Connect) Encode(w *buf.Writer) {
	w.WriteBoundedString(m.PlayerName, buf.PrefixU8, maxNameLength)
}
func decodeConnect(r *buf.Reader) (Message, error) {
	name, err := r.ReadBoundedString(buf.PrefixU8, maxNameLength)
	if err != nil {
		return nil, err
	}
	return Connect{PlayerName: name}, nil
}

// Disconnect notifies the peer this side is leaving voluntarily.
type Disconnect struct{}

func (Disconnect) Type() MessageType     { return MsgDisconnect }
func (Disconnect) Encode(w *buf.Writer)  {}
func decodeDisconnect(r *buf.Reader) (Message, error) { return Disconnect{}, nil }

// Reject answers a Connect the server will not accept (protocol
// mismatch, bad name, etc — distinct from ServerFull's capacity case).
type Reject struct {
	Reason string
}

func (Reject) Type() MessageType { return MsgReject }
func (m Reject) Encode(w *buf.Writer) {
	w.WriteBoundedString(m.Reason, buf.PrefixU8, maxNameLength)
}
func decodeReject(r *buf.Reader) (Message, error) {
	reason, err := r.ReadBoundedString(buf.PrefixU8, maxNameLength)
	if err != nil {
		return nil, err
	}
	return Reject{Reason: reason}, nil
}

// ClientJoin broadcasts a newly accepted player to the roster.
type ClientJoin struct {
	Player pool.Identity
	Name   string
}

func (ClientJoin) Type() MessageType { return MsgClientJoin }
func (m ClientJoin) Encode(w *buf.Writer) {
	writeIdentity(w, m.Player)
	w.WriteBoundedString(m.Name, buf.PrefixU8, maxNameLength)
}
func decodeClientJoin(r *buf.Reader) (Message, error) {
	id, err := readIdentity(r)
	if err != nil {
		return nil, err
	}
	name, err := r.ReadBoundedString(buf.PrefixU8, maxNameLength)
	if err != nil {
		return nil, err
	}
	return ClientJoin{Player: id, Name: name}, nil
}

// ClientLeave broadcasts a player's departure.
type ClientLeave struct {
	Player pool.Identity
}

func (ClientLeave) Type() MessageType { return MsgClientLeave }
func (m ClientLeave) Encode(w *buf.Writer) { writeIdentity(w, m.Player) }
func decodeClientLeave(r *buf.Reader) (Message, error) {
	id, err := readIdentity(r)
	if err != nil {
		return nil, err
	}
	return ClientLeave{Player: id}, nil
}

// PlayerName renames an existing roster entry.
type PlayerName struct {
	Player pool.Identity
	Name   string
}

func (PlayerName) Type() MessageType { return MsgPlayerName }
func (m PlayerName) Encode(w *buf.Writer) {
	writeIdentity(w, m.Player)
	w.WriteBoundedString(m.Name, buf.PrefixU8, maxNameLength)
}
func decodePlayerName(r *buf.Reader) (Message, error) {
	id, err := readIdentity(r)
	if err != nil {
		return nil, err
	}
	name, err := r.ReadBoundedString(buf.PrefixU8, maxNameLength)
	if err != nil {
		return nil, err
	}
	return PlayerName{Player: id, Name: name}, nil
}

// PlayerKill announces an avatar death and its attribution.
type PlayerKill struct {
	Killer pool.Identity
	Victim pool.Identity
}

func (PlayerKill) Type() MessageType { return MsgPlayerKill }
func (m PlayerKill) Encode(w *buf.Writer) {
	writeIdentity(w, m.Killer)
	writeIdentity(w, m.Victim)
}
func decodePlayerKill(r *buf.Reader) (Message, error) {
	killer, err := readIdentity(r)
	if err != nil {
		return nil, err
	}
	victim, err := readIdentity(r)
	if err != nil {
		return nil, err
	}
	return PlayerKill{Killer: killer, Victim: victim}, nil
}

// PlayerScore carries one player's scoreboard line, used to populate a
// join snapshot without waiting for a live PlayerKill to arrive.
type PlayerScore struct {
	Player pool.Identity
	Kills  uint16
	Deaths uint16
}

func (PlayerScore) Type() MessageType { return MsgPlayerScore }
func (m PlayerScore) Encode(w *buf.Writer) {
	writeIdentity(w, m.Player)
	w.WriteU16(m.Kills)
	w.WriteU16(m.Deaths)
}
func decodePlayerScore(r *buf.Reader) (Message, error) {
	id, err := readIdentity(r)
	if err != nil {
		return nil, err
	}
	kills, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	deaths, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	return PlayerScore{Player: id, Kills: kills, Deaths: deaths}, nil
}

// Chat carries one chat line from Player.
type Chat struct {
	Player pool.Identity
	Text   string
}

func (Chat) Type() MessageType { return MsgChat }
func (m Chat) Encode(w *buf.Writer) {
	writeIdentity(w, m.Player)
	w.WriteBoundedString(m.Text, buf.PrefixU16, maxChatLength)
}
func decodeChat(r *buf.Reader) (Message, error) {
	id, err := readIdentity(r)
	if err != nil {
		return nil, err
	}
	text, err := r.ReadBoundedString(buf.PrefixU16, maxChatLength)
	if err != nil {
		return nil, err
	}
	return Chat{Player: id, Text: text}, nil
}

// Input is one client's per-tick input snapshot.
type Input struct {
	Move          vec.Vec2
	Aim           float32
	FirePrimary   bool
	FireSecondary bool
}

func (Input) Type() MessageType { return MsgInput }
func (m Input) Encode(w *buf.Writer) {
	writeVec2(w, m.Move)
	w.WriteF32(m.Aim)
	w.WriteBool(m.FirePrimary)
	w.WriteBool(m.FireSecondary)
}
func decodeInput(r *buf.Reader) (Message, error) {
	move, err := readVec2(r)
	if err != nil {
		return nil, err
	}
	aim, err := r.ReadF32()
	if err != nil {
		return nil, err
	}
	primary, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	secondary, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	return Input{Move: move, Aim: aim, FirePrimary: primary, FireSecondary: secondary}, nil
}

// EntityAdd introduces a newly spawned entity to the peer. AvatarHealth
// is meaningful only when Variant names the avatar variant; replication
// (C7) is what knows which variant tag that is — netproto just moves
// the byte.
type EntityAdd struct {
	Identity     pool.Identity
	Variant      uint8
	Position     vec.Vec2
	Orientation  float32
	AvatarHealth float32
}

func (EntityAdd) Type() MessageType { return MsgEntityAdd }
func (m EntityAdd) Encode(w *buf.Writer) {
	writeIdentity(w, m.Identity)
	w.WriteU8(m.Variant)
	writeVec2(w, m.Position)
	w.WriteF32(m.Orientation)
	w.WriteF32(m.AvatarHealth)
}
func decodeEntityAdd(r *buf.Reader) (Message, error) {
	id, err := readIdentity(r)
	if err != nil {
		return nil, err
	}
	variant, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	pos, err := readVec2(r)
	if err != nil {
		return nil, err
	}
	orientation, err := r.ReadF32()
	if err != nil {
		return nil, err
	}
	health, err := r.ReadF32()
	if err != nil {
		return nil, err
	}
	return EntityAdd{Identity: id, Variant: variant, Position: pos, Orientation: orientation, AvatarHealth: health}, nil
}

// EntityRemove retires an entity on the peer.
type EntityRemove struct {
	Identity pool.Identity
}

func (EntityRemove) Type() MessageType { return MsgEntityRemove }
func (m EntityRemove) Encode(w *buf.Writer) { writeIdentity(w, m.Identity) }
func decodeEntityRemove(r *buf.Reader) (Message, error) {
	id, err := readIdentity(r)
	if err != nil {
		return nil, err
	}
	return EntityRemove{Identity: id}, nil
}

// EntityUpdate carries a transform-and-avatar-state delta.
type EntityUpdate struct {
	Identity     pool.Identity
	Position     vec.Vec2
	Orientation  float32
	AvatarHealth float32
}

func (EntityUpdate) Type() MessageType { return MsgEntityUpdate }
func (m EntityUpdate) Encode(w *buf.Writer) {
	writeIdentity(w, m.Identity)
	writeVec2(w, m.Position)
	w.WriteF32(m.Orientation)
	w.WriteF32(m.AvatarHealth)
}
func decodeEntityUpdate(r *buf.Reader) (Message, error) {
	id, err := readIdentity(r)
	if err != nil {
		return nil, err
	}
	pos, err := readVec2(r)
	if err != nil {
		return nil, err
	}
	orientation, err := r.ReadF32()
	if err != nil {
		return nil, err
	}
	health, err := r.ReadF32()
	if err != nil {
		return nil, err
	}
	return EntityUpdate{Identity: id, Position: pos, Orientation: orientation, AvatarHealth: health}, nil
}

// ServerFull rejects a Connect because the roster is at capacity,
// distinct from a protocol-level Reject.
type ServerFull struct{}

func (ServerFull) Type() MessageType       { return MsgServerFull }
func (ServerFull) Encode(w *buf.Writer)    {}
func decodeServerFull(r *buf.Reader) (Message, error) { return ServerFull{}, nil }

// Discovery is the server's periodic multicast advertisement.
type Discovery struct {
	ServerName string
	Players    uint8
	MaxPlayers uint8
	Port       uint16
}

func (Discovery) Type() MessageType { return MsgDiscovery }
func (m Discovery) Encode(w *buf.Writer) {
	w.WriteBoundedString(m.ServerName, buf.PrefixU8, 32)
	w.WriteU8(m.Players)
	w.WriteU8(m.MaxPlayers)
	w.WriteU16(m.Port)
}
func decodeDiscovery(r *buf.Reader) (Message, error) {
	name, err := r.ReadBoundedString(buf.PrefixU8, 32)
	if err != nil {
		return nil, err
	}
	players, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	maxPlayers, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	port, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	return Discovery{ServerName: name, Players: players, MaxPlayers: maxPlayers, Port: port}, nil
}

// EncodeMessage appends m's variant tag and payload to w.
func EncodeMessage(w *buf.Writer, m Message) {
	w.WriteU8(uint8(m.Type()))
	m.Encode(w)
}

// DecodeMessage reads one message's tag and payload.
func DecodeMessage(r *buf.Reader) (Message, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	switch MessageType(tag) {
	case MsgConnect:
		return decodeConnect(r)
	case MsgDisconnect:
		return decodeDisconnect(r)
	case MsgReject:
		return decodeReject(r)
	case MsgClientJoin:
		return decodeClientJoin(r)
	case MsgClientLeave:
		return decodeClientLeave(r)
	case MsgPlayerName:
		return decodePlayerName(r)
	case MsgPlayerKill:
		return decodePlayerKill(r)
	case MsgPlayerScore:
		return decodePlayerScore(r)
	case MsgChat:
		return decodeChat(r)
	case MsgInput:
		return decodeInput(r)
	case MsgEntityAdd:
		return decodeEntityAdd(r)
	case MsgEntityRemove:
		return decodeEntityRemove(r)
	case MsgEntityUpdate:
		return decodeEntityUpdate(r)
	case MsgServerFull:
		return decodeServerFull(r)
	case MsgDiscovery:
		return decodeDiscovery(r)
	default:
		return nil, ErrMalformed
	}
}

// ParseStream decodes every message in r using try-read-scoped
// recovery: on the first overflow the tail is discarded cleanly and
// already-decoded messages are returned; a malformed message discards
// the whole packet instead, since a peer bug this deep is not locally
// recoverable at the message boundary.
func ParseStream(r *buf.Reader) ([]Message, error) {
	var out []Message
	for {
		var msg Message
		err := r.TryRead(func(tr *buf.Reader) error {
			m, decErr := DecodeMessage(tr)
			if decErr != nil {
				return decErr
			}
			msg = m
			return nil
		})
		if err != nil {
			if err == buf.ErrOverflow {
				return out, nil
			}
			return nil, err
		}
		out = append(out, msg)
	}
}
