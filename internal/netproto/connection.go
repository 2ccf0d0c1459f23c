package netproto

import (
	"net"
	"time"
)

// State is a connection's position in the handshake/liveness state
// machine.
type State int

const (
	Closed State = iota
	Connecting
	Connected
	Lagging
	Dropped
	Faulted
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Lagging:
		return "lagging"
	case Dropped:
		return "dropped"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

const (
	// LaggingTimeout is how long without an inbound packet before a
	// Connected peer is marked Lagging (still tracked, input distrusted).
	LaggingTimeout = 500 * time.Millisecond
)

// Connection tracks one remote peer's liveness and reliable/unreliable
// channel state. It does not own the socket; the session loop reads
// datagrams and feeds this with Touch/Advance.
type Connection struct {
	Remote      net.Addr
	state       State
	lastRecv    time.Time
	Reliable    *Channel
	Unreliable  *Channel
}

func NewConnection(remote net.Addr) *Connection {
	return &Connection{
		Remote:     remote,
		state:      Connecting,
		Reliable:   NewChannel(),
		Unreliable: NewChannel(),
	}
}

func (c *Connection) State() State { return c.state }

// Touch records a just-received packet, returning the connection to
// Connected from Connecting or Lagging.
func (c *Connection) Touch(now time.Time) {
	c.lastRecv = now
	switch c.state {
	case Connecting, Lagging:
		c.state = Connected
	}
}

// Accept completes the handshake once a Connect has been answered.
func (c *Connection) Accept(now time.Time) {
	c.state = Connected
	c.lastRecv = now
}

// Fault marks the connection unusable after a protocol violation
// (malformed packet, wrong application id/revision on a packet that
// otherwise matched an established peer address).
func (c *Connection) Fault() {
	c.state = Faulted
}

// Advance reevaluates liveness against the clock: Connected peers that
// have gone quiet past LaggingTimeout become Lagging, and any peer
// quiet past DroppedTimeout leaves service — Connecting peers fault out
// (the handshake never completed), everyone else is declared Dropped.
func (c *Connection) Advance(now time.Time) {
	if c.state == Closed || c.state == Dropped || c.state == Faulted {
		return
	}
	idle := now.Sub(c.lastRecv)
	switch {
	case idle >= DroppedTimeout && c.state == Connecting:
		c.state = Faulted
	case idle >= DroppedTimeout:
		c.state = Dropped
	case idle >= LaggingTimeout && c.state == Connected:
		c.state = Lagging
	}
}

// Close transitions a connection out of service deliberately (peer
// sent Disconnect, or the session is shutting down), as distinct from
// Dropped's timeout-driven path.
func (c *Connection) Close() {
	c.state = Closed
}
