package netproto

import (
	"errors"
	"net"
	"strconv"
	"time"

	"golang.org/x/net/ipv6"
)

const (
	// DiscoveryGroup is the site-local-scope multicast address servers
	// advertise on and clients listen to.
	DiscoveryGroup = "ff05::3"
	// DiscoveryPort is the UDP port discovery traffic uses, distinct
	// from a server's game port (advertised inside the Discovery
	// payload).
	DiscoveryPort = 32456
	// DiscoveryFrequency is how often a server re-broadcasts.
	DiscoveryFrequency = 1 * time.Second
	// DiscoveryTimeout is how long a client keeps a discovered server
	// listed after its last advertisement.
	DiscoveryTimeout = 5 * time.Second
)

// DiscoveryListener joins the discovery multicast group on every
// interface capable of it, for a client building its server list.
type DiscoveryListener struct {
	conn *net.UDPConn
	pc   *ipv6.PacketConn
}

func ListenDiscovery() (*DiscoveryListener, error) {
	addr, err := net.ResolveUDPAddr("udp6", net.JoinHostPort(DiscoveryGroup, strconv.Itoa(DiscoveryPort)))
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp6", &net.UDPAddr{Port: DiscoveryPort})
	if err != nil {
		return nil, err
	}
	pc := ipv6.NewPacketConn(conn)

	ifaces, err := net.Interfaces()
	if err != nil {
		conn.Close()
		return nil, err
	}
	joined := 0
	for _, iface := range ifaces {
		if iface.Flags&net.FlagMulticast == 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		if err := pc.JoinGroup(&iface, addr); err == nil {
			joined++
		}
	}
	if joined == 0 {
		conn.Close()
		return nil, errNoMulticastInterface
	}
	return &DiscoveryListener{conn: conn, pc: pc}, nil
}

// ReadFrom blocks for the next discovery datagram.
func (d *DiscoveryListener) ReadFrom(buf []byte) (int, net.Addr, error) {
	return d.conn.ReadFrom(buf)
}

func (d *DiscoveryListener) Close() error {
	return d.conn.Close()
}

// DiscoveryBroadcaster periodically sends a Discovery message to the
// multicast group on behalf of a running server.
type DiscoveryBroadcaster struct {
	conn *net.UDPConn
	dst  *net.UDPAddr
}

func NewDiscoveryBroadcaster(hopLimit int) (*DiscoveryBroadcaster, error) {
	conn, err := net.ListenUDP("udp6", &net.UDPAddr{})
	if err != nil {
		return nil, err
	}
	pc := ipv6.NewPacketConn(conn)
	if hopLimit > 0 {
		_ = pc.SetMulticastHopLimit(hopLimit)
	}
	dst, err := net.ResolveUDPAddr("udp6", net.JoinHostPort(DiscoveryGroup, strconv.Itoa(DiscoveryPort)))
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &DiscoveryBroadcaster{conn: conn, dst: dst}, nil
}

// Send writes a pre-encoded Discovery payload to the group.
func (b *DiscoveryBroadcaster) Send(payload []byte) error {
	_, err := b.conn.WriteTo(payload, b.dst)
	return err
}

func (b *DiscoveryBroadcaster) Close() error {
	return b.conn.Close()
}

var errNoMulticastInterface = errors.New("netproto: no multicast-capable interface available")
