package netproto_test

import (
	"net"
	"testing"
	"time"

	"github.com/lowlatency/arena/internal/netproto"
	"github.com/stretchr/testify/assert"
)

func TestNewConnectionStartsConnecting(t *testing.T) {
	c := netproto.NewConnection(&net.UDPAddr{})
	assert.Equal(t, netproto.Connecting, c.State())
}

func TestTouchFromConnectingBecomesConnected(t *testing.T) {
	c := netproto.NewConnection(&net.UDPAddr{})
	c.Touch(time.Now())
	assert.Equal(t, netproto.Connected, c.State())
}

func TestAdvancePastLaggingTimeoutMarksLagging(t *testing.T) {
	c := netproto.NewConnection(&net.UDPAddr{})
	now := time.Now()
	c.Touch(now)
	c.Advance(now.Add(netproto.LaggingTimeout + time.Millisecond))
	assert.Equal(t, netproto.Lagging, c.State())
}

func TestAdvancePastDroppedTimeoutMarksDropped(t *testing.T) {
	c := netproto.NewConnection(&net.UDPAddr{})
	now := time.Now()
	c.Touch(now)
	c.Advance(now.Add(netproto.DroppedTimeout + time.Millisecond))
	assert.Equal(t, netproto.Dropped, c.State())
}

func TestTouchFromLaggingReturnsToConnected(t *testing.T) {
	c := netproto.NewConnection(&net.UDPAddr{})
	now := time.Now()
	c.Touch(now)
	c.Advance(now.Add(netproto.LaggingTimeout + time.Millisecond))
	assert.Equal(t, netproto.Lagging, c.State())

	c.Touch(now.Add(netproto.LaggingTimeout + 2*time.Millisecond))
	assert.Equal(t, netproto.Connected, c.State())
}

func TestAdvancePastDroppedTimeoutWhileConnectingFaults(t *testing.T) {
	c := netproto.NewConnection(&net.UDPAddr{})
	c.Advance(time.Now().Add(netproto.DroppedTimeout + time.Millisecond))
	assert.Equal(t, netproto.Faulted, c.State())
}

func TestFaultIsSticky(t *testing.T) {
	c := netproto.NewConnection(&net.UDPAddr{})
	c.Fault()
	c.Advance(time.Now())
	assert.Equal(t, netproto.Faulted, c.State())
}

func TestCloseIsTerminal(t *testing.T) {
	c := netproto.NewConnection(&net.UDPAddr{})
	c.Close()
	assert.Equal(t, netproto.Closed, c.State())
}
