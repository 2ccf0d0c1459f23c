// Package netproto implements the UDP packet/channel protocol: header
// framing, message encode/decode, reliable/unreliable channel
// bookkeeping, the per-peer connection state machine, and multicast
// server discovery.
package netproto

import "errors"

var (
	// ErrWrongApplication is returned when a packet's application
	// identifier doesn't match ours; the packet is silently dropped.
	ErrWrongApplication = errors.New("netproto: wrong application identifier")
	// ErrWrongRevision is returned when a packet's protocol revision
	// doesn't match ours; the packet is silently dropped.
	ErrWrongRevision = errors.New("netproto: unsupported protocol revision")
	// ErrMalformed reports bytes that passed length checks but fail
	// semantic validation (an unknown message tag): the whole packet is
	// discarded. An oversize string length is not reported as malformed:
	// the codec returns it as buf.ErrOverflow, and ParseStream treats it
	// like a truncated tail, keeping the messages decoded before it.
	ErrMalformed = errors.New("netproto: malformed message")
)
