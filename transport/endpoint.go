// Package transport defines the link-endpoint contract routers use to talk
// to their neighbors. The only implementation in this repository is
// transport/udp, a loopback UDP datagram link, but routing code depends only
// on this interface so it can be driven by a mock endpoint in tests.
package transport

import "context"

// PacketHandler is invoked with the raw payload of every datagram an
// Endpoint receives. It must be safe to call from a background goroutine and
// is expected to run to completion before the endpoint processes the next
// datagram.
type PacketHandler func(payload []byte)

// Endpoint is a full-duplex local link to one neighbor, bound to a specific
// (input, output) port pair at construction.
type Endpoint interface {
	// Enqueue accepts a pre-serialized packet for delivery to the peer. It
	// never blocks the caller beyond bounded queue admission and does not
	// confirm delivery.
	Enqueue(payload []byte)

	// InputPort returns the local port this endpoint listens on.
	InputPort() int

	// OutputPort returns the peer's input port this endpoint sends to.
	OutputPort() int

	// SetPacketHandler installs the callback invoked for every received
	// datagram. It must be called before Start.
	SetPacketHandler(fn PacketHandler)

	// Start binds the listener and begins the receive and send-drain loops.
	// The endpoint's background work runs until ctx is cancelled or Stop is
	// called. A bind failure is returned and is fatal for this endpoint.
	Start(ctx context.Context) error

	// Stop signals both loops to terminate and waits for them. Calling
	// Enqueue after Stop returns is undefined.
	Stop()
}
