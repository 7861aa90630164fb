// Package inject implements the trivial one-shot datagram injector used to
// drive a running topology from outside: open a socket, send one packet,
// close it.
//
// This corresponds to original_source's send_packet.py.
package inject

import (
	"fmt"
	"net"

	"github.com/kprusa/dvrouted/core/codec"
)

// Send builds a data packet addressed to destination carrying msg at the
// given hop count, and sends it to the router listening on the loopback
// port.
func Send(port int, destination, msg string, hop int) error {
	pkt, err := codec.BuildDataPacket(destination, msg, hop)
	if err != nil {
		return fmt.Errorf("building packet: %w", err)
	}
	raw, err := pkt.Encode()
	if err != nil {
		return fmt.Errorf("encoding packet: %w", err)
	}

	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return fmt.Errorf("opening socket to port %d: %w", port, err)
	}
	defer conn.Close()

	if _, err := conn.Write(raw); err != nil {
		return fmt.Errorf("sending to port %d: %w", port, err)
	}
	return nil
}
