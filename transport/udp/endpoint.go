// Package udp implements a loopback UDP datagram link endpoint.
//
// One Endpoint owns one (input, output) port pair: an inbound listener bound
// to the input port, and an outbound drain loop that sends queued packets to
// the peer's input port. This corresponds to original_source's RouterPort
// (routing/router_port.py): a per-link thread pair, a bounded outbound
// queue, and a short-lived send socket per datagram.
package udp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/kprusa/dvrouted/transport"
)

// Compile-time interface check.
var _ transport.Endpoint = (*Endpoint)(nil)

const (
	// DefaultQueueSize is the default capacity of the outbound queue.
	DefaultQueueSize = 256

	// recvBufSize is the maximum datagram size this endpoint will read,
	// matching the wire format's 1024-byte cap.
	recvBufSize = 1024
)

// Config configures an Endpoint.
type Config struct {
	// InputPort is the local UDP port this endpoint listens on.
	InputPort int
	// OutputPort is the peer's input port this endpoint sends to.
	OutputPort int
	// QueueSize bounds the outbound queue. Default: 256.
	QueueSize int
	// Logger for endpoint events. Falls back to slog.Default() if nil.
	Logger *slog.Logger
}

// Endpoint implements transport.Endpoint over loopback UDP.
type Endpoint struct {
	cfg Config
	log *slog.Logger

	queue   chan []byte
	handler transport.PacketHandler

	conn      *net.UDPConn
	cancel    context.CancelFunc
	recvDone  chan struct{}
	sendDone  chan struct{}
}

// New creates an Endpoint bound to the given port pair. Start must be called
// before any datagrams are sent or received.
func New(cfg Config) *Endpoint {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Endpoint{
		cfg:   cfg,
		log:   logger.WithGroup("udp").With("input", cfg.InputPort, "output", cfg.OutputPort),
		queue: make(chan []byte, cfg.QueueSize),
	}
}

// InputPort returns the local listening port.
func (e *Endpoint) InputPort() int { return e.cfg.InputPort }

// OutputPort returns the peer's input port.
func (e *Endpoint) OutputPort() int { return e.cfg.OutputPort }

// SetPacketHandler installs the callback invoked for every received
// datagram. Must be called before Start.
func (e *Endpoint) SetPacketHandler(fn transport.PacketHandler) {
	e.handler = fn
}

// Enqueue accepts a pre-serialized packet for delivery to the peer. If the
// outbound queue is full, the packet is dropped and logged: the
// distance-vector protocol's periodic re-broadcast is the recovery path, not
// a retry here.
func (e *Endpoint) Enqueue(payload []byte) {
	select {
	case e.queue <- payload:
	default:
		e.log.Warn("outbound queue full, dropping packet")
	}
}

// Start binds the input listener and spawns the receive and send-drain
// loops.
func (e *Endpoint) Start(ctx context.Context) error {
	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: e.cfg.InputPort}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("binding input port %d: %w", e.cfg.InputPort, err)
	}
	e.conn = conn

	ctx, e.cancel = context.WithCancel(ctx)
	e.recvDone = make(chan struct{})
	e.sendDone = make(chan struct{})

	go e.recvLoop(ctx)
	go e.sendLoop(ctx)

	return nil
}

// Stop cancels both loops, closes the input socket (unblocking the receive
// loop), drains whatever remains queued, and waits for both loops to exit.
func (e *Endpoint) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	if e.conn != nil {
		_ = e.conn.Close()
	}
	if e.recvDone != nil {
		<-e.recvDone
	}
	if e.sendDone != nil {
		<-e.sendDone
	}
}

// recvLoop blocks on the input socket, invoking the packet handler
// synchronously for every datagram received. A read error after the
// endpoint's context is cancelled is the expected shutdown path, not a
// failure.
func (e *Endpoint) recvLoop(ctx context.Context) {
	defer close(e.recvDone)

	buf := make([]byte, recvBufSize)
	for {
		n, _, err := e.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			e.log.Error("read error", "error", err)
			return
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])

		if e.handler != nil {
			e.handler(payload)
		}
	}
}

// sendLoop drains the outbound queue, sending each packet over a fresh,
// short-lived socket to the peer's input port. On shutdown it empties
// whatever is already queued before exiting rather than abandoning it.
func (e *Endpoint) sendLoop(ctx context.Context) {
	defer close(e.sendDone)

	for {
		select {
		case payload := <-e.queue:
			e.sendOne(payload)
		case <-ctx.Done():
			for {
				select {
				case payload := <-e.queue:
					e.sendOne(payload)
				default:
					return
				}
			}
		}
	}
}

// sendOne opens a short-lived UDP socket to the peer's input port, sends one
// datagram, and closes it. A send failure is non-fatal and is logged: there
// is no retry, the protocol's periodic re-broadcast provides recovery.
func (e *Endpoint) sendOne(payload []byte) {
	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: e.cfg.OutputPort}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		e.log.Warn("send failed: could not open socket", "error", err)
		return
	}
	defer conn.Close()

	if _, err := conn.Write(payload); err != nil {
		e.log.Warn("send failed", "error", err)
	}
}
