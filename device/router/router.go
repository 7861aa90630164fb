// Package router implements the distance-vector routing core: it owns the
// distance vector and route table, originates Hello and Update broadcasts,
// forwards transit traffic, and delivers self-destined traffic to a local
// sink.
//
// This corresponds to original_source's Router class
// (routing/router.py), generalized from its fixed two-table, single-mutex
// design into a router driven by injected transport.Endpoint values so it
// can be exercised with a mock endpoint in tests.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/kprusa/dvrouted/core"
	"github.com/kprusa/dvrouted/core/codec"
	"github.com/kprusa/dvrouted/core/table"
	"github.com/kprusa/dvrouted/device/neighbor"
	"github.com/kprusa/dvrouted/device/schedule"
	"github.com/kprusa/dvrouted/transport"
)

// MaxHop is the hop ceiling applied to transit data packets. A packet whose
// hop counter has reached this value is dropped rather than forwarded.
const MaxHop = 16

// DefaultUpdateInterval is the period between scheduled Update broadcasts
// when Config.UpdateInterval is left zero.
const DefaultUpdateInterval = 10 * time.Second

// ErrNoName is returned by New when Config.Name is empty or reserved.
var ErrNoName = errors.New("router: name is required")

// ErrNoEndpoints is returned by New when Config.Endpoints is empty.
var ErrNoEndpoints = errors.New("router: at least one endpoint is required")

// ErrAlreadyStarted is returned by Start when the router is not in the
// constructed state.
var ErrAlreadyStarted = errors.New("router: already started")

// ErrNotRunning is returned by Stop when the router is not running.
var ErrNotRunning = errors.New("router: not running")

// DeliverFunc is invoked for every packet addressed to this router. The
// default implementation logs the standard success line.
type DeliverFunc func(msg string)

// Config configures a Router.
type Config struct {
	// Name is this router's symbolic identity, unique within the topology.
	Name core.RouterName

	// Endpoints are this router's links to its neighbors. Each must already
	// be constructed (bound to its port pair) but not yet started; Router
	// calls Start/Stop on them itself.
	Endpoints []transport.Endpoint

	// UpdateInterval is the period between scheduled Update broadcasts.
	// Default: 10s.
	UpdateInterval time.Duration

	// Deliver is called with the data payload's msg field whenever a packet
	// addressed to this router arrives. If nil, the message is logged as
	// "[name] Success! Data: msg".
	Deliver DeliverFunc

	// Rand supplies randomness for the unknown-destination fallback policy.
	// Defaults to a source seeded from the current time.
	Rand *rand.Rand

	// Counters receives protocol and forwarding statistics. If nil, a
	// private Counters is used and is reachable via Router.Counters.
	Counters *Counters

	// Logger for routing events. Falls back to slog.Default() if nil.
	Logger *slog.Logger
}

type state int

const (
	stateConstructed state = iota
	stateRunning
	stateStopping
	stateStopped
)

type endpointEntry struct {
	endpoint transport.Endpoint
	output   int
}

// Router is one node of the simulated network: a distance vector, a route
// table, and the set of link endpoints connecting it to its neighbors.
type Router struct {
	cfg Config
	log *slog.Logger

	table     *table.Table
	neighbors *neighbor.Tracker
	scheduler *schedule.Scheduler
	counters  *Counters
	endpoints []endpointEntry

	rngMu sync.Mutex
	rng   *rand.Rand

	mu    sync.Mutex
	st    state
	deliver DeliverFunc
}

// New creates a Router. The Hello broadcast for each endpoint is built and
// enqueued immediately, matching original_source's constructor: the packet
// is queued before any endpoint socket exists, and is only actually
// transmitted once Start flushes the queue.
func New(cfg Config) (*Router, error) {
	if err := cfg.Name.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoName, err)
	}
	if len(cfg.Endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = DefaultUpdateInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.WithGroup("router").With("router", cfg.Name.String())

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	counters := cfg.Counters
	if counters == nil {
		counters = &Counters{}
	}

	deliver := cfg.Deliver
	if deliver == nil {
		deliver = func(msg string) {
			logger.Info(fmt.Sprintf("[%s] Success! Data: %s", cfg.Name, msg))
		}
	}

	r := &Router{
		cfg:       cfg,
		log:       logger,
		table:     table.New(cfg.Name.String()),
		neighbors: neighbor.New(neighbor.Config{Logger: logger}),
		counters:  counters,
		rng:       rng,
		deliver:   deliver,
	}

	for _, ep := range cfg.Endpoints {
		entry := endpointEntry{endpoint: ep, output: ep.OutputPort()}
		r.endpoints = append(r.endpoints, entry)

		local := ep
		local.SetPacketHandler(func(payload []byte) {
			r.handlePacket(payload, local)
		})
	}

	r.scheduler = schedule.New(r.sendUpdate, schedule.Config{
		UpdateInterval: cfg.UpdateInterval,
		Logger:         logger,
	})

	for _, entry := range r.endpoints {
		if err := r.sendHello(entry.endpoint); err != nil {
			return nil, fmt.Errorf("building initial hello: %w", err)
		}
	}

	return r, nil
}

// Start brings up every endpoint and begins the periodic update schedule.
// Matching original_source's start(), the first Update broadcast is built
// and enqueued before the endpoints are started, so it is flushed alongside
// the constructor's queued Hello the moment each listener comes up.
func (r *Router) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.st != stateConstructed {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.st = stateRunning
	r.mu.Unlock()

	if err := r.sendUpdateBroadcast(); err != nil {
		r.log.Warn("failed to build initial update broadcast", "error", err)
	}

	started := make([]transport.Endpoint, 0, len(r.endpoints))
	for _, entry := range r.endpoints {
		if err := entry.endpoint.Start(ctx); err != nil {
			for _, s := range started {
				s.Stop()
			}
			r.mu.Lock()
			r.st = stateConstructed
			r.mu.Unlock()
			return fmt.Errorf("starting endpoint on output port %d: %w", entry.output, err)
		}
		started = append(started, entry.endpoint)
	}

	go r.scheduler.Start(ctx)

	return nil
}

// Stop cancels the periodic schedule and stops every endpoint, waiting for
// their background work to drain.
func (r *Router) Stop() error {
	r.mu.Lock()
	if r.st != stateRunning {
		r.mu.Unlock()
		return ErrNotRunning
	}
	r.st = stateStopping
	r.mu.Unlock()

	r.scheduler.Stop()
	for _, entry := range r.endpoints {
		entry.endpoint.Stop()
	}

	r.mu.Lock()
	r.st = stateStopped
	r.mu.Unlock()
	return nil
}

// Name returns this router's symbolic identity.
func (r *Router) Name() string {
	return r.cfg.Name.String()
}

// DistanceVector returns a snapshot of this router's distance vector.
func (r *Router) DistanceVector() map[string]int {
	return r.table.Snapshot()
}

// RouteTable returns a snapshot of this router's route table.
func (r *Router) RouteTable() map[string]int {
	return r.table.RouteSnapshot()
}

// Neighbors returns a snapshot of last-seen times for neighbors heard from
// directly.
func (r *Router) Neighbors() map[string]time.Time {
	return r.neighbors.Snapshot()
}

// Counters returns this router's protocol and forwarding statistics.
func (r *Router) Counters() *Counters {
	return r.counters
}

// handlePacket is the inbound callback installed on every endpoint. It
// implements the classification order from §4.2: malformed, self-destined,
// broadcast control, transit.
func (r *Router) handlePacket(payload []byte, via transport.Endpoint) {
	r.counters.PacketsRecv.Add(1)

	pkt, err := codec.Decode(payload)
	if err != nil {
		r.counters.DroppedMalformed.Add(1)
		r.log.Debug("dropping malformed packet", "error", err)
		return
	}

	switch {
	case pkt.Destination == r.cfg.Name.String():
		r.handleSelfDestined(pkt)
	case pkt.Destination == core.Broadcast:
		r.handleBroadcast(pkt, via)
	default:
		r.handleTransit(pkt, via)
	}
}

func (r *Router) handleSelfDestined(pkt *codec.Packet) {
	dp, err := pkt.DecodeDataPayload()
	if err != nil {
		r.counters.DroppedMalformed.Add(1)
		r.log.Debug("dropping malformed data payload", "error", err)
		return
	}
	r.counters.Delivered.Add(1)
	r.deliver(dp.Msg)
}

func (r *Router) handleBroadcast(pkt *codec.Packet, via transport.Endpoint) {
	cd, err := pkt.DecodeControlData()
	if err != nil {
		r.counters.DroppedMalformed.Add(1)
		r.log.Debug("dropping malformed control packet", "error", err)
		return
	}

	r.neighbors.Touch(cd.Name)
	r.table.ApplyBroadcast(cd.DVector, pkt.Hop, via.OutputPort())

	// The dirty flag is only inspected, and only cleared, while processing
	// an Update. A Hello that produces a change leaves the flag set for a
	// later Update to consume; this is what prevents a Hello-triggered
	// broadcast storm at bootstrap.
	if !cd.IsHello() && r.table.ConsumeDirty() {
		if err := r.sendUpdateBroadcast(); err != nil {
			r.log.Warn("failed to build triggered update", "error", err)
			return
		}
		r.counters.TriggeredUpdatesSent.Add(uint32(len(r.endpoints)))
	}
}

func (r *Router) handleTransit(pkt *codec.Packet, via transport.Endpoint) {
	if pkt.Hop >= MaxHop {
		r.counters.DroppedHopExhausted.Add(1)
		r.log.Debug("dropping packet at hop ceiling", "destination", pkt.Destination, "hop", pkt.Hop)
		return
	}

	target, ok := r.endpointForDestination(pkt.Destination)
	if !ok {
		r.counters.DroppedNoEndpoint.Add(1)
		r.log.Debug("dropping transit packet: no usable endpoint", "destination", pkt.Destination)
		return
	}

	fwd := pkt.WithHop(pkt.Hop + 1)
	raw, err := fwd.Encode()
	if err != nil {
		r.log.Warn("failed to encode forwarded packet", "error", err)
		return
	}
	target.Enqueue(raw)
	r.counters.Forwarded.Add(1)
}

// endpointForDestination resolves the outbound endpoint for a transit
// packet: the route table entry if present and still backed by a live
// endpoint, otherwise a uniformly random endpoint (optimistic flood).
func (r *Router) endpointForDestination(destination string) (transport.Endpoint, bool) {
	if port, ok := r.table.RouteFor(destination); ok {
		for _, entry := range r.endpoints {
			if entry.output == port {
				return entry.endpoint, true
			}
		}
		return nil, false
	}

	if len(r.endpoints) == 0 {
		return nil, false
	}
	r.rngMu.Lock()
	idx := r.rng.Intn(len(r.endpoints))
	r.rngMu.Unlock()
	return r.endpoints[idx].endpoint, true
}

// sendHello builds and enqueues a Hello broadcast on one endpoint.
func (r *Router) sendHello(ep transport.Endpoint) error {
	pkt, err := codec.BuildControlPacket(r.cfg.Name.String(), ep.InputPort(), true, "Hello Request", r.table.Snapshot())
	if err != nil {
		return err
	}
	raw, err := pkt.Encode()
	if err != nil {
		return err
	}
	ep.Enqueue(raw)
	r.counters.HellosSent.Add(1)
	return nil
}

// sendUpdateBroadcast builds and enqueues an Update broadcast on every
// endpoint.
func (r *Router) sendUpdateBroadcast() error {
	vector := r.table.Snapshot()
	for _, entry := range r.endpoints {
		pkt, err := codec.BuildControlPacket(r.cfg.Name.String(), entry.endpoint.InputPort(), false, "Update Broadcast", vector)
		if err != nil {
			return err
		}
		raw, err := pkt.Encode()
		if err != nil {
			return err
		}
		entry.endpoint.Enqueue(raw)
	}
	return nil
}

// sendUpdate is the scheduler's periodic broadcast callback.
func (r *Router) sendUpdate() {
	if err := r.sendUpdateBroadcast(); err != nil {
		r.log.Warn("failed to build scheduled update", "error", err)
		return
	}
	r.counters.UpdatesSent.Add(uint32(len(r.endpoints)))
}
