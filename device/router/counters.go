package router

import "sync/atomic"

// Counters tracks packet routing and protocol statistics using atomic
// counters. All fields are safe for concurrent access.
type Counters struct {
	PacketsRecv          atomic.Uint32 // Total packets received
	Delivered            atomic.Uint32 // Packets addressed to self, delivered to the sink
	Forwarded            atomic.Uint32 // Transit packets forwarded
	HellosSent           atomic.Uint32 // Hello broadcasts sent (per endpoint)
	UpdatesSent          atomic.Uint32 // Periodic update broadcasts sent (per endpoint)
	TriggeredUpdatesSent atomic.Uint32 // Triggered update broadcasts sent (per endpoint)
	DroppedMalformed     atomic.Uint32 // Packets dropped: malformed JSON or missing fields
	DroppedHopExhausted  atomic.Uint32 // Packets dropped: hop >= MAX_HOP
	DroppedNoEndpoint    atomic.Uint32 // Packets dropped: route table pointed at a torn-down endpoint
}

// CountersSnapshot is a plain-value copy of Counters for reading.
type CountersSnapshot struct {
	PacketsRecv          uint32
	Delivered            uint32
	Forwarded            uint32
	HellosSent           uint32
	UpdatesSent          uint32
	TriggeredUpdatesSent uint32
	DroppedMalformed     uint32
	DroppedHopExhausted  uint32
	DroppedNoEndpoint    uint32
}

// Snapshot returns a consistent point-in-time copy of all counters.
func (c *Counters) Snapshot() CountersSnapshot {
	return CountersSnapshot{
		PacketsRecv:          c.PacketsRecv.Load(),
		Delivered:            c.Delivered.Load(),
		Forwarded:            c.Forwarded.Load(),
		HellosSent:           c.HellosSent.Load(),
		UpdatesSent:          c.UpdatesSent.Load(),
		TriggeredUpdatesSent: c.TriggeredUpdatesSent.Load(),
		DroppedMalformed:     c.DroppedMalformed.Load(),
		DroppedHopExhausted:  c.DroppedHopExhausted.Load(),
		DroppedNoEndpoint:    c.DroppedNoEndpoint.Load(),
	}
}
