// Package table owns the two tables a router mutates as it converges: the
// distance vector and the route table, plus the dirty flag that gates
// triggered updates. A single mutex protects all three, matching the
// concurrency design for a router with many endpoints delivering packets
// that mutate shared state from different goroutines.
package table

import "sync"

// Table holds a router's distance vector, route table, and dirty flag.
type Table struct {
	mu    sync.Mutex
	self  string
	dv    map[string]int
	route map[string]int
	dirty bool
}

// New creates a Table for the given router name, seeding distance[self] = 0.
func New(self string) *Table {
	return &Table{
		self:  self,
		dv:    map[string]int{self: 0},
		route: make(map[string]int),
	}
}

// Self returns the name this table's owner registered under.
func (t *Table) Self() string {
	return t.self
}

// Distance returns the known distance to name and whether it is present.
func (t *Table) Distance(name string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.dv[name]
	return d, ok
}

// RouteFor returns the output port for name and whether it is present.
func (t *Table) RouteFor(name string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	port, ok := t.route[name]
	return port, ok
}

// Snapshot returns a defensive copy of the distance vector, safe to hand to
// a broadcast builder without holding the table lock while it is serialized.
func (t *Table) Snapshot() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, len(t.dv))
	for k, v := range t.dv {
		out[k] = v
	}
	return out
}

// RouteSnapshot returns a defensive copy of the route table.
func (t *Table) RouteSnapshot() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, len(t.route))
	for k, v := range t.route {
		out[k] = v
	}
	return out
}

// ApplyBroadcast applies the receive-processing rule for a Hello or Update
// broadcast carrying vector at hop h, received on the endpoint whose output
// port is viaPort. For each (name, d) in vector, if name is unknown locally
// or d+h improves on the current distance, the entry is adopted and routed
// via viaPort, and the dirty flag is set.
//
// Equal cost never replaces an existing entry — the first path discovered
// wins, which is what keeps routes stable under repeated updates. An entry
// advertising the receiver's own name is accepted like any other: since
// distance[self] is always 0 and d+h is never negative, the comparison never
// holds and no change occurs.
func (t *Table) ApplyBroadcast(vector map[string]int, h int, viaPort int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name, d := range vector {
		cur, ok := t.dv[name]
		if !ok || d+h < cur {
			t.dv[name] = d + h
			t.route[name] = viaPort
			t.dirty = true
		}
	}
}

// ConsumeDirty reads and clears the dirty flag in one atomic step. This is
// the only way the flag is cleared; the triggered-update decision is the
// flag's sole consumer.
func (t *Table) ConsumeDirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.dirty
	t.dirty = false
	return d
}
