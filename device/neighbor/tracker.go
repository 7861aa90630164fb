// Package neighbor records when each directly-connected peer was last heard
// from, for the /debug/state diagnostic surface only.
//
// This is a deliberately passive reduction of device/connection's keep-alive
// manager: that manager drops peers and fires a disconnect callback once a
// timeout elapses. This protocol has no link-down detection or route
// expiry, so Tracker never removes an entry or calls anything on timeout. It
// exists purely to answer "when did we last hear from R2", not to decide
// whether R2 is still reachable.
package neighbor

import (
	"log/slog"
	"sync"
	"time"
)

// State records the last time a neighbor was heard from.
type State struct {
	Name     string
	LastSeen time.Time
}

// Config configures a Tracker.
type Config struct {
	// Logger for tracker events. Falls back to slog.Default() if nil.
	Logger *slog.Logger
}

// Tracker records last-seen times for directly connected neighbors. It never
// expires an entry: the absence of link-down detection is a property of the
// protocol, not a gap for this type to paper over.
type Tracker struct {
	log *slog.Logger

	mu    sync.Mutex
	peers map[string]*State

	// nowFn allows overriding time.Now() for testing.
	nowFn func() time.Time
}

// New creates a neighbor Tracker.
func New(cfg Config) *Tracker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		log:   logger.WithGroup("neighbor"),
		peers: make(map[string]*State),
		nowFn: time.Now,
	}
}

// Touch records that name was just heard from.
func (t *Tracker) Touch(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.peers[name]; ok {
		p.LastSeen = t.nowFn()
		return
	}
	t.peers[name] = &State{Name: name, LastSeen: t.nowFn()}
	t.log.Debug("neighbor first seen", "neighbor", name)
}

// Snapshot returns the last-seen time for every neighbor ever touched.
func (t *Tracker) Snapshot() map[string]time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]time.Time, len(t.peers))
	for name, p := range t.peers {
		out[name] = p.LastSeen
	}
	return out
}
