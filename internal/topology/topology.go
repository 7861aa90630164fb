// Package topology builds and runs a set of routers from a JSON topology
// description, the thin harness this specification treats as an external
// collaborator.
//
// This corresponds to original_source's topology.py: read a JSON file,
// construct one Router per entry sharing a common update interval, start
// them all, and reverse the order on shutdown.
package topology

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kprusa/dvrouted/core"
	"github.com/kprusa/dvrouted/device/router"
	"github.com/kprusa/dvrouted/transport"
	"github.com/kprusa/dvrouted/transport/udp"
)

// PortPair is one endpoint's (input, output) port configuration.
type PortPair struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// RouterSpec describes one router entry in a topology file.
type RouterSpec struct {
	Name  string     `json:"name"`
	Ports []PortPair `json:"ports"`
}

// File is the top-level shape of a topology document.
type File struct {
	Routers []RouterSpec `json:"routers"`
}

// Load reads and parses a topology file from path.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology file: %w", err)
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing topology file: %w", err)
	}
	return &f, nil
}

// Topology is a constructed set of routers sharing one update interval.
type Topology struct {
	routers []*router.Router
	log     *slog.Logger
}

// Build constructs one Router per entry in f, with the given shared update
// interval. Routers are not started; call StartAll.
func Build(f *File, updateInterval time.Duration, logger *slog.Logger) (*Topology, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Topology{log: logger.WithGroup("topology")}

	for _, spec := range f.Routers {
		endpoints := make([]transport.Endpoint, 0, len(spec.Ports))
		for _, pp := range spec.Ports {
			endpoints = append(endpoints, udp.New(udp.Config{
				InputPort:  pp.Input,
				OutputPort: pp.Output,
				Logger:     logger,
			}))
		}

		r, err := router.New(router.Config{
			Name:           core.RouterName(spec.Name),
			Endpoints:      endpoints,
			UpdateInterval: updateInterval,
			Logger:         logger,
		})
		if err != nil {
			return nil, fmt.Errorf("constructing router %q: %w", spec.Name, err)
		}
		t.routers = append(t.routers, r)
	}

	return t, nil
}

// Routers returns the constructed routers in topology-file order.
func (t *Topology) Routers() []*router.Router {
	return t.routers
}

// StartAll starts every router concurrently. No ordering is required
// between different routers' startup broadcasts; the protocol tolerates any
// interleaving. If any router fails to start, the others that already
// started are left running — callers should call StopAll on error.
func (t *Topology) StartAll(ctx context.Context) error {
	var g errgroup.Group
	for _, r := range t.routers {
		r := r
		g.Go(func() error {
			return r.Start(ctx)
		})
	}
	return g.Wait()
}

// StopAll stops every router in reverse construction order.
func (t *Topology) StopAll() {
	for i := len(t.routers) - 1; i >= 0; i-- {
		if err := t.routers[i].Stop(); err != nil {
			t.log.Warn("error stopping router", "error", err)
		}
	}
}
