// Package metrics exposes a router's protocol counters as Prometheus
// counters, plus a gauge for the distance-vector size, and serves a small
// debug HTTP surface for inspecting live
// distance-vector and route-table state.
//
// This corresponds to device/router/counters.go's CountersSnapshot, pushed
// through github.com/prometheus/client_golang the way
// distribution-distribution/metrics/prometheus.go wires its registry.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kprusa/dvrouted/device/router"
)

const namespace = "dvrouted"

// Registry collects counters from every router registered with it and
// exposes them to Prometheus.
type Registry struct {
	mu      sync.Mutex
	routers map[string]*router.Router

	packetsRecv          *prometheus.Desc
	delivered            *prometheus.Desc
	forwarded            *prometheus.Desc
	hellosSent           *prometheus.Desc
	updatesSent          *prometheus.Desc
	triggeredUpdatesSent *prometheus.Desc
	droppedMalformed     *prometheus.Desc
	droppedHopExhausted  *prometheus.Desc
	droppedNoEndpoint    *prometheus.Desc
	distanceVectorSize   *prometheus.Desc
}

// NewRegistry creates an empty Registry. It implements
// prometheus.Collector and should be registered with a
// prometheus.Registerer.
func NewRegistry() *Registry {
	labels := []string{"router"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Registry{
		routers:              make(map[string]*router.Router),
		packetsRecv:          desc("packets_received_total", "Packets received on any endpoint."),
		delivered:            desc("packets_delivered_total", "Packets addressed to this router and delivered locally."),
		forwarded:            desc("packets_forwarded_total", "Transit packets forwarded."),
		hellosSent:           desc("hellos_sent_total", "Hello broadcasts sent, summed across endpoints."),
		updatesSent:          desc("updates_sent_total", "Periodic update broadcasts sent, summed across endpoints."),
		triggeredUpdatesSent: desc("triggered_updates_sent_total", "Triggered update broadcasts sent, summed across endpoints."),
		droppedMalformed:     desc("packets_dropped_malformed_total", "Packets dropped for being malformed."),
		droppedHopExhausted:  desc("packets_dropped_hop_exhausted_total", "Packets dropped for reaching the hop ceiling."),
		droppedNoEndpoint:    desc("packets_dropped_no_endpoint_total", "Transit packets dropped for lacking a usable endpoint."),
		distanceVectorSize:   desc("distance_vector_size", "Number of entries in the router's distance vector."),
	}
}

// RegisterRouter adds a router to the set this registry reports on, keyed
// by its name.
func (r *Registry) RegisterRouter(name string, rt *router.Router) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routers[name] = rt
}

// Describe implements prometheus.Collector.
func (r *Registry) Describe(ch chan<- *prometheus.Desc) {
	ch <- r.packetsRecv
	ch <- r.delivered
	ch <- r.forwarded
	ch <- r.hellosSent
	ch <- r.updatesSent
	ch <- r.triggeredUpdatesSent
	ch <- r.droppedMalformed
	ch <- r.droppedHopExhausted
	ch <- r.droppedNoEndpoint
	ch <- r.distanceVectorSize
}

// Collect implements prometheus.Collector.
func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	r.mu.Lock()
	snapshot := make(map[string]*router.Router, len(r.routers))
	for name, rt := range r.routers {
		snapshot[name] = rt
	}
	r.mu.Unlock()

	for name, rt := range snapshot {
		c := rt.Counters().Snapshot()
		ch <- prometheus.MustNewConstMetric(r.packetsRecv, prometheus.CounterValue, float64(c.PacketsRecv), name)
		ch <- prometheus.MustNewConstMetric(r.delivered, prometheus.CounterValue, float64(c.Delivered), name)
		ch <- prometheus.MustNewConstMetric(r.forwarded, prometheus.CounterValue, float64(c.Forwarded), name)
		ch <- prometheus.MustNewConstMetric(r.hellosSent, prometheus.CounterValue, float64(c.HellosSent), name)
		ch <- prometheus.MustNewConstMetric(r.updatesSent, prometheus.CounterValue, float64(c.UpdatesSent), name)
		ch <- prometheus.MustNewConstMetric(r.triggeredUpdatesSent, prometheus.CounterValue, float64(c.TriggeredUpdatesSent), name)
		ch <- prometheus.MustNewConstMetric(r.droppedMalformed, prometheus.CounterValue, float64(c.DroppedMalformed), name)
		ch <- prometheus.MustNewConstMetric(r.droppedHopExhausted, prometheus.CounterValue, float64(c.DroppedHopExhausted), name)
		ch <- prometheus.MustNewConstMetric(r.droppedNoEndpoint, prometheus.CounterValue, float64(c.DroppedNoEndpoint), name)
		ch <- prometheus.MustNewConstMetric(r.distanceVectorSize, prometheus.GaugeValue, float64(len(rt.DistanceVector())), name)
	}
}
