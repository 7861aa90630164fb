package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kprusa/dvrouted/device/router"
	"github.com/kprusa/dvrouted/transport"
)

type noopEndpoint struct{ input, output int }

func (e *noopEndpoint) Enqueue([]byte)                           {}
func (e *noopEndpoint) InputPort() int                           { return e.input }
func (e *noopEndpoint) OutputPort() int                          { return e.output }
func (e *noopEndpoint) SetPacketHandler(transport.PacketHandler) {}
func (e *noopEndpoint) Start(ctx context.Context) error          { return nil }
func (e *noopEndpoint) Stop()                                    {}

func TestRegistry_CollectReportsRegisteredRouters(t *testing.T) {
	r, err := router.New(router.Config{
		Name:      "R1",
		Endpoints: []transport.Endpoint{&noopEndpoint{input: 4001, output: 4002}},
	})
	if err != nil {
		t.Fatalf("router.New() error = %v", err)
	}

	reg := NewRegistry()
	reg.RegisterRouter("R1", r)

	promReg := prometheus.NewRegistry()
	if err := promReg.Register(reg); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	families, err := promReg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := false
	for _, fam := range families {
		if fam.GetName() == "dvrouted_distance_vector_size" {
			found = true
			for _, m := range fam.Metric {
				if m.GetGauge().GetValue() != 1 {
					t.Errorf("distance_vector_size = %v, want 1 (self only)", m.GetGauge().GetValue())
				}
			}
		}
	}
	if !found {
		t.Error("dvrouted_distance_vector_size metric not found")
	}
}
