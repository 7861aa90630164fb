package topology

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleTopology = `{
  "routers": [
    {"name": "R1", "ports": [{"input": 19201, "output": 19202}]},
    {"name": "R2", "ports": [{"input": 19202, "output": 19201}]}
  ]
}`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "topology.json")
	if err := os.WriteFile(path, []byte(sampleTopology), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_ParsesRoutersAndPorts(t *testing.T) {
	path := writeSample(t)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(f.Routers) != 2 {
		t.Fatalf("len(Routers) = %d, want 2", len(f.Routers))
	}
	if f.Routers[0].Name != "R1" || f.Routers[0].Ports[0].Input != 19201 {
		t.Errorf("Routers[0] = %+v", f.Routers[0])
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/topology.json"); err == nil {
		t.Error("Load() with missing file: error = nil, want error")
	}
}

func TestBuild_ConstructsOneRouterPerEntry(t *testing.T) {
	f, err := Load(writeSample(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	topo, err := Build(f, time.Second, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(topo.Routers()) != 2 {
		t.Fatalf("len(Routers()) = %d, want 2", len(topo.Routers()))
	}
}

func TestStartAllAndStopAll_ConvergeTwoDirectRouters(t *testing.T) {
	f, err := Load(writeSample(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	topo, err := Build(f, 200*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := topo.StartAll(ctx); err != nil {
		t.Fatalf("StartAll() error = %v", err)
	}
	defer topo.StopAll()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		r1 := topo.Routers()[0]
		if d, ok := r1.DistanceVector()["R2"]; ok && d == 1 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("R1 never learned a distance-1 route to R2")
}
