package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kprusa/dvrouted/internal/topology"
	"github.com/kprusa/dvrouted/metrics"
)

var (
	topologyPath   string
	updateInterval time.Duration
	metricsAddr    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start every router described in a topology file",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&topologyPath, "topology", "", "path to the topology JSON file (required)")
	runCmd.Flags().DurationVar(&updateInterval, "update-interval", 5*time.Second, "period between scheduled Update broadcasts")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve /metrics and /debug/state on, e.g. :9090 (disabled if empty)")
	_ = runCmd.MarkFlagRequired("topology")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	f, err := topology.Load(topologyPath)
	if err != nil {
		return fmt.Errorf("loading topology: %w", err)
	}

	t, err := topology.Build(f, updateInterval, logger)
	if err != nil {
		return fmt.Errorf("building topology: %w", err)
	}

	var metricsServer *metrics.Server
	if metricsAddr != "" {
		registry := metrics.NewRegistry()
		for _, r := range t.Routers() {
			registry.RegisterRouter(r.Name(), r)
		}
		metricsServer = metrics.NewServer(metricsAddr, registry, logger)
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("starting metrics server: %w", err)
		}
		logger.Info("metrics server listening", "addr", metricsAddr)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := t.StartAll(ctx); err != nil {
		t.StopAll()
		return fmt.Errorf("starting topology: %w", err)
	}
	logger.Info("topology started", "routers", len(t.Routers()))

	<-ctx.Done()
	logger.Info("shutting down")

	t.StopAll()
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Stop(shutdownCtx)
	}
	return nil
}
