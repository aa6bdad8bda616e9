package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestExpvarMetricsAggregates(t *testing.T) {
	rec := NewExpvarMetrics("")
	ctx := context.Background()

	rec.Observe(ctx, "save", true, 10*time.Millisecond)
	rec.Observe(ctx, "save", true, 5*time.Millisecond)
	rec.Observe(ctx, "save", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond) // ignored

	snap := rec.Snapshot()
	if snap.Results["save"]["success"] != 2 || snap.Results["save"]["error"] != 1 {
		t.Fatalf("result counters wrong: %v", snap.Results)
	}
	if snap.DurationsMS["save"] != 16 {
		t.Fatalf("duration total = %v, want 16", snap.DurationsMS["save"])
	}
	if rec.Name() == "" {
		t.Fatalf("generated export name must not be empty")
	}
}

func TestExpvarMetricsUniqueNames(t *testing.T) {
	a := NewExpvarMetrics("")
	b := NewExpvarMetrics("")
	if a.Name() == b.Name() {
		t.Fatalf("generated names must not collide: %q", a.Name())
	}
}

func TestPrometheusMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusMetrics(reg)

	rec.Observe(context.Background(), "load", true, 20*time.Millisecond)
	rec.Observe(context.Background(), "load", false, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	byName := map[string]bool{}
	for _, mf := range families {
		byName[mf.GetName()] = true
	}
	if !byName["mousecolony_operations_total"] || !byName["mousecolony_operation_duration_seconds"] {
		t.Fatalf("expected collectors missing: %v", byName)
	}
}
