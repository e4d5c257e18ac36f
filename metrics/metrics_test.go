package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNilReceiverSafe(t *testing.T) {
	var m *Metrics
	m.ObserveDispatch("local", "ok", time.Millisecond)
	m.ObserveRetry()
	m.ObserveTimeout()
	m.ObserveHydrationHit()
}

func TestObservationsRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithNamespace("testns"))

	m.ObserveDispatch("local", "ok", 5*time.Millisecond)
	m.ObserveDispatch("network", "error", 10*time.Millisecond)
	m.ObserveRetry()
	m.ObserveTimeout()
	m.ObserveHydrationHit()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	byName := make(map[string]bool)
	for _, f := range families {
		byName[f.GetName()] = true
	}
	for _, want := range []string{
		"testns_dispatch_total",
		"testns_dispatch_duration_seconds",
		"testns_dispatch_retries_total",
		"testns_dispatch_timeouts_total",
		"testns_hydration_hits_total",
	} {
		if !byName[want] {
			t.Errorf("Missing metric family %q (got %v)", want, byName)
		}
	}
}

func TestCustomBuckets(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithBuckets([]float64{0.001, 0.01}))
	m.ObserveDispatch("local", "ok", 5*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "lumo_dispatch_duration_seconds" {
			buckets := f.GetMetric()[0].GetHistogram().GetBucket()
			if len(buckets) != 2 {
				t.Errorf("Expected 2 buckets, got %d", len(buckets))
			}
			return
		}
	}
	t.Error("Histogram family not found")
}
