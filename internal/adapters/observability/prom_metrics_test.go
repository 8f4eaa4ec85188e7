package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromObsMetrics(t *testing.T) {
	origReg := prometheus.DefaultRegisterer
	origGatherer := prometheus.DefaultGatherer
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGatherer
	})

	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg

	obs := NewPromObs()

	obs.IncCounter("stormeye_events_published_total", 5)
	if got := testutil.ToFloat64(obs.counters["stormeye_events_published_total"]); got != 5 {
		t.Fatalf("expected published counter 5, got %f", got)
	}

	obs.IncCounter("stormeye_hardware_ingested_total", 2)
	if got := testutil.ToFloat64(obs.counters["stormeye_hardware_ingested_total"]); got != 2 {
		t.Fatalf("expected ingested counter 2, got %f", got)
	}

	obs.SetGauge("stormeye_max_node_risk", 81.5)
	if got := testutil.ToFloat64(obs.gauges["stormeye_max_node_risk"]); got != 81.5 {
		t.Fatalf("expected max risk gauge 81.5, got %f", got)
	}

	obs.ObserveLatency("stormeye_ingest_latency_seconds", 0.02)
	hCollector := obs.histos["stormeye_ingest_latency_seconds"].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}

	obs.RecordDeadSubscriber("sub-1", nil)
	if got := testutil.ToFloat64(obs.counters["stormeye_dead_subscribers_total"]); got != 1 {
		t.Fatalf("expected dead subscriber counter 1, got %f", got)
	}

	obs.IncCounter("unknown_metric", 1)
	obs.SetGauge("unknown_metric", 1)
	obs.ObserveLatency("unknown_metric", 1)
}
