package observability

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/ports"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs() *PromObs {
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stormeye_events_published_total",
		Help: "Total events fanned out to subscribers.",
	})
	ingested := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stormeye_hardware_ingested_total",
		Help: "Total hardware readings accepted for the real node.",
	})
	blocks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stormeye_prediction_blocks_total",
		Help: "Total prediction blocks ingested.",
	})
	alerts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stormeye_alerts_sent_total",
		Help: "Total SMS alerts dispatched for high-risk predictions.",
	})
	dead := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stormeye_dead_subscribers_total",
		Help: "Subscribers pruned after their stream broke.",
	})
	subscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stormeye_subscribers",
		Help: "Current number of live event subscribers.",
	})
	maxRisk := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stormeye_max_node_risk",
		Help: "Highest risk score across all tracked nodes.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "stormeye_ingest_latency_seconds",
		Help:    "Latency from ingest request to event fan-out.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	prometheus.MustRegister(published, ingested, blocks, alerts, dead, subscribers, maxRisk, latency)

	return &PromObs{
		counters: map[string]prometheus.Counter{
			"stormeye_events_published_total":  published,
			"stormeye_hardware_ingested_total": ingested,
			"stormeye_prediction_blocks_total": blocks,
			"stormeye_alerts_sent_total":       alerts,
			"stormeye_dead_subscribers_total":  dead,
		},
		gauges: map[string]prometheus.Gauge{
			"stormeye_subscribers":   subscribers,
			"stormeye_max_node_risk": maxRisk,
		},
		histos: map[string]prometheus.Observer{
			"stormeye_ingest_latency_seconds": latency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("ERROR: %s: %v", msg, err)
	}
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("CRITICAL: %s: %v", msg, err)
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordDeadSubscriber(id string, err error) {
	p.IncCounter("stormeye_dead_subscribers_total", 1)
	if err != nil {
		log.Printf("dead subscriber id=%s err=%v", id, err)
	}
}
