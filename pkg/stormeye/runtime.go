// Package stormeye wires the node state engine, alerting, persistence, and
// the HTTP surface into an embeddable runtime.
package stormeye

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	alertprov "github.com/Shreya280506-byte/SIH-STORMEYE/internal/adapters/alert"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/adapters/httpapi"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/adapters/observability"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/adapters/opcua"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/adapters/simulator"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/adapters/store"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/alert"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/app/config"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/app/engine"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/broadcast"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/ports"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/registry"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/stage"
)

// Config is the full runtime configuration.
type Config = config.Config

// LoadConfig reads, defaults, and validates a YAML config file.
func LoadConfig(path string) (*Config, error) { return config.Load(path) }

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	store         Store
	predictions   PredictionLog
	providers     []SMSProvider
	collector     Collector
	observability Observability
	rng           *rand.Rand
}

// WithStore injects a custom persistence backend.
func WithStore(s Store) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.store = s
	}
}

// WithPredictionLog overrides where prediction history is archived.
func WithPredictionLog(p PredictionLog) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.predictions = p
	}
}

// WithProviders replaces the default Twilio-then-Textbelt SMS chain.
func WithProviders(providers ...SMSProvider) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.providers = providers
	}
}

// WithCollector injects a custom hardware collector (MQTT, serial,
// simulators, etc.) in place of the OPC UA subscription.
func WithCollector(col Collector) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.collector = col
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithRand fixes the random source used by the stage engine, useful for
// reproducible demos and tests.
func WithRand(rng *rand.Rand) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.rng = rng
	}
}

// Runtime owns every long-lived component and exposes lifecycle hooks for
// embedding the engine inside any Go service.
type Runtime struct {
	cfg    *Config
	obs    ports.Observability
	store  ports.Store
	preds  ports.PredictionLog
	engine *engine.Engine
	hub    *broadcast.Hub

	collector   ports.Collector
	collectorCh chan domain.HardwareReading
	collectorDn chan struct{}
	ticker      *simulator.Ticker
	db          *sql.DB
	apiSrv      *http.Server
	metricsSrv  *http.Server
	gaugeStopCh chan struct{}
}

// NewRuntime bootstraps the default adapters: file store, optional Postgres
// prediction archive, Prometheus observability, Twilio/Textbelt alerting,
// and the OPC UA collector when configured. RuntimeOption values override
// any of them.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		obs = observability.NewPromObs()
	}

	var (
		st  ports.Store
		fs  *store.FileStore
		err error
	)
	if overrides.store != nil {
		st = overrides.store
	} else {
		fs, err = store.NewFileStore(cfg.Data.Dir, cfg.Data.HistoryBlocks)
		if err != nil {
			return nil, err
		}
		st = fs
	}

	var (
		db    *sql.DB
		preds ports.PredictionLog
	)
	switch {
	case overrides.predictions != nil:
		preds = overrides.predictions
	case cfg.Postgres.ConnString != "":
		db, err = sql.Open("postgres", cfg.Postgres.ConnString)
		if err != nil {
			return nil, err
		}
		preds = store.NewPGPredictionLog(db, cfg.Postgres.Table)
	case fs != nil:
		preds = fs
	}

	reg := registry.New(cfg.Nodes.RealNode, cfg.Nodes.IDs)
	stageEng := stage.New(reg, overrides.rng)

	providers := overrides.providers
	if providers == nil {
		providers = []SMSProvider{
			alertprov.NewTwilio(cfg.Alerts.Twilio),
			alertprov.NewTextbelt(cfg.Alerts.Textbelt),
		}
	}
	dispatcher := alert.NewDispatcher(cfg.Alerts.Numbers, obs, providers...)

	var eng *engine.Engine
	hub := broadcast.New(cfg.Broadcast.Keepalive, func() domain.Event {
		return eng.SnapshotEvent()
	}, obs)

	eng = engine.New(engine.Deps{
		Registry:    reg,
		Stage:       stageEng,
		Hub:         hub,
		Store:       st,
		Predictions: preds,
		Alerts:      dispatcher,
		Obs:         obs,
		HistoryMax:  cfg.Data.HistoryBlocks,
	})

	col := overrides.collector
	if col == nil && cfg.OPCUA.Enabled() {
		col, err = opcua.NewCollector(cfg.OPCUA)
		if err != nil {
			if db != nil {
				_ = db.Close()
			}
			return nil, err
		}
	}

	r := &Runtime{
		cfg:       cfg,
		obs:       obs,
		store:     st,
		preds:     preds,
		engine:    eng,
		hub:       hub,
		collector: col,
		db:        db,
	}
	r.ticker = simulator.NewTicker(cfg.Simulator.TickInterval, eng.SimulationTick)

	srv := httpapi.NewServer(eng, hub, obs)
	r.apiSrv = &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}
	return r, nil
}

// Engine exposes the orchestrator for in-process callers.
func (r *Runtime) Engine() *engine.Engine { return r.engine }

// Hub exposes the broadcast hub so embedders can attach in-process
// subscribers instead of going through SSE.
func (r *Runtime) Hub() *broadcast.Hub { return r.hub }

// Start launches the API server, metrics endpoint, collector, and
// simulation ticker. It returns immediately; call Run to block on a
// context instead.
func (r *Runtime) Start() error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}

	go func() {
		if err := r.apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("api server exited: %v", err)
		}
	}()

	if r.collector != nil {
		r.collectorCh = make(chan domain.HardwareReading, 64)
		if err := r.collector.Start(r.collectorCh); err != nil {
			r.collectorCh = nil
			return err
		}
		// collectorDn doubles as the "consumer is running" marker checked
		// during shutdown.
		r.collectorDn = make(chan struct{})
		go r.consumeCollector()
	}

	r.ticker.Start()
	r.startMetrics()
	return nil
}

// Run starts the runtime and blocks until the provided context is
// cancelled, then attempts a graceful shutdown.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Shutdown stops every component. Safe to call once after Start.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.gaugeStopCh != nil {
		close(r.gaugeStopCh)
	}
	r.ticker.Stop()

	if r.collectorDn != nil {
		if err := r.collector.Stop(); err != nil {
			errs = append(errs, err)
		}
		close(r.collectorCh)
		<-r.collectorDn
	}

	if r.apiSrv != nil {
		if err := r.apiSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}
	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (r *Runtime) consumeCollector() {
	defer close(r.collectorDn)
	for reading := range r.collectorCh {
		if _, err := r.engine.IngestHardware(reading); err != nil {
			r.obs.LogError("collector_ingest_failed", err,
				ports.Field{Key: "node", Value: reading.NodeID})
		}
	}
}

func (r *Runtime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()

	r.gaugeStopCh = make(chan struct{})
	go r.recordResourceGauges(r.gaugeStopCh, time.Second)
}

func (r *Runtime) recordResourceGauges(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.obs.SetGauge("stormeye_subscribers", float64(r.hub.Len()))
			r.obs.SetGauge("stormeye_max_node_risk", r.engine.MaxRisk())
		}
	}
}
