// Package engine orchestrates the ingest, stage, alert, and broadcast flows.
// It is the only writer of deployment and override state; node state lives
// in the registry.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/alert"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/broadcast"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/ports"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/registry"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/stage"
)

// Deps wires the engine's collaborators. Registry, Stage, Hub, Store, and
// Obs are required; Predictions and Alerts may be nil for reduced setups.
type Deps struct {
	Registry    *registry.Registry
	Stage       *stage.Engine
	Hub         *broadcast.Hub
	Store       ports.Store
	Predictions ports.PredictionLog
	Alerts      *alert.Dispatcher
	Obs         ports.Observability
	HistoryMax  int
}

type Engine struct {
	reg   *registry.Registry
	stage *stage.Engine
	hub   *broadcast.Hub
	store ports.Store
	preds ports.PredictionLog
	alert *alert.Dispatcher
	obs   ports.Observability

	historyMax int

	mu     sync.Mutex
	deploy domain.DeployState
	manual map[string]int
}

// New hydrates persisted state and returns a ready engine. Load failures
// fall back to defaults inside the store, so startup never blocks on bad
// or missing files.
func New(d Deps) *Engine {
	e := &Engine{
		reg:        d.Registry,
		stage:      d.Stage,
		hub:        d.Hub,
		store:      d.Store,
		preds:      d.Predictions,
		alert:      d.Alerts,
		obs:        d.Obs,
		historyMax: d.HistoryMax,
	}
	if e.historyMax <= 0 {
		e.historyMax = 50
	}

	e.reg.Restore(e.store.LoadNodes(nil))
	e.deploy = e.store.LoadDeployState(domain.DefaultDeployState())
	e.manual = e.store.LoadManualStage(map[string]int{})
	return e
}

// IngestHardware merges one hardware reading into the real node and fans
// out the updated state. CSV archival and snapshot persistence are best
// effort; a failure there never fails the ingest.
func (e *Engine) IngestHardware(r domain.HardwareReading) (domain.Node, error) {
	start := time.Now()

	node, err := e.reg.UpsertHardware(r.NodeID, r)
	if err != nil {
		return domain.Node{}, err
	}

	if err := e.store.AppendHardwareCSV(r); err != nil {
		e.obs.LogError("hardware_csv_append_failed", err)
	}
	e.persistNodes()

	e.hub.Publish(domain.Event{
		Type: domain.EventHardwareUpdate,
		Node: node.NodeID,
		Data: node,
	})

	e.obs.IncCounter("stormeye_hardware_ingested_total", 1)
	e.obs.ObserveLatency("stormeye_ingest_latency_seconds", time.Since(start).Seconds())
	e.updateRiskGauge()
	return node, nil
}

// IngestPrediction records a prediction block, fans it out, and dispatches
// SMS alerts for every entry at or above the risk threshold. Alert delivery
// runs in the background so a slow SMS gateway cannot stall ingestion.
func (e *Engine) IngestPrediction(block []domain.Prediction) ([]domain.AlertDirective, error) {
	if len(block) == 0 {
		return nil, fmt.Errorf("%w: empty prediction block", domain.ErrMalformedPayload)
	}
	for _, p := range block {
		if p.NodeID == "" {
			return nil, fmt.Errorf("%w: prediction entry missing node_id", domain.ErrMalformedPayload)
		}
	}

	if e.preds != nil {
		if err := e.preds.Append(block); err != nil {
			e.obs.LogError("prediction_append_failed", err)
		}
	}

	e.hub.Publish(domain.Event{
		Type: domain.EventPredictionBlock,
		Data: block,
	})
	e.obs.IncCounter("stormeye_prediction_blocks_total", 1)

	directives := alert.Evaluate(block)
	if len(directives) > 0 && e.alert != nil {
		go e.alert.Dispatch(context.Background(), directives)
	}
	return directives, nil
}

// Deploy toggles one asset and applies its stage effects to every
// simulated node. action is "deploy" to activate, anything else retracts.
func (e *Engine) Deploy(what, action string) (domain.DeployState, map[string]domain.Node, error) {
	asset := domain.Asset(what)
	if !asset.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownAsset, what)
	}
	activate := action == "deploy"

	nodes, err := e.stage.Apply(asset, activate)
	if err != nil {
		return nil, nil, err
	}

	e.mu.Lock()
	if activate {
		e.deploy[asset] = domain.AssetActive
	} else {
		e.deploy[asset] = domain.AssetIdle
	}
	deploy := e.deploy.Clone()
	e.mu.Unlock()

	if err := e.store.SaveDeployState(deploy); err != nil {
		e.obs.LogError("deploy_state_save_failed", err)
	}
	e.persistNodes()

	e.hub.Publish(domain.Event{
		Type: domain.EventStageState,
		Data: map[string]any{"deploy": deploy, "nodes": nodes},
	})
	e.updateRiskGauge()
	return deploy, nodes, nil
}

// ManualStage pins the given simulated nodes to a stage, bypassing the
// deploy toggles. The real node is never a valid target.
func (e *Engine) ManualStage(nodeIDs []string, stageNum int) (map[string]domain.Node, error) {
	nodes, err := e.setStages(nodeIDs, stageNum)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	for _, id := range nodeIDs {
		if stageNum == domain.StageBaseline {
			delete(e.manual, id)
		} else {
			e.manual[id] = stageNum
		}
	}
	manual := e.manualLocked()
	e.mu.Unlock()

	if err := e.store.SaveManualStage(manual); err != nil {
		e.obs.LogError("manual_stage_save_failed", err)
	}
	e.persistNodes()

	e.hub.Publish(domain.Event{
		Type: domain.EventManualStage,
		Data: map[string]any{"manual": manual, "nodes": nodes},
	})
	return nodes, nil
}

// ApplyStageState sets stages on simulated nodes without recording a manual
// override. It backs the generator's persistence hook.
func (e *Engine) ApplyStageState(nodeIDs []string, stageNum int) (map[string]domain.Node, error) {
	nodes, err := e.setStages(nodeIDs, stageNum)
	if err != nil {
		return nil, err
	}
	e.persistNodes()

	e.hub.Publish(domain.Event{
		Type: domain.EventStageState,
		Data: map[string]any{"nodes": nodes},
	})
	return nodes, nil
}

func (e *Engine) setStages(nodeIDs []string, stageNum int) (map[string]domain.Node, error) {
	if stageNum < domain.StageBaseline || stageNum > domain.StageDrone {
		return nil, fmt.Errorf("%w: stage %d out of range", domain.ErrMalformedPayload, stageNum)
	}
	if len(nodeIDs) == 0 {
		return nil, fmt.Errorf("%w: no nodes given", domain.ErrMalformedPayload)
	}

	nodes := make(map[string]domain.Node, len(nodeIDs))
	for _, id := range nodeIDs {
		n, err := e.reg.UpsertStageEffect(id, func(n *domain.Node) {
			n.Stage = stageNum
		})
		if err != nil {
			return nil, err
		}
		nodes[id] = n
	}
	return nodes, nil
}

// SimulationTick drifts the simulated nodes and broadcasts the result.
func (e *Engine) SimulationTick() {
	nodes := e.stage.Drift()
	e.persistNodes()
	e.hub.Publish(domain.Event{
		Type: domain.EventHardwareUpdate,
		Data: nodes,
	})
	e.updateRiskGauge()
}

// DirectAlert sends an operator-supplied SMS through the provider chain.
func (e *Engine) DirectAlert(ctx context.Context, message string) bool {
	if e.alert == nil {
		return false
	}
	ok := e.alert.Send(ctx, message)
	if ok {
		e.obs.IncCounter("stormeye_alerts_sent_total", 1)
	}
	return ok
}

// RealNodeID returns the configured hardware-backed node id.
func (e *Engine) RealNodeID() string { return e.reg.RealNodeID() }

// Nodes returns a deep copy of the current node network.
func (e *Engine) Nodes() map[string]domain.Node {
	return e.reg.Snapshot()
}

// Predictions returns up to max of the newest prediction blocks, oldest
// first.
func (e *Engine) Predictions(max int) [][]domain.Prediction {
	if e.preds == nil {
		return nil
	}
	if max <= 0 {
		max = e.historyMax
	}
	return e.preds.Recent(max)
}

// LatestPredictions reduces the prediction history to the newest entry per
// node, so a dashboard can render current risk without replaying blocks.
func (e *Engine) LatestPredictions() map[string]domain.Prediction {
	latest := make(map[string]domain.Prediction)
	for _, block := range e.Predictions(0) {
		for _, p := range block {
			latest[p.NodeID] = p
		}
	}
	return latest
}

// DeployState returns a copy of the asset toggles.
func (e *Engine) DeployState() domain.DeployState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deploy.Clone()
}

// ManualOverrides returns a copy of the pinned stage map.
func (e *Engine) ManualOverrides() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manualLocked()
}

// Debug bundles the full engine state for the diagnostics endpoint.
func (e *Engine) Debug() map[string]any {
	ids := e.reg.NodeIDs()
	sort.Strings(ids)
	return map[string]any{
		"real_node":   e.reg.RealNodeID(),
		"node_ids":    ids,
		"nodes":       e.Nodes(),
		"deploy":      e.DeployState(),
		"manual":      e.ManualOverrides(),
		"subscribers": e.hub.Len(),
	}
}

// SnapshotEvent builds the cold-start event handed to new subscribers.
func (e *Engine) SnapshotEvent() domain.Event {
	return domain.Event{
		Type: domain.EventStageState,
		Data: map[string]any{
			"nodes":  e.Nodes(),
			"deploy": e.DeployState(),
			"manual": e.ManualOverrides(),
		},
	}
}

// MaxRisk reports the highest risk score across all nodes.
func (e *Engine) MaxRisk() float64 {
	var max float64
	for _, n := range e.reg.Snapshot() {
		if n.Risk > max {
			max = n.Risk
		}
	}
	return max
}

func (e *Engine) manualLocked() map[string]int {
	out := make(map[string]int, len(e.manual))
	for k, v := range e.manual {
		out[k] = v
	}
	return out
}

func (e *Engine) persistNodes() {
	if err := e.store.SaveNodes(e.reg.Snapshot()); err != nil {
		e.obs.LogError("node_snapshot_save_failed", err)
	}
}

func (e *Engine) updateRiskGauge() {
	e.obs.SetGauge("stormeye_max_node_risk", e.MaxRisk())
}
