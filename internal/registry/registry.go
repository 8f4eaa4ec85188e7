package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
)

// Registry is the single source of truth for node state. It enforces the
// write-path split: the hardware path mutates only the real node, the
// stage-effect path mutates everything but the real node. It is a pure state
// container; callers publish events after a successful mutation.
type Registry struct {
	mu       sync.Mutex
	realNode string
	known    []string
	nodes    map[string]*domain.Node
	now      func() time.Time
}

// New builds a registry for the configured node set. The real node id must be
// part of nodeIDs. Entries are materialized lazily on first reference.
func New(realNode string, nodeIDs []string) *Registry {
	ids := make([]string, len(nodeIDs))
	copy(ids, nodeIDs)
	return &Registry{
		realNode: realNode,
		known:    ids,
		nodes:    make(map[string]*domain.Node, len(ids)),
		now:      time.Now,
	}
}

// RealNodeID returns the designated real-node identifier.
func (r *Registry) RealNodeID() string { return r.realNode }

// NodeIDs returns the configured node set.
func (r *Registry) NodeIDs() []string {
	out := make([]string, len(r.known))
	copy(out, r.known)
	return out
}

// Get returns a copy of one node's state.
func (r *Registry) Get(id string) (domain.Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[id]
	if !ok {
		return domain.Node{}, false
	}
	return n.Clone(), true
}

// Restore seeds the registry from a persisted snapshot. Intended for process
// start, before any concurrent access.
func (r *Registry) Restore(nodes map[string]domain.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range nodes {
		c := n.Clone()
		c.NodeID = id
		r.nodes[id] = &c
	}
}

// UpsertHardware merges a hardware reading into the real node. Any other
// target is rejected with ErrInvalidNode. Fields absent from the reading are
// left unchanged; stage comes from the reading or resets to baseline.
func (r *Registry) UpsertHardware(id string, in domain.HardwareReading) (domain.Node, error) {
	if id == "" {
		return domain.Node{}, fmt.Errorf("%w: node_id required", domain.ErrMalformedPayload)
	}
	if id != r.realNode {
		return domain.Node{}, fmt.Errorf("%w: hardware ingestion accepts only %q, got %q", domain.ErrInvalidNode, r.realNode, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.getOrCreateLocked(id)
	if in.Temperature != nil {
		n.Temperature = domain.Float64(*in.Temperature)
	}
	if in.Pressure != nil {
		n.Pressure = domain.Float64(*in.Pressure)
	}
	if in.Humidity != nil {
		n.Humidity = domain.Float64(*in.Humidity)
	}
	if in.RainfallMM != nil {
		n.RainfallMM = domain.Float64(*in.RainfallMM)
	}
	if in.WindSpeed != nil {
		n.WindSpeed = domain.Float64(*in.WindSpeed)
	}
	if in.Stage != nil {
		n.Stage = *in.Stage
	} else {
		n.Stage = domain.StageBaseline
	}
	n.UpdatedAt = r.now()
	return n.Clone(), nil
}

// UpsertStageEffect applies a transformation to one simulated node, then
// re-clamps risk into [0, 99]. Targeting the real node is rejected.
func (r *Registry) UpsertStageEffect(id string, mutate func(*domain.Node)) (domain.Node, error) {
	if id == "" {
		return domain.Node{}, fmt.Errorf("%w: node_id required", domain.ErrMalformedPayload)
	}
	if id == r.realNode {
		return domain.Node{}, fmt.Errorf("%w: stage effects never touch the real node %q", domain.ErrInvalidNode, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.getOrCreateLocked(id)
	mutate(n)
	n.Risk = domain.ClampRisk(n.Risk)
	n.UpdatedAt = r.now()
	return n.Clone(), nil
}

// MutateSimulated applies a transformation to every non-real node inside one
// critical section, so concurrent stage toggles cannot interleave increments.
// It returns a snapshot of the mutated nodes.
func (r *Registry) MutateSimulated(mutate func(id string, n *domain.Node)) map[string]domain.Node {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]domain.Node)
	now := r.now()
	for _, id := range r.known {
		if id == r.realNode {
			continue
		}
		n := r.getOrCreateLocked(id)
		mutate(id, n)
		n.Risk = domain.ClampRisk(n.Risk)
		n.UpdatedAt = now
		out[id] = n.Clone()
	}
	return out
}

// Snapshot returns a consistent point-in-time copy of every node. The real
// node is materialized with baseline values if it has never been written, so
// downstream consumers never observe a missing primary node.
func (r *Registry) Snapshot() map[string]domain.Node {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.getOrCreateLocked(r.realNode)

	out := make(map[string]domain.Node, len(r.nodes))
	for id, n := range r.nodes {
		out[id] = n.Clone()
	}
	return out
}

func (r *Registry) getOrCreateLocked(id string) *domain.Node {
	if n, ok := r.nodes[id]; ok {
		return n
	}
	n := domain.BaselineNode(id, r.now())
	r.nodes[id] = n
	return n
}
