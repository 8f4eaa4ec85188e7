package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
)

func TestFileStoreNodesRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	nodes := map[string]domain.Node{
		"node0": {NodeID: "node0", Stage: 1, Risk: 5, Temperature: domain.Float64(27.4)},
		"node1": {NodeID: "node1", Stage: 2, Risk: 40, Derived: map[string]float64{"cloud_env_radar_dbz": 15}},
	}
	if err := fs.SaveNodes(nodes); err != nil {
		t.Fatalf("save nodes: %v", err)
	}

	got := fs.LoadNodes(nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(got))
	}
	if got["node1"].Derived["cloud_env_radar_dbz"] != 15 {
		t.Fatalf("derived fields lost in round trip: %+v", got["node1"])
	}
	if *got["node0"].Temperature != 27.4 {
		t.Fatalf("sensor field lost in round trip")
	}
}

func TestFileStoreLoadFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	def := domain.DefaultDeployState()
	if got := fs.LoadDeployState(def); got[domain.AssetAerostat] != domain.AssetIdle {
		t.Fatalf("missing file must yield the default, got %+v", got)
	}

	// corrupt file must also fall back, not propagate
	if err := os.WriteFile(filepath.Join(dir, "deploy_state.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if got := fs.LoadDeployState(def); got[domain.AssetDrone] != domain.AssetIdle {
		t.Fatalf("corrupt file must yield the default, got %+v", got)
	}
}

func TestFileStorePredictionHistoryTrims(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 3)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	for i := 0; i < 5; i++ {
		block := []domain.Prediction{{NodeID: "node0", RiskScore: float64(i)}}
		if err := fs.Append(block); err != nil {
			t.Fatalf("append block %d: %v", i, err)
		}
	}

	history := fs.Recent(0)
	if len(history) != 3 {
		t.Fatalf("expected history trimmed to 3 blocks, got %d", len(history))
	}
	if history[0][0].RiskScore != 2 || history[2][0].RiskScore != 4 {
		t.Fatalf("expected oldest trimmed, got %v..%v", history[0][0].RiskScore, history[2][0].RiskScore)
	}

	if got := fs.Recent(1); len(got) != 1 || got[0][0].RiskScore != 4 {
		t.Fatalf("Recent(1) should return only the newest block, got %+v", got)
	}
}

func TestFileStoreManualStageRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := fs.SaveManualStage(map[string]int{"node2": 3}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := fs.LoadManualStage(nil); got["node2"] != 3 {
		t.Fatalf("unexpected manual overrides: %v", got)
	}
}

func TestFileStoreHardwareCSVAppend(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, 0)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	r := domain.HardwareReading{
		Timestamp:   "2026-08-28T07:30:00Z",
		NodeID:      "node0",
		Temperature: domain.Float64(27.4),
		WindSpeed:   domain.Float64(5.4),
	}
	if err := fs.AppendHardwareCSV(r); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := fs.AppendHardwareCSV(r); err != nil {
		t.Fatalf("second append: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "hardware_node0.csv"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,node_id") {
		t.Fatalf("missing header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "node0") || !strings.Contains(lines[1], "27.4") {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}
