package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/ports"
)

const (
	nodesFile       = "hardware_output.json"
	deployFile      = "deploy_state.json"
	manualFile      = "manual_stage.json"
	predictionsFile = "predictions.json"
	hardwareCSV     = "hardware_node0.csv"
)

var csvHeader = []string{"timestamp", "node_id", "temperature", "pressure", "humidity", "rainfall_mm", "wind_speed"}

// FileStore keeps snapshots as JSON files under one data directory, plus a
// raw CSV append log of hardware readings. All reads fall back to the
// caller's default on any failure; the engine treats writes as best effort.
type FileStore struct {
	mu        sync.Mutex
	dir       string
	maxBlocks int
}

// NewFileStore creates the data directory if needed. maxBlocks bounds the
// rolling prediction history; <= 0 uses 50.
func NewFileStore(dir string, maxBlocks int) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if maxBlocks <= 0 {
		maxBlocks = 50
	}
	return &FileStore{dir: dir, maxBlocks: maxBlocks}, nil
}

func (f *FileStore) LoadNodes(def map[string]domain.Node) map[string]domain.Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out map[string]domain.Node
	if err := f.readJSON(nodesFile, &out); err != nil || out == nil {
		return def
	}
	return out
}

func (f *FileStore) SaveNodes(nodes map[string]domain.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeJSON(nodesFile, nodes)
}

func (f *FileStore) LoadDeployState(def domain.DeployState) domain.DeployState {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out domain.DeployState
	if err := f.readJSON(deployFile, &out); err != nil || out == nil {
		return def
	}
	return out
}

func (f *FileStore) SaveDeployState(state domain.DeployState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeJSON(deployFile, state)
}

func (f *FileStore) LoadManualStage(def map[string]int) map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out map[string]int
	if err := f.readJSON(manualFile, &out); err != nil || out == nil {
		return def
	}
	return out
}

func (f *FileStore) SaveManualStage(overrides map[string]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeJSON(manualFile, overrides)
}

// Append adds one prediction block, trimming the history to the configured
// rolling window.
func (f *FileStore) Append(block []domain.Prediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var history [][]domain.Prediction
	if err := f.readJSON(predictionsFile, &history); err != nil {
		history = nil
	}
	history = append(history, block)
	if len(history) > f.maxBlocks {
		history = history[len(history)-f.maxBlocks:]
	}
	return f.writeJSON(predictionsFile, history)
}

// Recent returns up to max of the newest blocks, oldest first.
func (f *FileStore) Recent(max int) [][]domain.Prediction {
	f.mu.Lock()
	defer f.mu.Unlock()

	var history [][]domain.Prediction
	if err := f.readJSON(predictionsFile, &history); err != nil {
		return nil
	}
	if max > 0 && len(history) > max {
		history = history[len(history)-max:]
	}
	return history
}

// AppendHardwareCSV appends one raw reading, writing the header on first use.
func (f *FileStore) AppendHardwareCSV(r domain.HardwareReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := filepath.Join(f.dir, hardwareCSV)
	_, statErr := os.Stat(path)
	writeHeader := errors.Is(statErr, os.ErrNotExist)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
	}
	row := []string{
		r.Timestamp,
		r.NodeID,
		formatField(r.Temperature),
		formatField(r.Pressure),
		formatField(r.Humidity),
		formatField(r.RainfallMM),
		formatField(r.WindSpeed),
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (f *FileStore) readJSON(name string, into any) error {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, into)
}

func (f *FileStore) writeJSON(name string, obj any) error {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(f.dir, name), data, 0o644)
}

func formatField(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

var (
	_ ports.Store         = (*FileStore)(nil)
	_ ports.PredictionLog = (*FileStore)(nil)
)
