package ports

import "github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"

// Store persists node, deployment, and override snapshots. Durability is best
// effort: loads fall back to the caller's default, failed saves are returned
// so the engine can log them and continue.
type Store interface {
	LoadNodes(def map[string]domain.Node) map[string]domain.Node
	SaveNodes(nodes map[string]domain.Node) error

	LoadDeployState(def domain.DeployState) domain.DeployState
	SaveDeployState(state domain.DeployState) error

	LoadManualStage(def map[string]int) map[string]int
	SaveManualStage(overrides map[string]int) error

	AppendHardwareCSV(r domain.HardwareReading) error
}

// PredictionLog retains a bounded rolling history of prediction blocks.
type PredictionLog interface {
	Append(block []domain.Prediction) error
	Recent(max int) [][]domain.Prediction
}
