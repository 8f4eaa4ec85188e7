package stormeye

import (
	"math/rand"

	base "github.com/Shreya280506-byte/SIH-STORMEYE/pkg/stormeye"
)

// Re-exported errors for convenience.
var (
	ErrInvalidNode      = base.ErrInvalidNode
	ErrUnknownAsset     = base.ErrUnknownAsset
	ErrMalformedPayload = base.ErrMalformedPayload
)

// Type aliases so consumers can import the module root directly.
type (
	Config          = base.Config
	Runtime         = base.Runtime
	RuntimeOption   = base.RuntimeOption
	Node            = base.Node
	HardwareReading = base.HardwareReading
	Prediction      = base.Prediction
	AlertDirective  = base.AlertDirective
	Event           = base.Event
	EventType       = base.EventType
	DeployState     = base.DeployState
	Store           = base.Store
	PredictionLog   = base.PredictionLog
	SMSProvider     = base.SMSProvider
	Collector       = base.Collector
	Observability   = base.Observability
	Field           = base.Field
)

// Event types published on the broadcast stream.
const (
	EventHardwareUpdate  = base.EventHardwareUpdate
	EventStageState      = base.EventStageState
	EventManualStage     = base.EventManualStage
	EventPredictionBlock = base.EventPredictionBlock
	EventKeepalive       = base.EventKeepalive
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithStore(s Store) RuntimeOption {
	return base.WithStore(s)
}

func WithPredictionLog(p PredictionLog) RuntimeOption {
	return base.WithPredictionLog(p)
}

func WithProviders(providers ...SMSProvider) RuntimeOption {
	return base.WithProviders(providers...)
}

func WithCollector(col Collector) RuntimeOption {
	return base.WithCollector(col)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

func WithRand(rng *rand.Rand) RuntimeOption {
	return base.WithRand(rng)
}
