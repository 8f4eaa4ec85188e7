package stormeye

import (
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/ports"
)

// Node is one entry of the tracked node network.
type Node = domain.Node

// HardwareReading is a partial sensor update for the hardware-backed node.
type HardwareReading = domain.HardwareReading

// Prediction is one risk-score entry produced by the external model.
type Prediction = domain.Prediction

// AlertDirective describes one SMS alert derived from a prediction block.
type AlertDirective = domain.AlertDirective

// Event is the envelope fanned out to stream subscribers.
type Event = domain.Event

// EventType tags an event envelope.
type EventType = domain.EventType

// DeployState maps each asset to its deployment status.
type DeployState = domain.DeployState

// Store persists node, deployment, and override snapshots.
type Store = ports.Store

// PredictionLog archives prediction block history.
type PredictionLog = ports.PredictionLog

// SMSProvider delivers alert messages to a set of phone numbers.
type SMSProvider = ports.SMSProvider

// Collector streams hardware readings from any source (OPC UA, MQTT,
// serial bridges, simulators) into the engine.
type Collector = ports.Collector

// Observability emits metrics and logs for the runtime.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Event types published on the broadcast stream.
const (
	EventHardwareUpdate  = domain.EventHardwareUpdate
	EventStageState      = domain.EventStageState
	EventManualStage     = domain.EventManualStage
	EventPredictionBlock = domain.EventPredictionBlock
	EventKeepalive       = domain.EventKeepalive
)

// Re-exported domain errors for callers that embed the runtime.
var (
	ErrInvalidNode      = domain.ErrInvalidNode
	ErrUnknownAsset     = domain.ErrUnknownAsset
	ErrMalformedPayload = domain.ErrMalformedPayload
)
