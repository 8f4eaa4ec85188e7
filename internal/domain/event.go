package domain

import "time"

// EventType tags an envelope on the broadcast stream.
type EventType string

const (
	EventHardwareUpdate  EventType = "hardware_update"
	EventStageState      EventType = "stage_state"
	EventManualStage     EventType = "manual_stage"
	EventPredictionBlock EventType = "prediction_block"
	EventKeepalive       EventType = "keepalive"
)

// Event is the immutable envelope fanned out to every subscriber. Seq is a
// process-wide publish sequence, stamped by the hub.
type Event struct {
	Type EventType `json:"type"`
	Node string    `json:"node,omitempty"`
	Data any       `json:"data,omitempty"`
	Seq  uint64    `json:"seq,omitempty"`
	TS   time.Time `json:"ts"`
}
