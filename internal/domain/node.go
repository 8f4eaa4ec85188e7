package domain

import "time"

// Stage escalation levels for a monitoring node.
const (
	StageBaseline = 1
	StageAerostat = 2
	StageDrone    = 3
)

// RiskCeiling is the hard upper bound for a node's risk value.
const RiskCeiling = 99.0

// Node is the canonical state of one monitoring station. The real node is fed
// by actual sensor hardware; every other node carries simulated readings.
type Node struct {
	NodeID      string   `json:"node_id"`
	Stage       int      `json:"stage"`
	Temperature *float64 `json:"temperature,omitempty"`
	Pressure    *float64 `json:"pressure,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	RainfallMM  *float64 `json:"rainfall_mm,omitempty"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"`
	// Derived holds accumulator-style synthetic readings introduced by stage
	// effects. They are added to, never replaced, and survive deactivation.
	Derived   map[string]float64 `json:"derived,omitempty"`
	Risk      float64            `json:"risk"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Baseline sensor values used when a node record is materialized lazily.
const (
	BaselineTemperature = 25.0
	BaselinePressure    = 1012.0
	BaselineHumidity    = 60.0
	BaselineRainfallMM  = 0.0
	BaselineWindSpeed   = 2.0
	BaselineRisk        = 5.0
)

// BaselineNode returns a fresh stage-1 record with default sensor readings.
func BaselineNode(id string, now time.Time) *Node {
	return &Node{
		NodeID:      id,
		Stage:       StageBaseline,
		Temperature: Float64(BaselineTemperature),
		Pressure:    Float64(BaselinePressure),
		Humidity:    Float64(BaselineHumidity),
		RainfallMM:  Float64(BaselineRainfallMM),
		WindSpeed:   Float64(BaselineWindSpeed),
		Risk:        BaselineRisk,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy so snapshots never alias live registry state.
func (n *Node) Clone() Node {
	out := *n
	out.Temperature = cloneFloat(n.Temperature)
	out.Pressure = cloneFloat(n.Pressure)
	out.Humidity = cloneFloat(n.Humidity)
	out.RainfallMM = cloneFloat(n.RainfallMM)
	out.WindSpeed = cloneFloat(n.WindSpeed)
	if n.Derived != nil {
		out.Derived = make(map[string]float64, len(n.Derived))
		for k, v := range n.Derived {
			out.Derived[k] = v
		}
	}
	return out
}

// ClampRisk bounds a risk value into [0, RiskCeiling].
func ClampRisk(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > RiskCeiling {
		return RiskCeiling
	}
	return v
}

// Float64 returns a pointer to v, for optional sensor fields.
func Float64(v float64) *float64 { return &v }

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// HardwareReading is one record pushed by the hardware ingestion path.
// Absent fields are left unchanged on the target node.
type HardwareReading struct {
	NodeID      string   `json:"node_id"`
	Timestamp   string   `json:"timestamp,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Pressure    *float64 `json:"pressure,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	RainfallMM  *float64 `json:"rainfall_mm,omitempty"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"`
	Stage       *int     `json:"stage,omitempty"`
}
