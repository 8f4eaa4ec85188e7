package domain

// Prediction is one risk-score entry produced by the external model.
type Prediction struct {
	NodeID    string  `json:"node_id"`
	RiskScore float64 `json:"risk_score"`
	StageUsed int     `json:"stage_used"`
	RiskLevel string  `json:"risk_level,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// AlertDirective instructs the external delivery capability to send one alert.
type AlertDirective struct {
	NodeID    string
	RiskScore float64
	StageUsed int
	Message   string
}
