package alert

import (
	"fmt"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
)

// Threshold is the risk score at or above which a prediction produces an
// alert directive.
const Threshold = 75.0

// Evaluate inspects one prediction block and returns a directive for every
// qualifying entry. Stateless and per-block: no deduplication or rate
// limiting is applied, so every qualifying entry in every block alerts.
func Evaluate(block []domain.Prediction) []domain.AlertDirective {
	var out []domain.AlertDirective
	for _, p := range block {
		if p.RiskScore < Threshold {
			continue
		}
		out = append(out, domain.AlertDirective{
			NodeID:    p.NodeID,
			RiskScore: p.RiskScore,
			StageUsed: p.StageUsed,
			Message:   fmt.Sprintf("ALERT: %s high risk=%.1f stage=%d", p.NodeID, p.RiskScore, p.StageUsed),
		})
	}
	return out
}
