// internal/services/risk_router.go
package services

import (
	"github.com/greenhydro/subsidy-backend/internal/models"
)

// RiskRouter classifies documents into approval paths from their risk score.
// The score itself comes from an external scoring collaborator; the router
// only decides which review path a document must take.
type RiskRouter struct {
	threshold float64
}

func NewRiskRouter(threshold float64) *RiskRouter {
	return &RiskRouter{threshold: threshold}
}

// Classify maps a risk score to an approval path. A missing score means the
// document was never scored and must go through detailed review. Scores at or
// above the threshold are high risk.
func (r *RiskRouter) Classify(riskScore *float64) models.RiskLevel {
	if riskScore == nil {
		return models.RiskLevelUnscored
	}
	if *riskScore < r.threshold {
		return models.RiskLevelLow
	}
	return models.RiskLevelHigh
}

// RequiresDetailReview reports whether the level demands an explicit
// detail-review acknowledgment before approval.
func (r *RiskRouter) RequiresDetailReview(level models.RiskLevel) bool {
	return level == models.RiskLevelHigh || level == models.RiskLevelUnscored
}

func (r *RiskRouter) Threshold() float64 {
	return r.threshold
}
