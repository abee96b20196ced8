// internal/services/risk_router_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenhydro/subsidy-backend/internal/models"
)

func TestRiskRouterClassify(t *testing.T) {
	router := NewRiskRouter(0.5)

	tests := []struct {
		name  string
		score *float64
		want  models.RiskLevel
	}{
		{"missing score is unscored", nil, models.RiskLevelUnscored},
		{"zero is low risk", f64(0), models.RiskLevelLow},
		{"just below threshold is low risk", f64(0.49), models.RiskLevelLow},
		{"threshold itself is high risk", f64(0.5), models.RiskLevelHigh},
		{"above threshold is high risk", f64(0.51), models.RiskLevelHigh},
		{"maximum score is high risk", f64(1), models.RiskLevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, router.Classify(tt.score))
		})
	}
}

func TestRiskRouterCustomThreshold(t *testing.T) {
	router := NewRiskRouter(0.8)

	assert.Equal(t, models.RiskLevelLow, router.Classify(f64(0.79)))
	assert.Equal(t, models.RiskLevelHigh, router.Classify(f64(0.8)))
	assert.Equal(t, 0.8, router.Threshold())
}

func TestRiskRouterRequiresDetailReview(t *testing.T) {
	router := NewRiskRouter(0.5)

	assert.False(t, router.RequiresDetailReview(models.RiskLevelLow))
	assert.True(t, router.RequiresDetailReview(models.RiskLevelHigh))
	assert.True(t, router.RequiresDetailReview(models.RiskLevelUnscored))
}
