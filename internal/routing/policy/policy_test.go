// internal/routing/policy/policy_test.go
package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guest-router/internal/models"
)

const threshold = 0.65

func TestDecide_RuleHitRoutesDirect(t *testing.T) {
	decision := Decide(Candidate{
		Source:     models.SourceRules,
		Intent:     IntentTicketRequest,
		Area:       models.AreaHousekeeping,
		Confidence: 0.95,
		Reason:     "Towels request",
	}, threshold)

	assert.Equal(t, RouteDirect, decision.Action)
	require.NotNil(t, decision.Routing)
	assert.Equal(t, models.AreaHousekeeping, decision.Routing.Area)
	assert.Equal(t, models.SourceRules, decision.Routing.Source)
	assert.Equal(t, models.RoutingVersion, decision.Routing.Version)
	assert.NoError(t, decision.Routing.Valid())
}

func TestDecide_ConfidenceThreshold(t *testing.T) {
	base := Candidate{
		Source: models.SourceLLM,
		Intent: IntentTicketRequest,
		Area:   models.AreaMantencion,
		Reason: "AC issue",
	}

	tests := []struct {
		name       string
		confidence float64
		action     Action
	}{
		{"above threshold", 0.80, RouteDirect},
		{"at threshold", 0.65, RouteDirect},
		{"just below threshold", 0.64, RouteClarify},
		{"zero", 0.0, RouteClarify},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			c.Confidence = tt.confidence
			assert.Equal(t, tt.action, Decide(c, threshold).Action)
		})
	}
}

func TestDecide_NonActionableIntentGoesToFAQ(t *testing.T) {
	decision := Decide(Candidate{
		Source:     models.SourceLLM,
		Intent:     "not_understood",
		Area:       models.AreaRecepcion,
		Confidence: 0.90,
	}, threshold)

	assert.Equal(t, RouteFAQ, decision.Action)
	assert.Nil(t, decision.Routing)
}

func TestDecide_MissingAreaClarifies(t *testing.T) {
	decision := Decide(Candidate{
		Source:     models.SourceLLM,
		Intent:     IntentTicketRequest,
		Confidence: 0.90,
	}, threshold)

	assert.Equal(t, RouteClarify, decision.Action)
	assert.Nil(t, decision.Routing)
}
