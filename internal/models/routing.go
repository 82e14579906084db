// internal/models/routing.go
package models

import "fmt"

// RoutingSource identifies which stage produced the final area for a ticket.
type RoutingSource string

const (
	SourceRules         RoutingSource = "rules"
	SourceLLM           RoutingSource = "llm"
	SourceClarification RoutingSource = "clarification"
	SourceFallback      RoutingSource = "fallback"
)

// RoutingVersion is recorded with every ticket so provenance stays comparable
// across policy revisions.
const RoutingVersion = "v1"

// RoutingDecision is the provenance tuple captured for every routed ticket.
// It is produced exactly once per ticket and immutable thereafter.
type RoutingDecision struct {
	Area       Area          `json:"area"`
	Source     RoutingSource `json:"routingSource"`
	Confidence float64       `json:"routingConfidence"`
	Reason     string        `json:"routingReason"`
	Version    string        `json:"routingVersion"`
}

// Valid checks the persistence invariants: a real area, a known source,
// confidence in [0,1], and confidence exactly 1.0 when the guest chose the
// area themselves.
func (d RoutingDecision) Valid() error {
	if !d.Area.IsValid() {
		return fmt.Errorf("area %q is not a known service area", d.Area)
	}
	switch d.Source {
	case SourceRules, SourceLLM, SourceClarification, SourceFallback:
	default:
		return fmt.Errorf("routing source %q is not recognized", d.Source)
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", d.Confidence)
	}
	if d.Source == SourceClarification && d.Confidence != 1.0 {
		return fmt.Errorf("clarification decision must carry confidence 1.0, got %v", d.Confidence)
	}
	return nil
}
