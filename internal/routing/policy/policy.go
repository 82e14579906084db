// internal/routing/policy/policy.go
//
// Pure routing policy. Takes a classification candidate and decides what the
// conversation should do next. No I/O and no state: the engine owns sessions
// and side effects, this package only encodes the decision table.
package policy

import (
	"guest-router/internal/models"
)

// Action is the next step the conversation engine must take.
type Action string

const (
	// RouteDirect routes the ticket to the candidate area immediately.
	RouteDirect Action = "route_direct"
	// RouteClarify asks the guest to pick an area from the menu.
	RouteClarify Action = "route_clarify"
	// RouteFAQ hands the message off to the FAQ responder instead of
	// opening a ticket.
	RouteFAQ Action = "route_faq"
)

// IntentTicketRequest marks a message the classifier considers actionable.
const IntentTicketRequest = "ticket_request"

// Candidate is a normalized classification outcome, from either the rule
// tables or the fallback classifier.
type Candidate struct {
	Source     models.RoutingSource
	Intent     string
	Area       models.Area
	Confidence float64
	Reason     string
}

// Decision is the policy outcome. Routing is only populated for RouteDirect.
type Decision struct {
	Action  Action
	Routing *models.RoutingDecision
}

// Decide applies the routing decision table:
//
//   - non-actionable intent goes to the FAQ responder
//   - actionable intent with a valid area at or above the threshold routes
//     directly
//   - everything else asks the guest to clarify
//
// threshold is the minimum confidence for a direct route, typically 0.65.
func Decide(c Candidate, threshold float64) Decision {
	if c.Source == models.SourceLLM && c.Intent != IntentTicketRequest {
		return Decision{Action: RouteFAQ}
	}

	if c.Area.IsValid() && c.Confidence >= threshold {
		return Decision{
			Action: RouteDirect,
			Routing: &models.RoutingDecision{
				Area:       c.Area,
				Source:     c.Source,
				Confidence: c.Confidence,
				Reason:     c.Reason,
				Version:    models.RoutingVersion,
			},
		}
	}

	return Decision{Action: RouteClarify}
}
