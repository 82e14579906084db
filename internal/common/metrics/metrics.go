// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_messages_processed_total",
			Help: "Total number of inbound guest messages processed",
		},
		[]string{"state"},
	)

	RuleHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_rule_hits_total",
			Help: "Total number of deterministic rule classifier hits per area",
		},
		[]string{"area"},
	)

	FallbackCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_fallback_calls_total",
			Help: "Total number of fallback classifier invocations by outcome",
		},
		[]string{"outcome"},
	)

	ClarificationsRequested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "router_clarifications_requested_total",
			Help: "Total number of area clarification menus shown to guests",
		},
	)

	TicketsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_tickets_created_total",
			Help: "Total number of tickets persisted, by area and routing source",
		},
		[]string{"area", "source"},
	)

	TicketsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "router_tickets_failed_total",
			Help: "Total number of ticket persistence failures",
		},
	)

	DuplicateDeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "router_duplicate_deliveries_total",
			Help: "Total number of redelivered channel messages dropped idempotently",
		},
	)

	MessageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "router_message_duration_seconds",
			Help: "Duration of message handling in seconds",
		},
		[]string{"state"},
	)
)
