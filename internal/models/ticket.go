// internal/models/ticket.go
package models

import "time"

// Ticket is the persisted service ticket. Created exactly once, at the
// terminal CONFIRMED transition, and never mutated here afterwards (claiming
// and resolving belong to the ticket-lifecycle service).
type Ticket struct {
	ID            string    `json:"id"`
	Area          Area      `json:"area"`
	Detalle       string    `json:"detalle"`       // original guest text
	Ubicacion     string    `json:"ubicacion"`     // confirmed room number
	HuespedNombre string    `json:"huespedNombre"` // confirmed guest name
	CanalOrigen   string    `json:"canalOrigen"`

	Routing RoutingDecision `json:"routing"`

	CreatedAt time.Time `json:"createdAt"`
}

// CanalHuesped is the fixed origin channel recorded for guest-created tickets.
const CanalHuesped = "huesped_whatsapp"
